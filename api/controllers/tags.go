package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/storefront/backend/api/responses"
	"github.com/storefront/backend/api/validators"
	"github.com/storefront/backend/internal/tags"
	"github.com/storefront/backend/pkg/enums"
	pkgerrors "github.com/storefront/backend/pkg/errors"
	"github.com/storefront/backend/pkg/logger"
)

func entityKindFromPath(r *http.Request) (enums.EntityKind, error) {
	kind := enums.EntityKind(strings.ToLower(validators.SanitizeString(chi.URLParam(r, "kind"), 40)))
	if !kind.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown entity kind").WithDetails(map[string]any{"kind": string(kind)})
	}
	return kind, nil
}

// ListTags serves every known tag label.
func ListTags(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.ListTags(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, all)
	}
}

// ListEntityTags serves the tags attached to one entity.
func ListEntityTags(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := entityKindFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entityID, err := validators.ParsePathUUID(r, "entity_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		attached, err := svc.ListForEntity(r.Context(), kind, entityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, attached)
	}
}

type tagRequest struct {
	Label string `json:"label" validate:"required,max=120"`
}

// AttachTag attaches a label to an entity, creating the tag on first use.
func AttachTag(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := entityKindFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entityID, err := validators.ParsePathUUID(r, "entity_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload tagRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tag, err := svc.Attach(r.Context(), kind, entityID, payload.Label)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, tag)
	}
}

// DetachTag removes a label from an entity.
func DetachTag(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := entityKindFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entityID, err := validators.ParsePathUUID(r, "entity_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload tagRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Detach(r.Context(), kind, entityID, payload.Label); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
