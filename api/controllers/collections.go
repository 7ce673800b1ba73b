package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/storefront/backend/api/responses"
	"github.com/storefront/backend/api/validators"
	"github.com/storefront/backend/internal/catalog"
	pkgerrors "github.com/storefront/backend/pkg/errors"
	"github.com/storefront/backend/pkg/logger"
)

// ListCollections serves the paginated collection listing with product counts.
func ListCollections(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListCollections(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetCollection serves a single collection.
func GetCollection(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		collection, err := svc.GetCollection(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, collection)
	}
}

type collectionRequest struct {
	Title             string  `json:"title" validate:"required,max=255"`
	FeaturedProductID *string `json:"featured_product_id,omitempty" validate:"omitempty,uuid"`
}

func (c collectionRequest) toInput() (catalog.CollectionInput, error) {
	input := catalog.CollectionInput{Title: strings.TrimSpace(c.Title)}
	if c.FeaturedProductID != nil {
		id, err := uuid.Parse(*c.FeaturedProductID)
		if err != nil {
			return catalog.CollectionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid featured_product_id")
		}
		input.FeaturedProductID = &id
	}
	return input, nil
}

// CreateCollection handles staff collection creation.
func CreateCollection(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload collectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		collection, err := svc.CreateCollection(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, collection)
	}
}

// UpdateCollection handles staff collection updates.
func UpdateCollection(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload collectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		collection, err := svc.UpdateCollection(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, collection)
	}
}

// DeleteCollection handles staff collection deletion. Collections that still
// own products cannot be removed.
func DeleteCollection(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCollection(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type promotionRequest struct {
	Description string  `json:"description" validate:"required,max=255"`
	Discount    float64 `json:"discount" validate:"required,gt=0,lt=1"`
}

// ListPromotions serves all promotions.
func ListPromotions(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promotions, err := svc.ListPromotions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, promotions)
	}
}

// CreatePromotion handles staff promotion creation.
func CreatePromotion(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload promotionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promotion, err := svc.CreatePromotion(r.Context(), catalog.PromotionInput{
			Description: strings.TrimSpace(payload.Description),
			Discount:    payload.Discount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, promotion)
	}
}

// DeletePromotion handles staff promotion deletion.
func DeletePromotion(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeletePromotion(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
