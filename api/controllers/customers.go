package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/api/middleware"
	"github.com/storefront/backend/api/responses"
	"github.com/storefront/backend/api/validators"
	"github.com/storefront/backend/internal/customers"
	"github.com/storefront/backend/internal/orders"
	"github.com/storefront/backend/pkg/enums"
	pkgerrors "github.com/storefront/backend/pkg/errors"
	"github.com/storefront/backend/pkg/logger"
)

func requireUserID(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserUUIDFromContext(r.Context())
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return userID, nil
}

// GetMe serves the authenticated customer's profile, creating it on first
// access.
func GetMe(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.GetMe(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

type updateProfileRequest struct {
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	BirthDate *string `json:"birth_date,omitempty"`
}

// UpdateMe updates the authenticated customer's profile.
func UpdateMe(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := customers.UpdateProfileInput{Phone: payload.Phone}
		if payload.BirthDate != nil {
			parsed, err := time.Parse("2006-01-02", *payload.BirthDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "birth_date must be YYYY-MM-DD"))
				return
			}
			input.BirthDate = &parsed
		}

		profile, err := svc.UpdateMe(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// ListCustomers serves the staff customer listing.
func ListCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListCustomers(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetCustomer serves a single customer profile to staff.
func GetCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.GetCustomer(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

type setMembershipRequest struct {
	Membership string `json:"membership" validate:"required"`
}

// SetCustomerMembership lets staff move a customer between tiers.
func SetCustomerMembership(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setMembershipRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.SetMembership(r.Context(), id, enums.Membership(strings.ToLower(strings.TrimSpace(payload.Membership))))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// GetCustomerHistory serves a customer's order history. Gated by the
// customers:view_history permission in the router.
func GetCustomerHistory(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListForCustomer(r.Context(), customerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type addressRequest struct {
	Street string `json:"street" validate:"required,max=255"`
	City   string `json:"city" validate:"required,max=255"`
	Zip    string `json:"zip,omitempty" validate:"omitempty,max=20"`
}

// AddAddress stores a shipping address on the authenticated customer.
func AddAddress(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		address, err := svc.AddAddress(r.Context(), userID, customers.AddressInput{
			Street: strings.TrimSpace(payload.Street),
			City:   strings.TrimSpace(payload.City),
			Zip:    strings.TrimSpace(payload.Zip),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, address)
	}
}

// ListAddresses serves the authenticated customer's shipping addresses.
func ListAddresses(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addresses, err := svc.ListAddresses(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, addresses)
	}
}
