package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/api/responses"
	"github.com/storefront/backend/api/validators"
	"github.com/storefront/backend/internal/catalog"
	pkgerrors "github.com/storefront/backend/pkg/errors"
	"github.com/storefront/backend/pkg/logger"
)

// ListProducts serves the filterable, paginated product listing.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		collectionID, err := validators.ParseQueryUUID(r, "collection_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		priceGT, err := validators.ParseQueryDecimal(r, "unit_price_gt")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		priceLT, err := validators.ParseQueryDecimal(r, "unit_price_lt")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), catalog.ProductListQuery{
			Filters: catalog.ProductListFilters{
				CollectionID: collectionID,
				PriceGT:      priceGT,
				PriceLT:      priceLT,
				Search:       validators.SanitizeString(r.URL.Query().Get("search"), 120),
				Ordering:     strings.TrimSpace(r.URL.Query().Get("ordering")),
			},
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetProduct serves a single product with its promotions.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

type productRequest struct {
	Title        string   `json:"title" validate:"required,max=255"`
	Slug         string   `json:"slug" validate:"required,max=255"`
	Description  *string  `json:"description,omitempty"`
	UnitPrice    string   `json:"unit_price" validate:"required"`
	Inventory    int      `json:"inventory" validate:"min=0"`
	CollectionID string   `json:"collection_id" validate:"required,uuid"`
	PromotionIDs []string `json:"promotion_ids,omitempty" validate:"omitempty,dive,uuid"`
}

func (p productRequest) toCreateInput() (catalog.CreateProductInput, error) {
	price, err := decimal.NewFromString(p.UnitPrice)
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit_price")
	}
	collectionID, err := uuid.Parse(p.CollectionID)
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid collection_id")
	}
	promotionIDs, err := parseUUIDs(p.PromotionIDs)
	if err != nil {
		return catalog.CreateProductInput{}, err
	}
	return catalog.CreateProductInput{
		Title:        strings.TrimSpace(p.Title),
		Slug:         strings.TrimSpace(p.Slug),
		Description:  p.Description,
		UnitPrice:    price,
		Inventory:    p.Inventory,
		CollectionID: collectionID,
		PromotionIDs: promotionIDs,
	}, nil
}

// CreateProduct handles staff product creation.
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type productUpdateRequest struct {
	Title        *string   `json:"title,omitempty" validate:"omitempty,max=255"`
	Slug         *string   `json:"slug,omitempty" validate:"omitempty,max=255"`
	Description  *string   `json:"description,omitempty"`
	UnitPrice    *string   `json:"unit_price,omitempty"`
	Inventory    *int      `json:"inventory,omitempty" validate:"omitempty,min=0"`
	CollectionID *string   `json:"collection_id,omitempty" validate:"omitempty,uuid"`
	PromotionIDs *[]string `json:"promotion_ids,omitempty" validate:"omitempty,dive,uuid"`
}

func (p productUpdateRequest) toUpdateInput() (catalog.UpdateProductInput, error) {
	input := catalog.UpdateProductInput{
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		Inventory:   p.Inventory,
	}
	if p.UnitPrice != nil {
		price, err := decimal.NewFromString(*p.UnitPrice)
		if err != nil {
			return catalog.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit_price")
		}
		input.UnitPrice = &price
	}
	if p.CollectionID != nil {
		id, err := uuid.Parse(*p.CollectionID)
		if err != nil {
			return catalog.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid collection_id")
		}
		input.CollectionID = &id
	}
	if p.PromotionIDs != nil {
		ids, err := parseUUIDs(*p.PromotionIDs)
		if err != nil {
			return catalog.UpdateProductInput{}, err
		}
		input.PromotionIDs = &ids
	}
	return input, nil
}

// UpdateProduct handles staff product updates.
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct handles staff product deletion. Products referenced by order
// lines cannot be removed.
func DeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid uuid").WithDetails(map[string]any{"value": value})
		}
		ids = append(ids, id)
	}
	return ids, nil
}
