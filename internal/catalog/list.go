package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/storefront/backend/pkg/errors"
	"github.com/storefront/backend/pkg/pagination"
)

// Ordering values accepted by the product list endpoint. A leading dash
// flips the sort direction, mirroring the query-string convention.
const (
	OrderingUnitPrice      = "unit_price"
	OrderingUnitPriceDesc  = "-unit_price"
	OrderingLastUpdate     = "last_update"
	OrderingLastUpdateDesc = "-last_update"
)

var orderingClauses = map[string]string{
	OrderingUnitPrice:      "unit_price ASC",
	OrderingUnitPriceDesc:  "unit_price DESC",
	OrderingLastUpdate:     "last_update ASC",
	OrderingLastUpdateDesc: "last_update DESC",
}

// ProductListFilters narrows the product listing.
type ProductListFilters struct {
	CollectionID *uuid.UUID
	PriceGT      *decimal.Decimal
	PriceLT      *decimal.Decimal
	Search       string
	Ordering     string
}

// OrderClause resolves the ordering filter into a SQL ORDER BY fragment.
// Unset ordering falls back to newest-updated first.
func (f ProductListFilters) OrderClause() (string, error) {
	if f.Ordering == "" {
		return orderingClauses[OrderingLastUpdateDesc], nil
	}
	clause, ok := orderingClauses[f.Ordering]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported ordering value").
			WithDetails(map[string]string{"ordering": "must be one of unit_price, -unit_price, last_update, -last_update"})
	}
	return clause, nil
}

// ProductListQuery combines filters with page-based pagination.
type ProductListQuery struct {
	Filters    ProductListFilters
	Pagination pagination.Params
}

// ProductListResult is one page of products plus paging metadata.
type ProductListResult struct {
	Items []ProductDTO    `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// CollectionListResult is the full collection listing with product counts.
type CollectionListResult struct {
	Items []CollectionDTO `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}
