package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/pkg/db/models"
)

// ProductDTO is the API representation of a product.
type ProductDTO struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  *string         `json:"description"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Inventory    int             `json:"inventory"`
	CollectionID uuid.UUID       `json:"collection_id"`
	Promotions   []PromotionDTO  `json:"promotions,omitempty"`
	LastUpdate   time.Time       `json:"last_update"`
}

// NewProductDTO maps the model to its API shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:           product.ID,
		Title:        product.Title,
		Slug:         product.Slug,
		Description:  product.Description,
		UnitPrice:    product.UnitPrice,
		Inventory:    product.Inventory,
		CollectionID: product.CollectionID,
		LastUpdate:   product.LastUpdate,
	}
	for _, promo := range product.Promotions {
		dto.Promotions = append(dto.Promotions, *NewPromotionDTO(&promo))
	}
	return dto
}

// CollectionDTO is the API representation of a collection.
type CollectionDTO struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	FeaturedProductID *uuid.UUID `json:"featured_product_id"`
	ProductsCount     int64      `json:"products_count"`
}

// NewCollectionDTO maps the model to its API shape.
func NewCollectionDTO(collection *models.Collection, productsCount int64) *CollectionDTO {
	if collection == nil {
		return nil
	}
	return &CollectionDTO{
		ID:                collection.ID,
		Title:             collection.Title,
		FeaturedProductID: collection.FeaturedProductID,
		ProductsCount:     productsCount,
	}
}

// PromotionDTO is the API representation of a promotion.
type PromotionDTO struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Discount    float64   `json:"discount"`
}

// NewPromotionDTO maps the model to its API shape.
func NewPromotionDTO(promotion *models.Promotion) *PromotionDTO {
	if promotion == nil {
		return nil
	}
	return &PromotionDTO{
		ID:          promotion.ID,
		Description: promotion.Description,
		Discount:    promotion.Discount,
	}
}
