package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db"
	"github.com/storefront/backend/pkg/db/models"
	pkgerrors "github.com/storefront/backend/pkg/errors"
	"github.com/storefront/backend/pkg/pagination"
)

// Service exposes catalog management operations.
type Service interface {
	ListProducts(ctx context.Context, query ProductListQuery) (*ProductListResult, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListCollections(ctx context.Context, params pagination.Params) (*CollectionListResult, error)
	GetCollection(ctx context.Context, id uuid.UUID) (*CollectionDTO, error)
	CreateCollection(ctx context.Context, input CollectionInput) (*CollectionDTO, error)
	UpdateCollection(ctx context.Context, id uuid.UUID, input CollectionInput) (*CollectionDTO, error)
	DeleteCollection(ctx context.Context, id uuid.UUID) error

	ListPromotions(ctx context.Context) ([]PromotionDTO, error)
	CreatePromotion(ctx context.Context, input PromotionInput) (*PromotionDTO, error)
	DeletePromotion(ctx context.Context, id uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Title        string
	Slug         string
	Description  *string
	UnitPrice    decimal.Decimal
	Inventory    int
	CollectionID uuid.UUID
	PromotionIDs []uuid.UUID
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Title        *string
	Slug         *string
	Description  *string
	UnitPrice    *decimal.Decimal
	Inventory    *int
	CollectionID *uuid.UUID
	PromotionIDs *[]uuid.UUID
}

// CollectionInput holds the payload to create or update a collection.
type CollectionInput struct {
	Title             string
	FeaturedProductID *uuid.UUID
}

// PromotionInput holds the payload to create a promotion.
type PromotionInput struct {
	Description string
	Discount    float64
}

var minUnitPrice = decimal.NewFromInt(1)

// service implements the catalog service.
type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// ListProducts returns one page of products matching the filters.
func (s *service) ListProducts(ctx context.Context, query ProductListQuery) (*ProductListResult, error) {
	rows, total, err := s.repo.ListProducts(ctx, query)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	result := &ProductListResult{
		Items: make([]ProductDTO, 0, len(rows)),
		Meta:  pagination.NewMeta(query.Pagination, total),
	}
	for i := range rows {
		result.Items = append(result.Items, *NewProductDTO(&rows[i]))
	}
	return result, nil
}

// GetProduct loads a single product with promotions.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return NewProductDTO(product), nil
}

// CreateProduct validates the collection reference and inserts the product.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if input.UnitPrice.LessThan(minUnitPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be at least 1").
			WithDetails(map[string]string{"unit_price": "must be at least 1"})
	}
	if input.Inventory < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory cannot be negative").
			WithDetails(map[string]string{"inventory": "cannot be negative"})
	}
	if err := s.ensureCollection(ctx, input.CollectionID); err != nil {
		return nil, err
	}

	promotions, err := s.resolvePromotions(ctx, input.PromotionIDs)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Title:        input.Title,
		Slug:         input.Slug,
		Description:  input.Description,
		UnitPrice:    input.UnitPrice,
		Inventory:    input.Inventory,
		CollectionID: input.CollectionID,
		Promotions:   promotions,
	}
	if _, err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(product), nil
}

// UpdateProduct applies the provided fields to an existing product.
func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	if input.UnitPrice != nil {
		if input.UnitPrice.LessThan(minUnitPrice) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be at least 1").
				WithDetails(map[string]string{"unit_price": "must be at least 1"})
		}
		product.UnitPrice = *input.UnitPrice
	}
	if input.Inventory != nil {
		if *input.Inventory < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory cannot be negative").
				WithDetails(map[string]string{"inventory": "cannot be negative"})
		}
		product.Inventory = *input.Inventory
	}
	if input.Title != nil {
		product.Title = *input.Title
	}
	if input.Slug != nil {
		product.Slug = *input.Slug
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.CollectionID != nil {
		if err := s.ensureCollection(ctx, *input.CollectionID); err != nil {
			return nil, err
		}
		product.CollectionID = *input.CollectionID
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.UpdateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		if input.PromotionIDs != nil {
			promotions, err := txRepo.FindPromotionsByIDs(ctx, *input.PromotionIDs)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load promotions")
			}
			if len(promotions) != len(*input.PromotionIDs) {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown promotion id")
			}
			if err := txRepo.ReplacePromotions(ctx, product, promotions); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace promotions")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	updated, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload product")
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct removes a product unless order lines still reference it.
// Cart lines referencing the product go with it in the same transaction.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindProductByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		referenced, err := txRepo.CountOrderItemsForProduct(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count order references")
		}
		if referenced > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "product is referenced by existing orders").
				WithDetails(map[string]any{"order_items": referenced})
		}

		if err := txRepo.DeleteCartItemsForProduct(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart references")
		}
		if err := txRepo.DeleteProduct(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// ListCollections returns one page of collections with product counts.
func (s *service) ListCollections(ctx context.Context, params pagination.Params) (*CollectionListResult, error) {
	rows, total, err := s.repo.ListCollections(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list collections")
	}

	result := &CollectionListResult{
		Items: make([]CollectionDTO, 0, len(rows)),
		Meta:  pagination.NewMeta(params, total),
	}
	for i := range rows {
		count, err := s.repo.CountProductsInCollection(ctx, rows[i].ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count collection products")
		}
		result.Items = append(result.Items, *NewCollectionDTO(&rows[i], count))
	}
	return result, nil
}

// GetCollection loads a single collection with its product count.
func (s *service) GetCollection(ctx context.Context, id uuid.UUID) (*CollectionDTO, error) {
	collection, err := s.repo.FindCollectionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load collection")
	}
	count, err := s.repo.CountProductsInCollection(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count collection products")
	}
	return NewCollectionDTO(collection, count), nil
}

// CreateCollection inserts a new collection.
func (s *service) CreateCollection(ctx context.Context, input CollectionInput) (*CollectionDTO, error) {
	collection := &models.Collection{
		Title:             input.Title,
		FeaturedProductID: input.FeaturedProductID,
	}
	if _, err := s.repo.CreateCollection(ctx, collection); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert collection")
	}
	return NewCollectionDTO(collection, 0), nil
}

// UpdateCollection applies the payload to an existing collection.
func (s *service) UpdateCollection(ctx context.Context, id uuid.UUID, input CollectionInput) (*CollectionDTO, error) {
	collection, err := s.repo.FindCollectionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load collection")
	}

	collection.Title = input.Title
	collection.FeaturedProductID = input.FeaturedProductID
	if _, err := s.repo.UpdateCollection(ctx, collection); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update collection")
	}

	count, err := s.repo.CountProductsInCollection(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count collection products")
	}
	return NewCollectionDTO(collection, count), nil
}

// DeleteCollection removes a collection unless it still owns products.
func (s *service) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCollectionByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load collection")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		owned, err := txRepo.CountProductsInCollection(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count collection products")
		}
		if owned > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "collection still owns products").
				WithDetails(map[string]any{"products": owned})
		}
		if err := txRepo.DeleteCollection(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete collection")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete collection")
	}
	return nil
}

// ListPromotions returns all promotions.
func (s *service) ListPromotions(ctx context.Context) ([]PromotionDTO, error) {
	rows, err := s.repo.ListPromotions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list promotions")
	}
	dtos := make([]PromotionDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewPromotionDTO(&rows[i]))
	}
	return dtos, nil
}

// CreatePromotion inserts a new promotion.
func (s *service) CreatePromotion(ctx context.Context, input PromotionInput) (*PromotionDTO, error) {
	if input.Discount <= 0 || input.Discount >= 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be a fraction between 0 and 1").
			WithDetails(map[string]string{"discount": "must be between 0 and 1 exclusive"})
	}
	promotion := &models.Promotion{
		Description: input.Description,
		Discount:    input.Discount,
	}
	if _, err := s.repo.CreatePromotion(ctx, promotion); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert promotion")
	}
	return NewPromotionDTO(promotion), nil
}

// DeletePromotion removes a promotion and detaches it from products.
func (s *service) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindPromotionByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load promotion")
	}
	if err := s.repo.DeletePromotion(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete promotion")
	}
	return nil
}

func (s *service) ensureCollection(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCollectionByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown collection").
				WithDetails(map[string]string{"collection_id": "collection does not exist"})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load collection")
	}
	return nil
}

func (s *service) resolvePromotions(ctx context.Context, ids []uuid.UUID) ([]models.Promotion, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	promotions, err := s.repo.FindPromotionsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load promotions")
	}
	if len(promotions) != len(ids) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown promotion id").
			WithDetails(map[string]string{"promotion_ids": "one or more promotions do not exist"})
	}
	return promotions, nil
}
