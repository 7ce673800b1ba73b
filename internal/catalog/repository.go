package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/pagination"
)

// Repository wires together catalog persistence for products, collections,
// and promotions.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindProductByID loads a product with its promotions.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Promotions").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns one page of products matching the query filters,
// together with the total match count.
func (r *Repository) ListProducts(ctx context.Context, query ProductListQuery) ([]models.Product, int64, error) {
	orderClause, err := query.Filters.OrderClause()
	if err != nil {
		return nil, 0, err
	}

	params := query.Pagination.Normalize()

	qb := r.db.WithContext(ctx).Model(&models.Product{})
	qb = applyProductFilters(qb, query.Filters)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err = qb.
		Preload("Promotions").
		Order(orderClause).
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func applyProductFilters(qb *gorm.DB, filters ProductListFilters) *gorm.DB {
	if filters.CollectionID != nil {
		qb = qb.Where("collection_id = ?", *filters.CollectionID)
	}
	if filters.PriceGT != nil {
		qb = qb.Where("unit_price > ?", *filters.PriceGT)
	}
	if filters.PriceLT != nil {
		qb = qb.Where("unit_price < ?", *filters.PriceLT)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("LOWER(title) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?", pattern, pattern)
	}
	return qb
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct saves an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes the product row. Callers are responsible for the
// order-item reference guard; the row itself goes unconditionally.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// CountOrderItemsForProduct reports how many order lines reference the product.
func (r *Repository) CountOrderItemsForProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&count).
		Error
	return count, err
}

// DeleteCartItemsForProduct removes every cart line referencing the product.
func (r *Repository) DeleteCartItemsForProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.CartItem{}).
		Error
}

// ReplacePromotions replaces the product's promotion associations.
func (r *Repository) ReplacePromotions(ctx context.Context, product *models.Product, promotions []models.Promotion) error {
	return r.db.WithContext(ctx).
		Model(product).
		Association("Promotions").
		Replace(promotions)
}

// FindPromotionsByIDs loads the promotions for the given IDs.
func (r *Repository) FindPromotionsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Promotion, error) {
	var rows []models.Promotion
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).
		Error
	return rows, err
}

// FindCollectionByID loads a collection by primary key.
func (r *Repository) FindCollectionByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).First(&collection, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

// ListCollections returns one page of collections ordered by title.
func (r *Repository) ListCollections(ctx context.Context, params pagination.Params) ([]models.Collection, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Collection{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Collection
	err := r.db.WithContext(ctx).
		Order("title ASC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CreateCollection inserts a new collection row.
func (r *Repository) CreateCollection(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	if err := r.db.WithContext(ctx).Create(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

// UpdateCollection saves an existing collection row.
func (r *Repository) UpdateCollection(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	if err := r.db.WithContext(ctx).Save(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

// DeleteCollection removes the collection row.
func (r *Repository) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Collection{}).Error
}

// CountProductsInCollection reports how many products the collection owns.
func (r *Repository) CountProductsInCollection(ctx context.Context, collectionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("collection_id = ?", collectionID).
		Count(&count).
		Error
	return count, err
}

// FindPromotionByID loads a promotion by primary key.
func (r *Repository) FindPromotionByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.WithContext(ctx).First(&promotion, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promotion, nil
}

// ListPromotions returns all promotions ordered by creation time.
func (r *Repository) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	var rows []models.Promotion
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// CreatePromotion inserts a new promotion row.
func (r *Repository) CreatePromotion(ctx context.Context, promotion *models.Promotion) (*models.Promotion, error) {
	if err := r.db.WithContext(ctx).Create(promotion).Error; err != nil {
		return nil, err
	}
	return promotion, nil
}

// DeletePromotion removes the promotion and its product associations.
func (r *Repository) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Exec("DELETE FROM product_promotions WHERE promotion_id = ?", id).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Promotion{}).Error
}
