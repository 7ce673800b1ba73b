package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/pagination"
)

// Repository encapsulates review persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a review repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ProductExists reports whether the product row exists.
func (r *Repository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Count(&count).
		Error
	return count > 0, err
}

// ListForProduct returns one page of reviews for the product, newest first.
func (r *Repository) ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.Review, int64, error) {
	params = params.Normalize()

	qb := r.db.WithContext(ctx).Model(&models.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Review
	err := qb.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create inserts a review row.
func (r *Repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}
