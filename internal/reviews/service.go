package reviews

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/pkg/db/models"
	pkgerrors "github.com/storefront/backend/pkg/errors"
	"github.com/storefront/backend/pkg/pagination"
)

// Service exposes product review operations.
type Service interface {
	ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewListResult, error)
	Create(ctx context.Context, productID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error)
}

// CreateReviewInput holds the validated payload to create a review.
type CreateReviewInput struct {
	Name        string
	Description string
}

// ReviewDTO is the API representation of a review.
type ReviewDTO struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewReviewDTO maps the model to its API shape.
func NewReviewDTO(review *models.Review) *ReviewDTO {
	if review == nil {
		return nil
	}
	return &ReviewDTO{
		ID:          review.ID,
		ProductID:   review.ProductID,
		Name:        review.Name,
		Description: review.Description,
		CreatedAt:   review.CreatedAt,
	}
}

// ReviewListResult is one page of reviews plus paging metadata.
type ReviewListResult struct {
	Items []ReviewDTO     `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// service implements the review service.
type service struct {
	repo *Repository
}

// NewService constructs a review service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	return &service{repo: repo}, nil
}

// ListForProduct returns the reviews nested under a product.
func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewListResult, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	rows, total, err := s.repo.ListForProduct(ctx, productID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list reviews")
	}

	result := &ReviewListResult{
		Items: make([]ReviewDTO, 0, len(rows)),
		Meta:  pagination.NewMeta(params, total),
	}
	for i := range rows {
		result.Items = append(result.Items, *NewReviewDTO(&rows[i]))
	}
	return result, nil
}

// Create attaches a review to the product.
func (s *service) Create(ctx context.Context, productID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ProductID:   productID,
		Name:        input.Name,
		Description: input.Description,
	}
	if _, err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert review")
	}
	return NewReviewDTO(review), nil
}

func (s *service) ensureProduct(ctx context.Context, productID uuid.UUID) error {
	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check product")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}
