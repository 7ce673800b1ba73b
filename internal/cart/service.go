package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db"
	pkgerrors "github.com/storefront/backend/pkg/errors"
)

// Service exposes cart workflow operations.
type Service interface {
	CreateCart(ctx context.Context) (*CartDTO, error)
	GetCart(ctx context.Context, id uuid.UUID) (*CartDTO, error)
	DeleteCart(ctx context.Context, id uuid.UUID) error
	AddItem(ctx context.Context, cartID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error
}

// AddItemInput is the validated payload for the add-or-increment operation.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// service implements the cart service.
type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// CreateCart opens an empty cart. Carts are anonymous; the returned UUID is
// the only handle.
func (s *service) CreateCart(ctx context.Context) (*CartDTO, error) {
	cart, err := s.repo.CreateCart(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert cart")
	}
	return NewCartDTO(cart), nil
}

// GetCart loads the cart with lines and current prices.
func (s *service) GetCart(ctx context.Context, id uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindCartByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	return NewCartDTO(cart), nil
}

// DeleteCart abandons the cart.
func (s *service) DeleteCart(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCartByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	if err := s.repo.DeleteCart(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart")
	}
	return nil
}

// AddItem merges the product into the cart: an existing line for the same
// product has its quantity incremented, otherwise a new line appears. The
// product reference is validated before any write.
func (s *service) AddItem(ctx context.Context, cartID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]string{"quantity": "must be at least 1"})
	}

	exists, err := s.repo.ProductExists(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check product")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product").
			WithDetails(map[string]string{"product_id": "product does not exist"})
	}

	if _, err := s.repo.FindCartByID(ctx, cartID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpsertItem(ctx, cartID, input.ProductID, input.Quantity)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert cart item")
	}

	return s.GetCart(ctx, cartID)
}

// UpdateItemQuantity overwrites a line's quantity. Unlike AddItem this is an
// absolute set, not an increment.
func (s *service) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]string{"quantity": "must be at least 1"})
	}

	item, err := s.repo.FindItem(ctx, cartID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
	}

	if err := s.repo.SetItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
	}
	return s.GetCart(ctx, cartID)
}

// RemoveItem deletes one line from the cart.
func (s *service) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	if _, err := s.repo.FindItem(ctx, cartID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
	}
	if err := s.repo.DeleteItem(ctx, cartID, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart item")
	}
	return nil
}
