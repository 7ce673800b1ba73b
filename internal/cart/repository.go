package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
)

// Repository encapsulates cart persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateCart inserts an empty cart.
func (r *Repository) CreateCart(ctx context.Context) (*models.Cart, error) {
	cart := &models.Cart{}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// FindCartByID loads a cart with its lines and their products.
func (r *Repository) FindCartByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		First(&cart, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// DeleteCart removes the cart and its lines.
func (r *Repository) DeleteCart(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Cart{}).Error
}

// UpsertItem adds the quantity to an existing (cart, product) line or inserts
// a new one. A single statement keeps concurrent adds from racing; the unique
// index on (cart_id, product_id) backs the conflict target.
func (r *Repository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (cart_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + excluded.quantity, updated_at = excluded.updated_at`,
			uuid.New(), cartID, productID, quantity, now, now).
		Error
}

// FindItem loads one cart line by cart and line ID.
func (r *Repository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		First(&item, "id = ? AND cart_id = ?", itemID, cartID).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetItemQuantity overwrites the quantity on an existing line.
func (r *Repository) SetItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now().UTC()}).
		Error
}

// DeleteItem removes one cart line.
func (r *Repository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{}).
		Error
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
