package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/pagination"
)

// Repository encapsulates order persistence, plus the cart and customer
// reads the conversion path needs inside one transaction.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided gorm DB.
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

// FindCartWithItems loads the cart and its lines with product rows.
func (r *Repository) FindCartWithItems(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&cart, "id = ?", cartID).
		Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreateCustomer returns the customer profile for the user, creating an
// empty one on first use.
func (r *Repository) GetOrCreateCustomer(ctx context.Context, userID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).First(&customer, "user_id = ?", userID).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer = models.Customer{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateOrder inserts the order row.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CreateOrderItems inserts the snapshot lines.
func (r *Repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// DeleteCart removes the cart and its lines.
func (r *Repository) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", cartID).Delete(&models.Cart{}).Error
}

// FindOrderByID loads an order with customer and snapshot lines.
func (r *Repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns one page of orders, newest first. A nil customerID
// lists every order (staff view).
func (r *Repository) ListOrders(ctx context.Context, customerID *uuid.UUID, params pagination.Params) ([]models.Order, int64, error) {
	params = params.Normalize()

	qb := r.db.WithContext(ctx).Model(&models.Order{})
	if customerID != nil {
		qb = qb.Where("customer_id = ?", *customerID)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := qb.
		Preload("Items").
		Preload("Items.Product").
		Order("placed_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindCustomerByUserID loads the profile bound to the user, if any.
func (r *Repository) FindCustomerByUserID(ctx context.Context, userID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}
