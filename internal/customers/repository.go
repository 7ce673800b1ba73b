package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/pagination"
)

// Repository encapsulates customer profile persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a customer repository bound to the provided gorm DB.
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

// FindByID loads a customer with the backing user account.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&customer, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetOrCreateByUserID returns the profile bound to the user, creating an
// empty bronze profile on first access.
func (r *Repository) GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&customer, "user_id = ?", userID).
		Error
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
	return r.FindByID(ctx, customer.ID)
}

// Update saves the profile row.
func (r *Repository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// List returns one page of customers with their user accounts.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Customer, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Customer
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at ASC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CreateAddress inserts a shipping address for the customer.
func (r *Repository) CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error) {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

// ListAddresses returns the customer's addresses, oldest first.
func (r *Repository) ListAddresses(ctx context.Context, customerID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}
