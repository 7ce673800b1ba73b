package customers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/enums"
	pkgerrors "github.com/storefront/backend/pkg/errors"
	"github.com/storefront/backend/pkg/pagination"
)

// Service exposes customer profile operations.
type Service interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*CustomerDTO, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*CustomerDTO, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	ListCustomers(ctx context.Context, params pagination.Params) (*CustomerListResult, error)
	SetMembership(ctx context.Context, id uuid.UUID, membership enums.Membership) (*CustomerDTO, error)
	AddAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*AddressDTO, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
}

// UpdateProfileInput holds self-service profile fields.
type UpdateProfileInput struct {
	Phone     *string
	BirthDate *time.Time
}

// AddressInput holds the payload to add a shipping address.
type AddressInput struct {
	Street string
	City   string
	Zip    string
}

// service implements the customer service.
type service struct {
	repo *Repository
}

// NewService constructs a customer service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

// GetMe returns the caller's profile, creating one on first access.
func (s *service) GetMe(ctx context.Context, userID uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.repo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: get or create customer")
	}
	return NewCustomerDTO(customer), nil
}

// UpdateMe applies self-service fields to the caller's profile.
func (s *service) UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*CustomerDTO, error) {
	customer, err := s.repo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: get or create customer")
	}

	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.BirthDate != nil {
		if input.BirthDate.After(time.Now()) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "birth_date cannot be in the future").
				WithDetails(map[string]string{"birth_date": "cannot be in the future"})
		}
		customer.BirthDate = input.BirthDate
	}

	if _, err := s.repo.Update(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer")
	}
	return NewCustomerDTO(customer), nil
}

// GetCustomer loads one profile by ID (staff view).
func (s *service) GetCustomer(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	return NewCustomerDTO(customer), nil
}

// ListCustomers returns one page of profiles (staff view).
func (s *service) ListCustomers(ctx context.Context, params pagination.Params) (*CustomerListResult, error) {
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customers")
	}

	result := &CustomerListResult{
		Items: make([]CustomerDTO, 0, len(rows)),
		Meta:  pagination.NewMeta(params, total),
	}
	for i := range rows {
		result.Items = append(result.Items, *NewCustomerDTO(&rows[i]))
	}
	return result, nil
}

// SetMembership moves the customer to another tier (staff only; routing
// enforces that).
func (s *service) SetMembership(ctx context.Context, id uuid.UUID, membership enums.Membership) (*CustomerDTO, error) {
	if !membership.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown membership tier").
			WithDetails(map[string]string{"membership": "must be bronze, silver, or gold"})
	}

	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}

	customer.Membership = membership
	if _, err := s.repo.Update(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer")
	}
	return NewCustomerDTO(customer), nil
}

// AddAddress attaches a shipping address to the caller's profile.
func (s *service) AddAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*AddressDTO, error) {
	customer, err := s.repo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: get or create customer")
	}

	address := &models.Address{
		CustomerID: customer.ID,
		Street:     input.Street,
		City:       input.City,
		Zip:        input.Zip,
	}
	if _, err := s.repo.CreateAddress(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert address")
	}
	return NewAddressDTO(address), nil
}

// ListAddresses returns the caller's addresses.
func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	customer, err := s.repo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: get or create customer")
	}

	rows, err := s.repo.ListAddresses(ctx, customer.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list addresses")
	}
	dtos := make([]AddressDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewAddressDTO(&rows[i]))
	}
	return dtos, nil
}
