package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/enums"
	"github.com/storefront/backend/pkg/pagination"
)

// CustomerDTO is the API representation of a customer profile.
type CustomerDTO struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	Email      string           `json:"email,omitempty"`
	FirstName  string           `json:"first_name,omitempty"`
	LastName   string           `json:"last_name,omitempty"`
	Phone      string           `json:"phone"`
	BirthDate  *time.Time       `json:"birth_date"`
	Membership enums.Membership `json:"membership"`
}

// NewCustomerDTO maps the profile and its user account to the API shape.
func NewCustomerDTO(customer *models.Customer) *CustomerDTO {
	if customer == nil {
		return nil
	}
	dto := &CustomerDTO{
		ID:         customer.ID,
		UserID:     customer.UserID,
		Phone:      customer.Phone,
		BirthDate:  customer.BirthDate,
		Membership: customer.Membership,
	}
	if customer.User != nil {
		dto.Email = customer.User.Email
		dto.FirstName = customer.User.FirstName
		dto.LastName = customer.User.LastName
	}
	return dto
}

// AddressDTO is the API representation of a shipping address.
type AddressDTO struct {
	ID     uuid.UUID `json:"id"`
	Street string    `json:"street"`
	City   string    `json:"city"`
	Zip    string    `json:"zip"`
}

// NewAddressDTO maps the address to the API shape.
func NewAddressDTO(address *models.Address) *AddressDTO {
	if address == nil {
		return nil
	}
	return &AddressDTO{
		ID:     address.ID,
		Street: address.Street,
		City:   address.City,
		Zip:    address.Zip,
	}
}

// CustomerListResult is one page of customers plus paging metadata.
type CustomerListResult struct {
	Items []CustomerDTO   `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}
