package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/enums"
)

// Customer is the commerce profile bound one-to-one to a User account.
type Customer struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_customers_user"`
	User       *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Phone      string           `gorm:"column:phone"`
	BirthDate  *time.Time       `gorm:"column:birth_date"`
	Membership enums.Membership `gorm:"column:membership;not null;default:'bronze'"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Address is a shipping address owned by a Customer.
type Address struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null"`
	Street     string    `gorm:"column:street;not null"`
	City       string    `gorm:"column:city;not null"`
	Zip        string    `gorm:"column:zip"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
