package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/enums"
)

// Order is the durable record of a completed purchase.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	Customer      *Customer           `gorm:"foreignKey:CustomerID"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID"`
	PlacedAt      time.Time           `gorm:"column:placed_at;autoCreateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is one product line inside an order. UnitPrice is copied from the
// product at order-creation time and never recalculated.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Product   *Product        `gorm:"foreignKey:ProductID"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(6,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
