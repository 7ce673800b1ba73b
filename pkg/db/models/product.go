package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the canonical sellable listing.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Title        string          `gorm:"column:title;not null"`
	Slug         string          `gorm:"column:slug;not null"`
	Description  *string         `gorm:"column:description"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(6,2);not null"`
	Inventory    int             `gorm:"column:inventory;not null;default:0"`
	CollectionID uuid.UUID       `gorm:"column:collection_id;type:uuid;not null"`
	Collection   *Collection     `gorm:"foreignKey:CollectionID"`
	Promotions   []Promotion     `gorm:"many2many:product_promotions"`
	LastUpdate   time.Time       `gorm:"column:last_update;autoUpdateTime"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Promotion is a discount campaign attachable to many products.
type Promotion struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Description string    `gorm:"column:description;not null"`
	Discount    float64   `gorm:"column:discount;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (p *Promotion) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
