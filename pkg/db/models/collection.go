package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collection groups products for merchandising.
type Collection struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Title             string     `gorm:"column:title;not null"`
	FeaturedProductID *uuid.UUID `gorm:"column:featured_product_id;type:uuid"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
