package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is customer feedback scoped to a single product.
type Review struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
