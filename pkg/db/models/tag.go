package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/enums"
)

// Tag is a reusable label.
type Tag struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Label     string    `gorm:"column:label;not null;uniqueIndex:ux_tags_label"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TaggedItem attaches a Tag to an arbitrary entity through a discriminated
// (entity_kind, entity_id) reference. No foreign key backs the reference;
// cleaning up labels when the target entity dies is the owner's job.
type TaggedItem struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	TagID      uuid.UUID        `gorm:"column:tag_id;type:uuid;not null;uniqueIndex:ux_tagged_items_ref"`
	Tag        *Tag             `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
	EntityKind enums.EntityKind `gorm:"column:entity_kind;not null;uniqueIndex:ux_tagged_items_ref"`
	EntityID   uuid.UUID        `gorm:"column:entity_id;type:uuid;not null;uniqueIndex:ux_tagged_items_ref"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (t *TaggedItem) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
