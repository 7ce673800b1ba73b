package tags

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/enums"
)

// Repository encapsulates tag and tagged-item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a tag repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListForEntity loads every tag attached to the entity in a single query.
func (r *Repository) ListForEntity(ctx context.Context, kind enums.EntityKind, entityID uuid.UUID) ([]models.TaggedItem, error) {
	var rows []models.TaggedItem
	err := r.db.WithContext(ctx).
		Preload("Tag").
		Where("entity_kind = ? AND entity_id = ?", kind, entityID).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// GetOrCreateTag finds a tag by label, creating it when absent. Labels are
// matched case-insensitively and stored lowercased.
func (r *Repository) GetOrCreateTag(ctx context.Context, label string) (*models.Tag, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))

	var tag models.Tag
	err := r.db.WithContext(ctx).First(&tag, "label = ?", normalized).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = models.Tag{Label: normalized}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Attach links the tag to the entity, ignoring duplicates.
func (r *Repository) Attach(ctx context.Context, tagID uuid.UUID, kind enums.EntityKind, entityID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO tagged_items (id, tag_id, entity_kind, entity_id, created_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (tag_id, entity_kind, entity_id) DO NOTHING`,
			uuid.New(), tagID, kind, entityID).
		Error
}

// Detach removes the tag from the entity.
func (r *Repository) Detach(ctx context.Context, tagID uuid.UUID, kind enums.EntityKind, entityID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tag_id = ? AND entity_kind = ? AND entity_id = ?", tagID, kind, entityID).
		Delete(&models.TaggedItem{}).
		Error
}

// FindTagByLabel loads a tag by its normalized label.
func (r *Repository) FindTagByLabel(ctx context.Context, label string) (*models.Tag, error) {
	var tag models.Tag
	normalized := strings.ToLower(strings.TrimSpace(label))
	if err := r.db.WithContext(ctx).First(&tag, "label = ?", normalized).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListTags returns every known tag label.
func (r *Repository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var rows []models.Tag
	err := r.db.WithContext(ctx).Order("label ASC").Find(&rows).Error
	return rows, err
}
