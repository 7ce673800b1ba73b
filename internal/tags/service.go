package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/enums"
	pkgerrors "github.com/storefront/backend/pkg/errors"
)

// Service exposes polymorphic tagging operations.
type Service interface {
	ListForEntity(ctx context.Context, kind enums.EntityKind, entityID uuid.UUID) ([]TagDTO, error)
	Attach(ctx context.Context, kind enums.EntityKind, entityID uuid.UUID, label string) (*TagDTO, error)
	Detach(ctx context.Context, kind enums.EntityKind, entityID uuid.UUID, label string) error
	ListTags(ctx context.Context) ([]TagDTO, error)
}

// TagDTO is the API representation of a tag.
type TagDTO struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}

// NewTagDTO maps the model to its API shape.
func NewTagDTO(tag *models.Tag) *TagDTO {
	if tag == nil {
		return nil
	}
	return &TagDTO{ID: tag.ID, Label: tag.Label}
}

// service implements the tag service.
type service struct {
	repo *Repository
}

// NewService constructs a tag service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tag repository required")
	}
	return &service{repo: repo}, nil
}

// ListForEntity returns the tags attached to one entity. The kind is a typed
// enum, so lookups never scan across entity tables.
func (s *service) ListForEntity(ctx context.Context, kind enums.EntityKind, entityID uuid.UUID) ([]TagDTO, error) {
	if !kind.IsValid() {
		return nil, invalidKind()
	}

	rows, err := s.repo.ListForEntity(ctx, kind, entityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list tags for entity")
	}

	dtos := make([]TagDTO, 0, len(rows))
	for _, row := range rows {
		if row.Tag != nil {
			dtos = append(dtos, *NewTagDTO(row.Tag))
		}
	}
	return dtos, nil
}

// Attach labels the entity, creating the tag on first use. Attaching the
// same label twice is a no-op.
func (s *service) Attach(ctx context.Context, kind enums.EntityKind, entityID uuid.UUID, label string) (*TagDTO, error) {
	if !kind.IsValid() {
		return nil, invalidKind()
	}
	if strings.TrimSpace(label) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "label is required").
			WithDetails(map[string]string{"label": "is required"})
	}

	tag, err := s.repo.GetOrCreateTag(ctx, label)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: get or create tag")
	}
	if err := s.repo.Attach(ctx, tag.ID, kind, entityID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: attach tag")
	}
	return NewTagDTO(tag), nil
}

// Detach removes the label from the entity.
func (s *service) Detach(ctx context.Context, kind enums.EntityKind, entityID uuid.UUID, label string) error {
	if !kind.IsValid() {
		return invalidKind()
	}

	tag, err := s.repo.FindTagByLabel(ctx, label)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load tag")
	}
	if err := s.repo.Detach(ctx, tag.ID, kind, entityID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: detach tag")
	}
	return nil
}

// ListTags returns every known label.
func (s *service) ListTags(ctx context.Context) ([]TagDTO, error) {
	rows, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list tags")
	}
	dtos := make([]TagDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewTagDTO(&rows[i]))
	}
	return dtos, nil
}

func invalidKind() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, "unknown entity kind").
		WithDetails(map[string]string{"entity_kind": "must be product, collection, or review"})
}
