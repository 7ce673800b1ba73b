package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
)

// UserRepository manages identity account persistence.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository binds the repository to the provided DB handle.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{db: tx}
}

// FindByEmail loads a user with permissions by normalized email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).
		Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user with permissions.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		First(&user, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a user row.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GrantPermission attaches a permission codename to the user, ignoring
// duplicates.
func (r *UserRepository) GrantPermission(ctx context.Context, userID uuid.UUID, codename string) error {
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO user_permissions (id, user_id, codename) VALUES (?, ?, ?)
ON CONFLICT (user_id, codename) DO NOTHING`,
			uuid.New(), userID, codename).
		Error
}
