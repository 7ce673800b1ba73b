package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/enums"
)

// User is the identity account customers and staff authenticate as.
type User struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Email        string           `gorm:"column:email;not null;uniqueIndex:ux_users_email"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	FirstName    string           `gorm:"column:first_name;not null"`
	LastName     string           `gorm:"column:last_name;not null"`
	Role         enums.Role       `gorm:"column:role;not null;default:'customer'"`
	Permissions  []UserPermission `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserPermission grants a named permission codename beyond the user's role.
type UserPermission struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_user_permissions_user_codename"`
	Codename string    `gorm:"column:codename;not null;uniqueIndex:ux_user_permissions_user_codename"`
}

func (p *UserPermission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
