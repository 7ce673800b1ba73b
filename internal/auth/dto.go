package auth

import (
	"github.com/google/uuid"

	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/enums"
)

// RegisterRequest captures the payload required to open an account.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserDTO exposes the account fields safe to return to clients.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        enums.Role `json:"role"`
	Permissions []string   `json:"permissions,omitempty"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         *UserDTO `json:"user"`
}

// NewUserDTO maps an account model to its API shape.
func NewUserDTO(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        user.Role,
		Permissions: permissionCodenames(user),
	}
}

func permissionCodenames(user *models.User) []string {
	if len(user.Permissions) == 0 {
		return nil
	}
	codenames := make([]string, 0, len(user.Permissions))
	for _, p := range user.Permissions {
		codenames = append(codenames, p.Codename)
	}
	return codenames
}
