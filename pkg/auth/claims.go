package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/storefront/backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Role        enums.Role
	Permissions []string
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID  `json:"user_id"`
	Role        enums.Role `json:"role"`
	Permissions []string   `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// HasPermission reports whether the claims carry the named permission codename.
func (c *AccessTokenClaims) HasPermission(codename string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Permissions {
		if p == codename {
			return true
		}
	}
	return false
}
