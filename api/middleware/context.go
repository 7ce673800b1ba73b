package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgauth "github.com/storefront/backend/pkg/auth"
	"github.com/storefront/backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxClaims contextKey = "claims"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// UserUUIDFromContext parses the authenticated user id, returning uuid.Nil for
// anonymous requests.
func UserUUIDFromContext(ctx context.Context) uuid.UUID {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// IsStaffFromContext reports whether the request is authenticated as staff.
func IsStaffFromContext(ctx context.Context) bool {
	return RoleFromContext(ctx) == string(enums.RoleStaff)
}

// ClaimsFromContext returns the verified token claims, or nil for anonymous
// requests.
func ClaimsFromContext(ctx context.Context) *pkgauth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*pkgauth.AccessTokenClaims); ok {
		return v
	}
	return nil
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithClaims injects verified claims into the context. Used by tests and by
// the auth middleware.
func WithClaims(ctx context.Context, claims *pkgauth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if claims == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, ctxClaims, claims)
	ctx = context.WithValue(ctx, ctxUserID, claims.UserID.String())
	return context.WithValue(ctx, ctxRole, string(claims.Role))
}
