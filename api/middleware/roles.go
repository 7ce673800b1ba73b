package middleware

import (
	"net/http"

	"github.com/storefront/backend/api/responses"
	"github.com/storefront/backend/pkg/enums"
	pkgerrors "github.com/storefront/backend/pkg/errors"
	"github.com/storefront/backend/pkg/logger"
)

// RequireStaff rejects requests whose verified role is not staff.
func RequireStaff(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != string(enums.RoleStaff) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission rejects requests unless the claims carry the named
// permission codename. Staff pass regardless.
func RequirePermission(codename string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) == string(enums.RoleStaff) {
				next.ServeHTTP(w, r)
				return
			}
			claims := ClaimsFromContext(r.Context())
			if !claims.HasPermission(codename) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "permission required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
