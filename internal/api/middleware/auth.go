package middleware

import (
	"context"
	"net/http"

	"github.com/cwmc/portable-launcher/internal/api/apierr"
	"github.com/cwmc/portable-launcher/internal/services/auth"
)

type contextKey string

const adminContextKey contextKey = "admin"

// BasicAuth creates middleware that requires the admin credentials
func BasicAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				if !authService.Enabled() {
					apierr.WriteError(w, auth.ErrAdminDisabled)
					return
				}
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			if err := authService.Verify(username, password); err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), adminContextKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdmin returns the authenticated admin username from the request context
func GetAdmin(ctx context.Context) string {
	admin, _ := ctx.Value(adminContextKey).(string)
	return admin
}

// MustGetAdmin returns the authenticated admin username or panics
func MustGetAdmin(ctx context.Context) string {
	admin := GetAdmin(ctx)
	if admin == "" {
		panic("no admin in context - auth middleware not applied?")
	}
	return admin
}
