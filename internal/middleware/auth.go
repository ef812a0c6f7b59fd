package middleware

import (
	"context"
	"net/http"
	"strings"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/models"
	"wetmill-backend/pkg/utils"
)

type contextKey string

const callerKey contextKey = "caller"

// CallerResolver loads the current identity of a token's user.
type CallerResolver interface {
	Resolve(ctx context.Context, userID int) (models.Caller, error)
}

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      CallerResolver
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, users CallerResolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		users:      users,
	}
}

// Authenticate validates the bearer token and re-reads the user so that a
// role change or suspension applies at once.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.Error(w, r, apperr.Unauthorized("authorization header required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Error(w, r, apperr.Unauthorized("invalid authorization format"))
			return
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			utils.Error(w, r, apperr.Unauthorized("invalid or expired token"))
			return
		}

		caller, err := m.users.Resolve(r.Context(), claims.UserID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				err = apperr.Unauthorized("user not found")
			}
			utils.Error(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

func WithCaller(ctx context.Context, c models.Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFrom returns the caller placed by Authenticate.
func CallerFrom(ctx context.Context) (models.Caller, bool) {
	c, ok := ctx.Value(callerKey).(models.Caller)
	return c, ok
}
