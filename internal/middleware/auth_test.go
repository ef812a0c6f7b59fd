package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/config"
	"wetmill-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticUsers map[int]models.Caller

func (u staticUsers) Resolve(ctx context.Context, userID int) (models.Caller, error) {
	c, ok := u[userID]
	if !ok {
		return models.Caller{}, apperr.NotFound("user not found")
	}
	return c, nil
}

func newTestAuth(t *testing.T) (*AuthMiddleware, *auth.JWTManager) {
	t.Helper()
	var cfg config.Config
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "wetmill-backend"
	cfg.JWT.ExpirationHours = 1
	jwtManager := auth.NewJWTManager(&cfg)

	station := 4
	users := staticUsers{
		7: {UserID: 7, Role: models.RoleQuality},
		8: {UserID: 8, Role: models.RoleCWSManager, StationID: &station},
	}
	return NewAuthMiddleware(jwtManager, users), jwtManager
}

func echoCaller(w http.ResponseWriter, r *http.Request) {
	c, ok := CallerFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Header().Set("X-Role", c.Role)
	w.WriteHeader(http.StatusOK)
}

func TestAuthenticateResolvesCurrentRole(t *testing.T) {
	m, jwtManager := newTestAuth(t)
	// The token still says CWS_MANAGER; the stored user is QUALITY now.
	token, err := jwtManager.GenerateToken(&models.User{ID: 7, Role: models.RoleCWSManager})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	m.Authenticate(http.HandlerFunc(echoCaller)).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleQuality, w.Header().Get("X-Role"))
}

func TestAuthenticateRejects(t *testing.T) {
	m, jwtManager := newTestAuth(t)
	gone, err := jwtManager.GenerateToken(&models.User{ID: 99, Role: models.RoleAdmin})
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"bad token":      "Bearer not-a-token",
		"unknown user":   "Bearer " + gone,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if header != "" {
				r.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			m.Authenticate(http.HandlerFunc(echoCaller)).ServeHTTP(w, r)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestPanicRecoveryReturns500(t *testing.T) {
	h := PanicRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transfers", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
