package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/service"
	"github.com/Skotchmaster/lab_management/internal/tokens"
)

func newTestMiddleware() (*AuthMiddleware, *service.TokenService) {
	tokens := &service.TokenService{
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	return &AuthMiddleware{Tokens: tokens}, tokens
}

func signTestAccess(t *testing.T, svc *service.TokenService, role models.UserRole) string {
	t.Helper()

	claims := tokens.AccessClaims{
		Email: "u@lab.test",
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.AccessSecret)
	require.NoError(t, err)
	return raw
}

func ctxWithAuth(token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireAuth_SetsIdentity(t *testing.T) {
	t.Parallel()

	mw, tokens := newTestMiddleware()
	token := signTestAccess(t, tokens, models.RolePostdocStaff)

	c, _ := ctxWithAuth(token)
	var sawUserID, sawRole string
	next := func(c echo.Context) error {
		sawUserID = UserID(c)
		sawRole = Role(c)
		return nil
	}

	require.NoError(t, mw.RequireAuth(next)(c))
	assert.Equal(t, "user-1", sawUserID)
	assert.Equal(t, string(models.RolePostdocStaff), sawRole)
}

func TestRequireAuth_Rejects(t *testing.T) {
	t.Parallel()

	mw, _ := newTestMiddleware()

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing header", token: ""},
		{name: "garbage token", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, _ := ctxWithAuth(tt.token)
			err := mw.RequireAuth(func(echo.Context) error { return nil })(c)
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok, "expected HTTPError, got %v", err)
			assert.Equal(t, http.StatusUnauthorized, he.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	mw, _ := newTestMiddleware()
	gate := mw.RequireRole(string(models.RolePILabManager))
	next := func(echo.Context) error { return nil }

	c, _ := ctxWithAuth("")
	c.Set(ContextRole, string(models.RolePILabManager))
	require.NoError(t, gate(next)(c))

	c, _ = ctxWithAuth("")
	c.Set(ContextRole, string(models.RoleGradStudent))
	err := gate(next)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	assert.Equal(t, http.StatusForbidden, he.Code)
}
