package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/repo"
	"github.com/Skotchmaster/lab_management/internal/service"
)

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Equipment{},
		&models.Booking{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

type testEnv struct {
	E        *echo.Echo
	DB       *gorm.DB
	Repo     *repo.GormRepo
	Tokens   *service.TokenService
	Auth     *AuthHandler
	Bookings *BookingHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := InitTestDB(t)
	gormRepo := &repo.GormRepo{DB: db}
	tokenSvc := &service.TokenService{
		Repo:          gormRepo,
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}

	e := echo.New()
	e.Validator = NewValidator()

	return &testEnv{
		E:      e,
		DB:     db,
		Repo:   gormRepo,
		Tokens: tokenSvc,
		Auth: &AuthHandler{
			Svc:  &service.AuthService{Repo: gormRepo, Tokens: tokenSvc},
			Repo: gormRepo,
		},
		Bookings: &BookingHandler{
			Svc:  &service.BookingService{Repo: gormRepo},
			Repo: gormRepo,
		},
	}
}

func (env *testEnv) jsonRequest(method, target string, payload any) (echo.Context, *httptest.ResponseRecorder) {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return env.E.NewContext(req, rec), rec
}

func TestAuthHandler_Register(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"email":      "grad@lab.test",
		"password":   "Secret123",
		"first_name": "Grace",
		"last_name":  "Hopper",
	}

	c, rec := env.jsonRequest(http.MethodPost, "/api/v1/auth/register", payload)
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User         models.User `json:"user"`
		AccessToken  string      `json:"access_token"`
		RefreshToken string      `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.User.ID)
	require.Equal(t, "grad@lab.test", resp.User.Email)
	require.Equal(t, models.RoleGradStudent, resp.User.Role)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.NotContains(t, rec.Body.String(), "password_hash")

	c, _ = env.jsonRequest(http.MethodPost, "/api/v1/auth/register", payload)
	err := env.Auth.Register(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestAuthHandler_Register_RejectsBadPayload(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{name: "malformed email", payload: map[string]string{
			"email": "not-an-email", "password": "Secret123", "first_name": "A", "last_name": "B",
		}},
		{name: "short password", payload: map[string]string{
			"email": "ok@lab.test", "password": "short", "first_name": "A", "last_name": "B",
		}},
		{name: "missing name", payload: map[string]string{
			"email": "ok@lab.test", "password": "Secret123",
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c, _ := env.jsonRequest(http.MethodPost, "/api/v1/auth/register", tt.payload)
			err := env.Auth.Register(c)
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok, "expected HTTPError, got %v", err)
			require.Equal(t, http.StatusBadRequest, he.Code)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.jsonRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "pi@lab.test", "password": "Secret123", "first_name": "Ada", "last_name": "Lovelace",
	})
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = env.jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "pi@lab.test", "password": "Secret123",
	})
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	c, _ = env.jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "pi@lab.test", "password": "wrong-password",
	})
	err := env.Auth.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuthHandler_RefreshRotatesOnce(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.jsonRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "rot@lab.test", "password": "Secret123", "first_name": "R", "last_name": "T",
	})
	require.NoError(t, env.Auth.Register(c))

	var registered struct {
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))

	c, rec = env.jsonRequest(http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": registered.RefreshToken,
	})
	require.NoError(t, env.Auth.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var rotated struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	require.NotEmpty(t, rotated.AccessToken)
	require.NotEqual(t, registered.RefreshToken, rotated.RefreshToken)

	c, _ = env.jsonRequest(http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": registered.RefreshToken,
	})
	err := env.Auth.Refresh(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuthHandler_LogoutIdempotent(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.jsonRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "bye@lab.test", "password": "Secret123", "first_name": "B", "last_name": "Y",
	})
	require.NoError(t, env.Auth.Register(c))

	var registered struct {
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))

	for i := 0; i < 2; i++ {
		c, rec = env.jsonRequest(http.MethodPost, "/api/v1/auth/logout", map[string]string{
			"refresh_token": registered.RefreshToken,
		})
		require.NoError(t, env.Auth.Logout(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
