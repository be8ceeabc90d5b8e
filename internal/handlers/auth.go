package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_management/internal/logging"
	"github.com/Skotchmaster/lab_management/internal/middleware"
	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/repo"
	"github.com/Skotchmaster/lab_management/internal/service"
)

type AuthHandler struct {
	Svc  *service.AuthService
	Repo *repo.GormRepo
}

type registerRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	Role           string `json:"role"`
	LabAffiliation string `json:"lab_affiliation"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           models.UserRole(req.Role),
		LabAffiliation: req.LabAffiliation,
	})
	if err != nil {
		return httpError(c, err)
	}

	l.Info("user registered", "user_id", res.User.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"user":          res.User,
		"access_token":  res.Session.AccessToken,
		"refresh_token": res.Session.RefreshToken,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(c, err)
	}

	l.Info("login successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"user":          res.User,
		"access_token":  res.Session.AccessToken,
		"refresh_token": res.Session.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.Svc.Tokens.Rotate(ctx, req.RefreshToken)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.RefreshToken != "" {
		if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
			return httpError(c, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.Repo.GetUserByID(ctx, middleware.UserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
