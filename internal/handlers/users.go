package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_management/internal/middleware"
	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/repo"
)

type UserHandler struct {
	Repo *repo.GormRepo
}

func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Repo.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.Repo.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

type updateUserRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	LabAffiliation *string `json:"lab_affiliation"`
	Role           *string `json:"role" validate:"omitempty,oneof=PI_LAB_MANAGER POSTDOC_STAFF GRAD_STUDENT UNDERGRAD_TECH"`
	IsActive       *bool   `json:"is_active"`
}

// Update lets users edit their own profile; role and activation changes are
// manager-only.
func (h *UserHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	isManager := middleware.Role(c) == string(models.RolePILabManager)
	if c.Param("id") != middleware.UserID(c) && !isManager {
		return echo.NewHTTPError(http.StatusForbidden, "cannot edit another user")
	}
	if (req.Role != nil || req.IsActive != nil) && !isManager {
		return echo.NewHTTPError(http.StatusForbidden, "role changes require a lab manager")
	}

	user, err := h.Repo.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.LabAffiliation != nil {
		user.LabAffiliation = *req.LabAffiliation
	}
	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.Repo.SaveUser(ctx, user); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
