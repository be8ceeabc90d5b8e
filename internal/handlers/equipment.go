package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/repo"
)

type EquipmentHandler struct {
	Repo *repo.GormRepo
}

type createEquipmentRequest struct {
	Name             string `json:"name" validate:"required"`
	Model            string `json:"model"`
	SerialNumber     string `json:"serial_number"`
	Location         string `json:"location"`
	Description      string `json:"description"`
	MaintenanceNotes string `json:"maintenance_notes"`
	RequiresTraining bool   `json:"requires_training"`
	BookingDuration  int    `json:"booking_duration" validate:"omitempty,gt=0"`
}

func (h *EquipmentHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req createEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.BookingDuration == 0 {
		req.BookingDuration = 60
	}

	equipment := models.Equipment{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Model:            req.Model,
		SerialNumber:     req.SerialNumber,
		Location:         req.Location,
		Description:      req.Description,
		MaintenanceNotes: req.MaintenanceNotes,
		IsAvailable:      true,
		RequiresTraining: req.RequiresTraining,
		BookingDuration:  req.BookingDuration,
		CreatedAt:        time.Now(),
	}
	if err := h.Repo.CreateEquipment(ctx, &equipment); err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusCreated, equipment)
}

func (h *EquipmentHandler) List(c echo.Context) error {
	items, err := h.Repo.ListEquipment(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"equipment": items})
}

func (h *EquipmentHandler) Get(c echo.Context) error {
	equipment, err := h.Repo.GetEquipment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, equipment)
}

type updateEquipmentRequest struct {
	Name             *string `json:"name"`
	Model            *string `json:"model"`
	SerialNumber     *string `json:"serial_number"`
	Location         *string `json:"location"`
	Description      *string `json:"description"`
	MaintenanceNotes *string `json:"maintenance_notes"`
	IsAvailable      *bool   `json:"is_available"`
	RequiresTraining *bool   `json:"requires_training"`
	BookingDuration  *int    `json:"booking_duration" validate:"omitempty,gt=0"`
}

func (h *EquipmentHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	equipment, err := h.Repo.GetEquipment(ctx, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}

	if req.Name != nil {
		equipment.Name = *req.Name
	}
	if req.Model != nil {
		equipment.Model = *req.Model
	}
	if req.SerialNumber != nil {
		equipment.SerialNumber = *req.SerialNumber
	}
	if req.Location != nil {
		equipment.Location = *req.Location
	}
	if req.Description != nil {
		equipment.Description = *req.Description
	}
	if req.MaintenanceNotes != nil {
		equipment.MaintenanceNotes = *req.MaintenanceNotes
	}
	if req.IsAvailable != nil {
		equipment.IsAvailable = *req.IsAvailable
	}
	if req.RequiresTraining != nil {
		equipment.RequiresTraining = *req.RequiresTraining
	}
	if req.BookingDuration != nil {
		equipment.BookingDuration = *req.BookingDuration
	}

	if err := h.Repo.SaveEquipment(ctx, equipment); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, equipment)
}

func (h *EquipmentHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Repo.GetEquipment(ctx, c.Param("id")); err != nil {
		return httpError(c, err)
	}
	if err := h.Repo.DeleteEquipment(ctx, c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Schedule returns non-cancelled bookings for the equipment inside the
// requested window, defaulting to the next seven days.
func (h *EquipmentHandler) Schedule(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := h.Repo.GetEquipment(ctx, c.Param("id")); err != nil {
		return httpError(c, err)
	}

	from := time.Now()
	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date")
		}
		from = t
	}
	to := from.Add(7 * 24 * time.Hour)
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date")
		}
		to = t
	}

	bookings, err := h.Repo.EquipmentSchedule(ctx, c.Param("id"), from, to)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}
