package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_management/internal/middleware"
	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/repo"
	"github.com/Skotchmaster/lab_management/internal/service"
)

type BookingHandler struct {
	Svc  *service.BookingService
	Repo *repo.GormRepo
}

type createBookingRequest struct {
	EquipmentID      string    `json:"equipment_id" validate:"required"`
	StartTime        time.Time `json:"start_time" validate:"required"`
	EndTime          time.Time `json:"end_time" validate:"required"`
	Purpose          string    `json:"purpose"`
	Notes            string    `json:"notes"`
	IsRecurring      bool      `json:"is_recurring"`
	RecurringPattern string    `json:"recurring_pattern"`
}

func (h *BookingHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	booking, err := h.Svc.CreateBooking(ctx, service.CreateBookingInput{
		EquipmentID:      req.EquipmentID,
		UserID:           middleware.UserID(c),
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Purpose:          req.Purpose,
		Notes:            req.Notes,
		IsRecurring:      req.IsRecurring,
		RecurringPattern: req.RecurringPattern,
	})
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filter := repo.BookingFilter{
		EquipmentID: c.QueryParam("equipment_id"),
		UserID:      c.QueryParam("user_id"),
	}
	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date")
		}
		filter.From = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date")
		}
		filter.To = &t
	}

	bookings, err := h.Repo.ListBookings(ctx, filter)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

func (h *BookingHandler) Get(c echo.Context) error {
	booking, err := h.Repo.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

type updateBookingRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Purpose   *string    `json:"purpose"`
	Notes     *string    `json:"notes"`
	Status    *string    `json:"status" validate:"omitempty,oneof=SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
}

func (h *BookingHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := service.UpdateBookingInput{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Purpose:   req.Purpose,
		Notes:     req.Notes,
	}
	if req.Status != nil {
		status := models.BookingStatus(*req.Status)
		in.Status = &status
	}

	booking, err := h.Svc.UpdateBooking(ctx, c.Param("id"), in)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	booking, err := h.Svc.CancelBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}
