package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_management/internal/repo"
)

type DashboardHandler struct {
	Repo *repo.GormRepo
}

func (h *DashboardHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := h.Repo.DashboardCounts(ctx, time.Now())
	if err != nil {
		return httpError(c, err)
	}

	lowStock, err := h.Repo.ListLowStockReagents(ctx)
	if err != nil {
		return httpError(c, err)
	}

	upcoming, err := h.Repo.RecentBookings(ctx, time.Now(), 10)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"counts":             counts,
		"low_stock_reagents": lowStock,
		"upcoming_bookings":  upcoming,
	})
}
