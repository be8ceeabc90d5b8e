package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
	"github.com/Skotchmaster/lab_management/internal/logging"
	"github.com/Skotchmaster/lab_management/internal/middleware"
	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/repo"
	"github.com/Skotchmaster/lab_management/internal/service"
)

type OrderHandler struct {
	Repo   *repo.GormRepo
	Events service.EventPublisher
}

func (h *OrderHandler) publish(c echo.Context, key string, event map[string]any) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 5*time.Second)
	defer cancel()
	if err := h.Events.PublishEvent(ctx, "order_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

type createOrderRequest struct {
	ItemName      string  `json:"item_name" validate:"required"`
	CatalogNumber string  `json:"catalog_number"`
	Supplier      string  `json:"supplier"`
	Quantity      float64 `json:"quantity" validate:"gt=0"`
	Unit          string  `json:"unit"`
	EstimatedCost float64 `json:"estimated_cost" validate:"gte=0"`
	Urgency       string  `json:"urgency" validate:"omitempty,oneof=LOW NORMAL HIGH"`
	ReagentID     *string `json:"reagent_id"`
	Notes         string  `json:"notes"`
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Urgency == "" {
		req.Urgency = "NORMAL"
	}

	order := models.Order{
		ID:            uuid.NewString(),
		ItemName:      req.ItemName,
		CatalogNumber: req.CatalogNumber,
		Supplier:      req.Supplier,
		Quantity:      req.Quantity,
		Unit:          req.Unit,
		EstimatedCost: req.EstimatedCost,
		Status:        models.OrderRequested,
		Urgency:       req.Urgency,
		RequestedByID: middleware.UserID(c),
		ReagentID:     req.ReagentID,
		Notes:         req.Notes,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := h.Repo.CreateOrder(ctx, &order); err != nil {
		return httpError(c, err)
	}

	h.publish(c, order.ID, map[string]any{
		"type":     "order_requested",
		"order_id": order.ID,
		"item":     order.ItemName,
	})
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.Repo.ListOrders(c.Request().Context(), repo.OrderFilter{
		Status:        models.OrderStatus(c.QueryParam("status")),
		RequestedByID: c.QueryParam("requested_by"),
	})
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.Repo.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderRequested: {models.OrderApproved, models.OrderRejected},
	models.OrderApproved:  {models.OrderOrdered, models.OrderRejected},
	models.OrderOrdered:   {models.OrderReceived},
}

func orderTransitionAllowed(from, to models.OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED ORDERED RECEIVED REJECTED"`
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.Repo.GetOrder(ctx, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}

	next := models.OrderStatus(req.Status)
	if !orderTransitionAllowed(order.Status, next) {
		return httpError(c, apperrors.ErrInvalidTransition)
	}
	order.Status = next
	order.UpdatedAt = time.Now()

	// Receiving a linked order restocks its reagent in the same transaction.
	if next == models.OrderReceived {
		err = h.Repo.ReceiveOrder(ctx, order)
	} else {
		err = h.Repo.SaveOrder(ctx, order)
	}
	if err != nil {
		return httpError(c, err)
	}

	h.publish(c, order.ID, map[string]any{
		"type":     "order_status_changed",
		"order_id": order.ID,
		"status":   order.Status,
	})
	return c.JSON(http.StatusOK, order)
}
