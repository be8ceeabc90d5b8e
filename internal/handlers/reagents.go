package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_management/internal/logging"
	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/repo"
	"github.com/Skotchmaster/lab_management/internal/service"
	"github.com/Skotchmaster/lab_management/internal/service/search"
	"github.com/Skotchmaster/lab_management/internal/util"
)

type ReagentHandler struct {
	Repo   *repo.GormRepo
	ES     *elasticsearch.Client
	Events service.EventPublisher
}

// alertLowStock emits an inventory event when stock falls to or below the
// reagent's minimum.
func (h *ReagentHandler) alertLowStock(c echo.Context, reagent *models.Reagent) {
	if h.Events == nil || !reagent.LowStock() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 5*time.Second)
	defer cancel()
	event := map[string]any{
		"type":         "reagent_low_stock",
		"reagent_id":   reagent.ID,
		"name":         reagent.Name,
		"quantity":     reagent.Quantity,
		"min_quantity": reagent.MinQuantity,
	}
	if err := h.Events.PublishEvent(ctx, "inventory_events", reagent.ID, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *ReagentHandler) index(c echo.Context, reagent *models.Reagent) {
	if h.ES == nil {
		return
	}
	if err := search.IndexReagent(c.Request().Context(), h.ES, reagent); err != nil {
		logging.FromContext(c.Request().Context()).Error("reagent index error", "error", err)
	}
}

type createReagentRequest struct {
	Name           string     `json:"name" validate:"required"`
	CatalogNumber  string     `json:"catalog_number"`
	Supplier       string     `json:"supplier"`
	Quantity       float64    `json:"quantity" validate:"gte=0"`
	Unit           string     `json:"unit" validate:"required"`
	MinQuantity    float64    `json:"min_quantity" validate:"gte=0"`
	Location       string     `json:"location"`
	LotNumber      string     `json:"lot_number"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Notes          string     `json:"notes"`
}

func (h *ReagentHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req createReagentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reagent := models.Reagent{
		ID:             uuid.NewString(),
		Name:           req.Name,
		CatalogNumber:  req.CatalogNumber,
		Supplier:       req.Supplier,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		MinQuantity:    req.MinQuantity,
		Location:       req.Location,
		LotNumber:      req.LotNumber,
		ExpirationDate: req.ExpirationDate,
		Notes:          req.Notes,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := h.Repo.CreateReagent(ctx, &reagent); err != nil {
		return httpError(c, err)
	}
	h.index(c, &reagent)

	return c.JSON(http.StatusCreated, reagent)
}

func (h *ReagentHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		items []models.Reagent
		err   error
	)
	switch {
	case c.QueryParam("low_stock") == "true":
		items, err = h.Repo.ListLowStockReagents(ctx)
	case c.QueryParam("expiring_before") != "":
		t, perr := time.Parse(time.RFC3339, c.QueryParam("expiring_before"))
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid expiring_before")
		}
		items, err = h.Repo.ListExpiringReagents(ctx, t)
	default:
		items, err = h.Repo.ListReagents(ctx)
	}
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reagents": items})
}

func (h *ReagentHandler) Get(c echo.Context) error {
	reagent, err := h.Repo.GetReagent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, reagent)
}

type updateReagentRequest struct {
	Name           *string    `json:"name"`
	CatalogNumber  *string    `json:"catalog_number"`
	Supplier       *string    `json:"supplier"`
	Quantity       *float64   `json:"quantity" validate:"omitempty,gte=0"`
	Unit           *string    `json:"unit"`
	MinQuantity    *float64   `json:"min_quantity" validate:"omitempty,gte=0"`
	Location       *string    `json:"location"`
	LotNumber      *string    `json:"lot_number"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Notes          *string    `json:"notes"`
}

func (h *ReagentHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateReagentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reagent, err := h.Repo.GetReagent(ctx, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}

	if req.Name != nil {
		reagent.Name = *req.Name
	}
	if req.CatalogNumber != nil {
		reagent.CatalogNumber = *req.CatalogNumber
	}
	if req.Supplier != nil {
		reagent.Supplier = *req.Supplier
	}
	if req.Quantity != nil {
		reagent.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		reagent.Unit = *req.Unit
	}
	if req.MinQuantity != nil {
		reagent.MinQuantity = *req.MinQuantity
	}
	if req.Location != nil {
		reagent.Location = *req.Location
	}
	if req.LotNumber != nil {
		reagent.LotNumber = *req.LotNumber
	}
	if req.ExpirationDate != nil {
		reagent.ExpirationDate = req.ExpirationDate
	}
	if req.Notes != nil {
		reagent.Notes = *req.Notes
	}
	reagent.UpdatedAt = time.Now()

	if err := h.Repo.SaveReagent(ctx, reagent); err != nil {
		return httpError(c, err)
	}
	h.index(c, reagent)

	return c.JSON(http.StatusOK, reagent)
}

type adjustQuantityRequest struct {
	Delta float64 `json:"delta" validate:"required"`
}

func (h *ReagentHandler) AdjustQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	var req adjustQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reagent, err := h.Repo.AdjustReagentQuantity(ctx, c.Param("id"), req.Delta)
	if err != nil {
		return httpError(c, err)
	}
	h.index(c, reagent)
	h.alertLowStock(c, reagent)

	return c.JSON(http.StatusOK, reagent)
}

func (h *ReagentHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if _, err := h.Repo.GetReagent(ctx, id); err != nil {
		return httpError(c, err)
	}
	if err := h.Repo.DeleteReagent(ctx, id); err != nil {
		return httpError(c, err)
	}
	if h.ES != nil {
		if err := search.DeleteReagent(ctx, h.ES, id); err != nil {
			logging.FromContext(ctx).Error("reagent index delete error", "error", err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReagentHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, items, err := search.Reagents(ctx, h.ES, query, from, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "search error")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
