package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_management/internal/middleware"
	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/repo"
)

type ProtocolHandler struct {
	Repo *repo.GormRepo
}

type createProtocolRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Content     string `json:"content" validate:"required"`
	IsShared    bool   `json:"is_shared"`
}

func (h *ProtocolHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req createProtocolRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	protocol := models.Protocol{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Content:     req.Content,
		Version:     1,
		AuthorID:    middleware.UserID(c),
		IsShared:    req.IsShared,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := h.Repo.CreateProtocol(ctx, &protocol); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, protocol)
}

func (h *ProtocolHandler) List(c echo.Context) error {
	protocols, err := h.Repo.ListProtocols(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"protocols": protocols})
}

func (h *ProtocolHandler) Get(c echo.Context) error {
	protocol, err := h.Repo.GetProtocol(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, protocol)
}

type updateProtocolRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Content     *string `json:"content"`
	IsShared    *bool   `json:"is_shared"`
}

func (h *ProtocolHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateProtocolRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	protocol, err := h.Repo.GetProtocol(ctx, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}

	if req.Title != nil {
		protocol.Title = *req.Title
	}
	if req.Description != nil {
		protocol.Description = *req.Description
	}
	if req.Category != nil {
		protocol.Category = *req.Category
	}
	if req.Content != nil && *req.Content != protocol.Content {
		protocol.Content = *req.Content
		protocol.Version++
	}
	if req.IsShared != nil {
		protocol.IsShared = *req.IsShared
	}
	protocol.UpdatedAt = time.Now()

	if err := h.Repo.SaveProtocol(ctx, protocol); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, protocol)
}

func (h *ProtocolHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Repo.GetProtocol(ctx, c.Param("id")); err != nil {
		return httpError(c, err)
	}
	if err := h.Repo.DeleteProtocol(ctx, c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
