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

type ProjectHandler struct {
	Repo *repo.GormRepo
}

type createProjectRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (h *ProjectHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ownerID := middleware.UserID(c)
	project := models.Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectPlanning,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		OwnerID:     ownerID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	member := models.ProjectMember{
		ProjectID: project.ID,
		UserID:    ownerID,
		Role:      "OWNER",
		CreatedAt: time.Now(),
	}
	if err := h.Repo.CreateProject(ctx, &project, &member); err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.Repo.ListProjects(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": projects})
}

func (h *ProjectHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	project, err := h.Repo.GetProject(ctx, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	members, err := h.Repo.ListProjectMembers(ctx, project.ID)
	if err != nil {
		return httpError(c, err)
	}
	updates, err := h.Repo.ListProjectUpdates(ctx, project.ID, 20)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"project": project,
		"members": members,
		"updates": updates,
	})
}

type updateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" validate:"omitempty,oneof=PLANNING ACTIVE ON_HOLD COMPLETED"`
	Progress    *int       `json:"progress" validate:"omitempty,gte=0,lte=100"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (h *ProjectHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	project, err := h.Repo.GetProject(ctx, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = models.ProjectStatus(*req.Status)
	}
	if req.Progress != nil {
		project.Progress = *req.Progress
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	project.UpdatedAt = time.Now()

	if err := h.Repo.SaveProject(ctx, project); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Repo.GetProject(ctx, c.Param("id")); err != nil {
		return httpError(c, err)
	}
	if err := h.Repo.DeleteProject(ctx, c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type addMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role"`
}

func (h *ProjectHandler) AddMember(c echo.Context) error {
	ctx := c.Request().Context()

	var req addMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Role == "" {
		req.Role = "MEMBER"
	}

	if _, err := h.Repo.GetProject(ctx, c.Param("id")); err != nil {
		return httpError(c, err)
	}
	if _, err := h.Repo.GetUserByID(ctx, req.UserID); err != nil {
		return httpError(c, err)
	}

	member := models.ProjectMember{
		ProjectID: c.Param("id"),
		UserID:    req.UserID,
		Role:      req.Role,
		CreatedAt: time.Now(),
	}
	if err := h.Repo.AddProjectMember(ctx, &member); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, member)
}

func (h *ProjectHandler) RemoveMember(c echo.Context) error {
	if err := h.Repo.RemoveProjectMember(c.Request().Context(), c.Param("id"), c.Param("userId")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type addUpdateRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *ProjectHandler) AddUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var req addUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.Repo.GetProject(ctx, c.Param("id")); err != nil {
		return httpError(c, err)
	}

	update := models.ProjectUpdate{
		ProjectID: c.Param("id"),
		UserID:    middleware.UserID(c),
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := h.Repo.AddProjectUpdate(ctx, &update); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, update)
}
