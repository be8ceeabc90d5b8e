package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_management/internal/handlers"
	"github.com/Skotchmaster/lab_management/internal/middleware"
	"github.com/Skotchmaster/lab_management/internal/models"
)

type Deps struct {
	Auth      *middleware.AuthMiddleware
	AuthH     *handlers.AuthHandler
	Users     *handlers.UserHandler
	Equipment *handlers.EquipmentHandler
	Bookings  *handlers.BookingHandler
	Reagents  *handlers.ReagentHandler
	Orders    *handlers.OrderHandler
	Projects  *handlers.ProjectHandler
	Protocols *handlers.ProtocolHandler
	Dashboard *handlers.DashboardHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	v1.POST("/auth/register", d.AuthH.Register)
	v1.POST("/auth/login", d.AuthH.Login)
	v1.POST("/auth/refresh", d.AuthH.Refresh)
	v1.POST("/auth/logout", d.AuthH.Logout)

	private := v1.Group("", d.Auth.RequireAuth)

	private.GET("/auth/me", d.AuthH.Me)

	private.GET("/users", d.Users.List)
	private.GET("/users/:id", d.Users.Get)
	private.PATCH("/users/:id", d.Users.Update)

	private.GET("/equipment", d.Equipment.List)
	private.GET("/equipment/:id", d.Equipment.Get)
	private.GET("/equipment/:id/schedule", d.Equipment.Schedule)

	manager := private.Group("", d.Auth.RequireRole(string(models.RolePILabManager)))
	manager.POST("/equipment", d.Equipment.Create)
	manager.PATCH("/equipment/:id", d.Equipment.Update)
	manager.DELETE("/equipment/:id", d.Equipment.Delete)

	private.POST("/bookings", d.Bookings.Create)
	private.GET("/bookings", d.Bookings.List)
	private.GET("/bookings/:id", d.Bookings.Get)
	private.PATCH("/bookings/:id", d.Bookings.Update)
	private.DELETE("/bookings/:id", d.Bookings.Cancel)

	private.POST("/reagents", d.Reagents.Create)
	private.GET("/reagents", d.Reagents.List)
	private.GET("/reagents/:id", d.Reagents.Get)
	private.PATCH("/reagents/:id", d.Reagents.Update)
	private.POST("/reagents/:id/adjust", d.Reagents.AdjustQuantity)
	private.DELETE("/reagents/:id", d.Reagents.Delete)
	private.GET("/search", d.Reagents.Search)

	private.POST("/orders", d.Orders.Create)
	private.GET("/orders", d.Orders.List)
	private.GET("/orders/:id", d.Orders.Get)
	manager.PATCH("/orders/:id/status", d.Orders.UpdateStatus)

	private.POST("/projects", d.Projects.Create)
	private.GET("/projects", d.Projects.List)
	private.GET("/projects/:id", d.Projects.Get)
	private.PATCH("/projects/:id", d.Projects.Update)
	private.DELETE("/projects/:id", d.Projects.Delete)
	private.POST("/projects/:id/members", d.Projects.AddMember)
	private.DELETE("/projects/:id/members/:userId", d.Projects.RemoveMember)
	private.POST("/projects/:id/updates", d.Projects.AddUpdate)

	private.POST("/protocols", d.Protocols.Create)
	private.GET("/protocols", d.Protocols.List)
	private.GET("/protocols/:id", d.Protocols.Get)
	private.PATCH("/protocols/:id", d.Protocols.Update)
	private.DELETE("/protocols/:id", d.Protocols.Delete)

	private.GET("/dashboard", d.Dashboard.Stats)
}
