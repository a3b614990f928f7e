package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mbelyaev/jobtrack/internal/middleware"
)

type Deps struct {
	AuthHandler *AuthHTTP
	JobHandler  *JobHTTP
	JWTSecret   []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMw := middleware.NewBearerAuth(d.JWTSecret)

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/me", d.AuthHandler.Me, authMw.RequireAuth)

	jobs := e.Group("/jobs")
	jobs.Use(authMw.RequireAuth)

	jobs.GET("", d.JobHandler.List)
	jobs.POST("", d.JobHandler.Create)
	jobs.GET("/stats", d.JobHandler.Stats)
	jobs.GET("/export.csv", d.JobHandler.Export)
	jobs.GET("/search", d.JobHandler.Search)
	jobs.GET("/:id", d.JobHandler.Get)
	jobs.PUT("/:id", d.JobHandler.Update)
	jobs.PATCH("/:id", d.JobHandler.Update)
	jobs.DELETE("/:id", d.JobHandler.Delete)
}
