// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"radar/config"
	"radar/internal/delivery/http/middleware"
	"radar/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	Config          *config.Config
	UserHandler     *handler.UserHandler
	DispatchHandler *handler.DispatchHandler
	AdminHandler    *handler.AdminHandler
	TestHandler     *handler.TestHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	cfg             *config.Config
	userHandler     *handler.UserHandler
	dispatchHandler *handler.DispatchHandler
	adminHandler    *handler.AdminHandler
	testHandler     *handler.TestHandler
	authMiddleware  *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		cfg:             params.Config,
		userHandler:     params.UserHandler,
		dispatchHandler: params.DispatchHandler,
		adminHandler:    params.AdminHandler,
		testHandler:     params.TestHandler,
		authMiddleware:  params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes: admin bootstrap + login only. There is no end-user
	// account surface in the dispatch core.
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.userHandler.RegisterUser)
		authGroup.POST("/login", r.userHandler.Login)
	}

	// Dispatch routes are the public surface of the core: single-order and
	// batch assignment, plus standalone route resequencing.
	dispatchGroup := e.Group("/dispatch")
	{
		dispatchGroup.POST("/single", r.dispatchHandler.DispatchSingle)
		dispatchGroup.POST("/batch", r.dispatchHandler.DispatchBatch)
		dispatchGroup.POST("/resequence", r.dispatchHandler.ResequenceRoute)
	}

	// Admin routes hot-swap operational config; only an "admin" role may
	// reach them.
	adminGroup := e.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)
	adminGroup.Use(r.authMiddleware.RequireRole("admin"))
	{
		adminGroup.GET("/scoring-config", r.adminHandler.GetScoringConfig)
		adminGroup.PUT("/scoring-config", r.adminHandler.UpdateScoringConfig)
		adminGroup.POST("/zones/reload", r.adminHandler.ReloadZones)
	}

	// Test routes exercise the auth middleware directly; only mounted when
	// explicitly enabled, never in production.
	if r.cfg.TestRoutes != nil && r.cfg.TestRoutes.Enabled {
		testGroup := e.Group("/test")
		testGroup.GET("/public", r.testHandler.TestPublicEndpoint)
		testGroup.GET("/auth", r.testHandler.TestAuthMiddleware, r.authMiddleware.Authenticate)
	}
}
