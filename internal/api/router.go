package api

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"parts-and-service/internal/api/middleware"
	"parts-and-service/internal/config"
	"parts-and-service/internal/models"
	"parts-and-service/internal/modules/bookings"
	"parts-and-service/internal/modules/catalog"
	"parts-and-service/internal/modules/orders"
	"parts-and-service/internal/modules/tracking"
	"parts-and-service/internal/modules/users"
)

// Handlers bundles every module handler the router mounts.
type Handlers struct {
	Users    *users.Handler
	Catalog  *catalog.Handler
	Orders   *orders.Handler
	Bookings *bookings.Handler
	Tracking *tracking.Handler
}

// NewRouter assembles the echo instance and mounts all routes.
//
// Route groups:
//
//	/api            public: auth, product browsing, quotes, tracking
//	/api            authed: profile, orders, bookings
//	/api/supplier   supplier product management
//	/api/admin      admin overrides and listings
func NewRouter(cfg *config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.ClientOrigin},
		AllowCredentials: true,
	}))

	auth := middleware.JWT(cfg.JWTSecret)

	public := e.Group("/api")
	h.Users.RegisterPublicRoutes(public)
	h.Catalog.RegisterPublicRoutes(public)
	h.Bookings.RegisterPublicRoutes(public)
	h.Tracking.RegisterRoutes(public)

	authed := e.Group("/api", auth)
	h.Users.RegisterRoutes(authed)
	h.Orders.RegisterRoutes(authed)
	h.Bookings.RegisterRoutes(authed)

	supplier := e.Group("/api/supplier", auth, middleware.RequireRole(models.RoleSupplier, models.RoleAdmin))
	h.Catalog.RegisterSupplierRoutes(supplier)

	admin := e.Group("/api/admin", auth, middleware.RequireRole(models.RoleAdmin))
	h.Users.RegisterAdminRoutes(admin)
	h.Orders.RegisterAdminRoutes(admin)
	h.Bookings.RegisterAdminRoutes(admin)

	return e
}
