// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/config"
	"github.com/iliyamo/unit-reservation/internal/handler"
	"github.com/iliyamo/unit-reservation/internal/middleware"
	"github.com/iliyamo/unit-reservation/internal/model"
)

// Handlers groups every resource handler the API exposes.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Towers       *handler.CatalogHandler[model.Tower]
	RoomTypes    *handler.CatalogHandler[model.RoomType]
	Facilities   *handler.CatalogHandler[model.Facility]
	Floors       *handler.FloorHandler
	Units        *handler.UnitHandler
	Reservations *handler.ReservationHandler
}

// Options carries everything New needs besides the handlers.  A nil Redis
// disables rate limiting and caching.
type Options struct {
	JWTSecret string
	UploadDir string
	BodyLimit string
	Health    handler.Pinger
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Log       *zap.Logger
}

// New builds the echo instance.  Public: /healthz, /uploads and the token
// endpoints under /v1/auth.  Everything else under /v1 runs Authenticate,
// RateLimit and Cache in that order; writes and reservation routes also
// check the caller's role before the body is read.
func New(h Handlers, opt Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(opt.Log))
	if opt.BodyLimit != "" {
		e.Use(echomw.BodyLimit(opt.BodyLimit))
	}

	e.GET("/healthz", handler.Health(opt.Health))
	if opt.UploadDir != "" {
		e.Static("/uploads", opt.UploadDir)
	}

	pub := e.Group("/v1/auth")
	pub.POST("/login", h.Auth.Login)
	pub.POST("/refresh", h.Auth.Refresh)
	pub.POST("/logout", h.Auth.Logout)

	v1 := e.Group("/v1",
		middleware.Authenticate(opt.JWTSecret),
		middleware.RateLimit(opt.RateLimit, opt.Redis, opt.Log),
		middleware.Cache(opt.Cache, opt.Redis, opt.Log),
	)
	v1.GET("/auth/me", h.Auth.Me)

	registerUsers(v1, h.Users)
	registerCatalog(v1, "/towers", h.Towers)
	registerCatalog(v1, "/room-types", h.RoomTypes)
	registerCatalog(v1, "/facilities", h.Facilities)
	registerFloors(v1, h.Floors)
	registerUnits(v1, h.Units)
	registerReservations(v1, h.Reservations)
	return e
}

var (
	adminOnly        = middleware.RequireRole(model.RoleAdmin)
	reservationStaff = middleware.RequireRole(model.RoleSalesman, model.RoleSupervisor)
	supervisors      = middleware.RequireRole(model.RoleSupervisor)
)

func registerUsers(g *echo.Group, u *handler.UserHandler) {
	g.GET("/users", u.List)
	g.POST("/users", u.Create, adminOnly)
	g.GET("/users/:id", u.Get)
	g.PUT("/users/:id", u.Update, adminOnly)
	g.DELETE("/users/:id", u.Delete, adminOnly)
}

func registerCatalog[T any](g *echo.Group, path string, c *handler.CatalogHandler[T]) {
	g.GET(path, c.List)
	g.POST(path, c.Create, adminOnly)
	g.GET(path+"/:id", c.Get)
	g.PUT(path+"/:id", c.Update, adminOnly)
	g.DELETE(path+"/:id", c.Delete, adminOnly)
}

func registerFloors(g *echo.Group, f *handler.FloorHandler) {
	g.GET("/floors", f.List)
	g.POST("/floors", f.Create, adminOnly)
	g.GET("/floors/:id", f.Get)
	g.PUT("/floors/:id", f.Update, adminOnly)
	g.DELETE("/floors/:id", f.Delete, adminOnly)
}

func registerUnits(g *echo.Group, u *handler.UnitHandler) {
	g.GET("/units", u.List)
	g.POST("/units", u.Create, adminOnly)
	g.GET("/units/:id", u.Get)
	g.PUT("/units/:id", u.Update, adminOnly)
	g.DELETE("/units/:id", u.Delete, adminOnly)
}

func registerReservations(g *echo.Group, r *handler.ReservationHandler) {
	g.GET("/reservations", r.List, reservationStaff)
	g.POST("/reservations", r.Create, reservationStaff)
	g.GET("/reservations/:uuid", r.Get, reservationStaff)
	g.POST("/reservations/:uuid/payment-proof", r.UploadPaymentProof, reservationStaff)
	g.PATCH("/reservations/:uuid/status", r.UpdateStatus, supervisors)
}
