package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/tsiemasilo/tendermanagement/internal/api/handler"
	"github.com/tsiemasilo/tendermanagement/internal/api/metrics"
	"github.com/tsiemasilo/tendermanagement/internal/api/middleware"
	"github.com/tsiemasilo/tendermanagement/internal/api/session"
	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
)

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	Logger   zerolog.Logger
	Auth     ports.AuthService
	Users    ports.UserService
	Tenders  ports.TenderService
	Exporter ports.TenderExporter
	Sessions *session.Manager

	// BasePath prefixes every API route. Defaults to /api.
	BasePath   string
	CORSOrigin string
	// Registry receives HTTP and domain metrics and backs /metrics. A fresh
	// registry is created when nil.
	Registry *prometheus.Registry
	// Pingers are the backends checked by /health/ready.
	Pingers       map[string]ports.Pinger
	EnableSwagger bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	if d.BasePath == "" {
		d.BasePath = "/api"
	}
	if d.CORSOrigin == "" {
		d.CORSOrigin = "*"
	}
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	if err := metrics.Register(reg); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(middleware.Recover(d.Logger))
	e.Use(echomiddleware.RequestID())
	// Outside the request logger so status labels reflect the handled error.
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(corsConfig(d.CORSOrigin)))

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	if d.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Sessions, d.Logger)
	userHandler := handler.NewUserHandler(d.Users)
	tenderHandler := handler.NewTenderHandler(d.Tenders, d.Exporter)
	healthHandler := handler.NewHealthHandler(d.Pingers)

	api := e.Group(d.BasePath, middleware.Sessions(d.Sessions, d.Logger))

	// --- Health probes (no auth required) ---
	api.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	api.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me)

	// --- Admin routes ---
	admin := api.Group("/admin", middleware.RequireAdmin(d.Auth))
	admin.GET("/users", userHandler.List)
	admin.GET("/users/:id", userHandler.Get)
	admin.POST("/users", userHandler.Create)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)

	// --- Tender routes ---
	tenders := api.Group("/tenders", middleware.RequireAuth())
	tenders.GET("", tenderHandler.List)
	tenders.GET("/calendar", tenderHandler.Calendar)
	tenders.GET("/export", tenderHandler.Export)
	tenders.GET("/:id", tenderHandler.Get)
	tenders.POST("", tenderHandler.Create)
	tenders.PUT("/:id", tenderHandler.Update)
	tenders.DELETE("/:id", tenderHandler.Delete)

	return e, nil
}

func corsConfig(origin string) echomiddleware.CORSConfig {
	return echomiddleware.CORSConfig{
		AllowOrigins:     []string{origin},
		AllowCredentials: true,
		// Browsers refuse "*" with credentials, so the request origin is echoed.
		UnsafeWildcardOriginWithAllowCredentials: origin == "*",
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderContentType,
			echo.HeaderAuthorization,
			echo.HeaderContentLength,
			echo.HeaderXRequestedWith,
		},
	}
}
