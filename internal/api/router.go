package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/queuejw/messenger/docs"
	"github.com/queuejw/messenger/internal/api/handler"
	"github.com/queuejw/messenger/internal/api/middleware"
	"github.com/queuejw/messenger/internal/core/ports"
	"github.com/queuejw/messenger/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Accounts ports.AccountService
	Messages ports.MessageService
	// Ready lists the dependencies checked by the readiness probe.
	Ready  map[string]handlers.Pinger
	Logger zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "messenger",
		Registerer: deps.Registerer,
	}))

	// --- Health probes, metrics and docs ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Ready)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – is storage reachable?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API ---
	authHandler := handler.NewAuthHandler(deps.Accounts)
	messageHandler := handler.NewMessageHandler(deps.Messages)

	v := e.Group("/api")
	v.POST("/login", authHandler.Login)
	v.POST("/register", authHandler.Register)
	v.GET("/users/:id", authHandler.GetUser)
	v.POST("/messages/send", messageHandler.Send)
	v.GET("/messages/receive", messageHandler.Receive)

	return e
}
