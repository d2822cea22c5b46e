package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/wisha-api/internal/auth"
	"github.com/gravadigital/wisha-api/internal/board"
	"github.com/gravadigital/wisha-api/internal/config"
	"github.com/gravadigital/wisha-api/internal/handlers"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/middleware"
	"github.com/gravadigital/wisha-api/internal/realtime"
	"github.com/gravadigital/wisha-api/internal/services"
	"github.com/gravadigital/wisha-api/internal/storage"
	"github.com/gravadigital/wisha-api/internal/storage/cache"
)

// IdempotencyTTL is how long a wizard Idempotency-Key keeps pointing at its event
const IdempotencyTTL = 24 * time.Hour

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	config      *config.Config
	backends    *storage.Backends
	services    *services.Services
	board       *board.Board
	hub         *realtime.Hub
	preferences *cache.PreferenceStore
	idempotency *cache.IdempotencyStore
}

// New wires services, the board and the realtime hub over the opened backends
func New(cfg *config.Config, backends *storage.Backends) *Server {
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	provider := auth.NewProvider(backends.Repos.Identities(), cache.NewSessionStore(backends.Cache), tokens)
	svc := services.New(backends.Repos, backends.Objects, provider, cfg.Upload.MaxFileSize)
	hub := realtime.NewHub()

	return &Server{
		config:      cfg,
		backends:    backends,
		services:    svc,
		board:       board.New(svc.Messages, svc.Activities, svc.Storage, hub),
		hub:         hub,
		preferences: cache.NewPreferenceStore(backends.Cache),
		idempotency: cache.NewIdempotencyStore(backends.Cache, IdempotencyTTL),
	}
}

// Hub returns the realtime hub; the caller runs it
func (s *Server) Hub() *realtime.Hub {
	return s.hub
}

// Start starts the HTTP server
func (s *Server) Start() error {
	router := s.Router()

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		// Timeouts seguros según estándares de Go. WriteTimeout queda en cero
		// porque los websockets del tablero son conexiones largas.
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Router configures the HTTP router with middleware and routes
func (s *Server) Router() *gin.Engine {
	// Configurar Gin
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if s.config.Server.GinMode != "" {
		gin.SetMode(s.config.Server.GinMode)
	}

	router := gin.New()

	// Middleware básico
	router.Use(middleware.RequestLog())
	router.Use(gin.Recovery())

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.SplitList(s.config.CORS.AllowOrigins)
	corsConfig.AllowMethods = config.SplitList(s.config.CORS.AllowMethods)
	corsConfig.AllowHeaders = config.SplitList(s.config.CORS.AllowHeaders)
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.MaxMultipartMemory = s.config.Upload.MaxFileSize

	if storage.UploadBackend(s.config.Upload.Backend) == storage.UploadBackendDisk {
		router.Static("/uploads", s.config.Upload.Dir)
	}

	// Health check
	router.GET("/ping", s.ping)

	s.setupAPIRoutes(router)

	return router
}

func (s *Server) ping(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if err := s.backends.Repos.Health(c.Request.Context()); err != nil {
		logger.Database().Warn("health check failed", "error", err)
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"message": "Wisha API is running",
		"status":  status,
	})
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(router *gin.Engine) {
	svc := s.services

	authHandler := handlers.NewAuthHandler()
	userHandler := handlers.NewUserHandler(svc.Users)
	eventHandler := handlers.NewEventHandler(svc.Events, svc.Activities, s.idempotency)
	messageHandler := handlers.NewMessageHandler(s.board, svc.Events)
	itemHandler := handlers.NewItemHandler(svc.Items, svc.Events)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	preferenceHandler := handlers.NewPreferenceHandler(s.preferences, svc.Events)
	liveHandler := handlers.NewLiveHandler(s.hub, svc.Events, config.SplitList(s.config.CORS.AllowOrigins))

	requireAuth := middleware.RequireAuth()

	api := router.Group("/api")
	api.Use(middleware.Timeout(s.config.Server.RequestTimeout))
	api.Use(middleware.Session(svc.Auth))
	{
		api.GET("/ping", s.ping)
		api.GET("/categories", eventHandler.Categories)
		api.GET("/dashboard", requireAuth, dashboardHandler.GetDashboard)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/session", authHandler.Session)
			authRoutes.GET("/exists", authHandler.Exists)
		}

		users := api.Group("/users")
		{
			users.PATCH("/me", requireAuth, userHandler.UpdateMe)
		}

		events := api.Group("/events")
		{
			events.GET("", eventHandler.ListEvents)
			events.POST("", eventHandler.CreateEvent)
			events.GET("/:id", eventHandler.GetEvent)
			events.PATCH("/:id", requireAuth, eventHandler.UpdateEvent)
			events.DELETE("/:id", requireAuth, eventHandler.DeleteEvent)
			events.GET("/:id/activities", eventHandler.ListActivities)

			events.GET("/:id/messages", messageHandler.ListMessages)
			events.POST("/:id/messages", messageHandler.PostMessage)

			events.GET("/:id/items", itemHandler.ListItems)
			events.POST("/:id/items", requireAuth, itemHandler.CreateItem)

			events.GET("/:id/preferences", preferenceHandler.GetPreferences)
			events.PUT("/:id/preferences", requireAuth, preferenceHandler.SavePreferences)

			events.GET("/:id/live", liveHandler.Subscribe)
		}

		items := api.Group("/items", requireAuth)
		{
			items.PATCH("/:id", itemHandler.UpdateItem)
			items.DELETE("/:id", itemHandler.DeleteItem)
			items.POST("/:id/claim", itemHandler.ClaimItem)
			items.POST("/:id/unclaim", itemHandler.UnclaimItem)
		}
	}
}
