// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"motormate_backend/internal/booking"
	"motormate_backend/internal/calendar"
	"motormate_backend/internal/config"
	"motormate_backend/internal/contact"
	"motormate_backend/internal/firebase"
	"motormate_backend/internal/garage"
	"motormate_backend/internal/identity"
	"motormate_backend/internal/jobs"
	"motormate_backend/internal/middleware"
	"motormate_backend/internal/notification"
	platformElasticsearch "motormate_backend/internal/platform/elasticsearch"
	"motormate_backend/internal/profile"
	"motormate_backend/internal/route"
	"motormate_backend/internal/vehicle"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Exposed for startup tasks in main (index creation, reindex).
	ESClient  *platformElasticsearch.ESClientWrapper
	AppLogger *zap.Logger

	// Handlers
	identityHandler     *identity.Handler
	profileHandler      *profile.Handler
	routeHandler        *route.Handler
	garageHandler       *garage.Handler
	vehicleHandler      *vehicle.Handler
	bookingHandler      *booking.Handler
	notificationHandler *notification.Handler
	calendarHandler     *calendar.Handler
	contactHandler      *contact.Handler

	// Jobs
	bookingReminderJob *jobs.BookingReminderJob

	// Middleware instances
	authMW         gin.HandlerFunc
	optionalAuthMW gin.HandlerFunc
	ownerMW        gin.HandlerFunc
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	identityHandler *identity.Handler,
	profileHandler *profile.Handler,
	routeHandler *route.Handler,
	garageHandler *garage.Handler,
	vehicleHandler *vehicle.Handler,
	bookingHandler *booking.Handler,
	notificationHandler *notification.Handler,
	calendarHandler *calendar.Handler,
	contactHandler *contact.Handler,
	bookingReminderJob *jobs.BookingReminderJob,
	db *gorm.DB,
	firebaseService *firebase.Service,
	resolver *profile.Resolver,
	esClient *platformElasticsearch.ESClientWrapper,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Create middleware instances
	authMW := middleware.Authentication(firebaseService, resolver, logger.Named("AuthMiddleware"))
	optionalAuthMW := middleware.OptionalAuthentication(firebaseService, resolver, logger.Named("OptionalAuthMiddleware"))
	ownerMW := middleware.RequireGarageOwner()

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Motor Mate API is healthy!"})
	})

	v1 := router.Group("/api/v1")

	identityHandler.RegisterRoutes(v1, authMW)
	profileHandler.RegisterRoutes(v1, authMW)
	routeHandler.RegisterRoutes(v1, optionalAuthMW)
	garageHandler.RegisterRoutes(v1, authMW, ownerMW)
	vehicleHandler.RegisterRoutes(v1, authMW)
	bookingHandler.RegisterRoutes(v1, authMW, ownerMW)
	notificationHandler.RegisterRoutes(v1, authMW)
	calendarHandler.RegisterRoutes(v1, authMW)
	contactHandler.RegisterRoutes(v1, optionalAuthMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:          httpServer,
		router:              router,
		cfg:                 cfg,
		logger:              logger,
		ESClient:            esClient,
		AppLogger:           logger,
		identityHandler:     identityHandler,
		profileHandler:      profileHandler,
		routeHandler:        routeHandler,
		garageHandler:       garageHandler,
		vehicleHandler:      vehicleHandler,
		bookingHandler:      bookingHandler,
		notificationHandler: notificationHandler,
		calendarHandler:     calendarHandler,
		contactHandler:      contactHandler,
		bookingReminderJob:  bookingReminderJob,
		authMW:              authMW,
		optionalAuthMW:      optionalAuthMW,
		ownerMW:             ownerMW,
	}, nil
}

func (s *Server) Start() error {
	if s.bookingReminderJob != nil {
		if err := s.bookingReminderJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start booking reminder job", zap.Error(err))
		}
	} else {
		s.logger.Info("Booking reminder job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.bookingReminderJob != nil {
		s.bookingReminderJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
