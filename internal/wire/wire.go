package wire

import (
	"context"
	"net/http"
	"time"

	"secure-login/internal/adaptor"
	"secure-login/internal/data/repository"
	"secure-login/internal/mailer"
	"secure-login/internal/usecase"
	"secure-login/pkg/middleware"
	"secure-login/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the assembled dependencies
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	// Notifier, services and handlers
	notifier := mailer.NewSMTPMailer(config.Email, logger)
	service := usecase.NewService(repo, notifier, config, logger)
	handler := adaptor.NewHandler(service, logger)

	// Setup router
	router := setupRouter(handler, config, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the Chi router
func setupRouter(
	handler *adaptor.Handler,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Global per-IP rate limiter, independent of the auth logic. The cleanup
	// loop evicts entries for IPs that never come back.
	limiter := middleware.NewRateLimiter()
	window := time.Duration(config.RateLimit.WindowMinutes) * time.Minute
	r.Use(middleware.RateLimit(limiter, config.RateLimit.MaxRequests, window))
	go limiter.CleanupLoop(context.Background(), window)

	// Apply routes
	wireAuth(r, handler.Auth)
	wireUser(r, handler.User, config, logger)
	wireAdmin(r, handler.Admin, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
