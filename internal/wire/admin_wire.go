package wire

import (
	"secure-login/internal/adaptor"
	"secure-login/pkg/middleware"
	"secure-login/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(
	r chi.Router,
	adminHandler *adaptor.AdminHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	// Requires both a valid session token AND the admin role
	r.With(
		middleware.VerifyToken(config.JWT.Secret, log), // Check session token
		middleware.VerifyAdmin(log),                    // Check admin role
	).Route("/api/admin", func(r chi.Router) {
		r.Get("/users", adminHandler.GetAllUsers) // GET /api/admin/users?page=1&per_page=10
		r.Get("/logs", adminHandler.GetLogs)      // GET /api/admin/logs (latest 100)
	})
}
