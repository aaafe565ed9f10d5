package wire

import (
	"secure-login/internal/adaptor"
	"secure-login/pkg/middleware"
	"secure-login/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED USER ROUTES ====================
	// Profile - requires a valid session token
	r.With(middleware.VerifyToken(config.JWT.Secret, log)).Get("/api/user/me", userHandler.Me)
}
