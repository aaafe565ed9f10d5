package adaptor

import (
	"net/http"
	"strconv"

	"secure-login/internal/dto/request"
	"secure-login/internal/usecase"
	"secure-login/pkg/utils"

	"go.uber.org/zap"
)

type AdminHandler struct {
	service usecase.AdminService
	log     *zap.Logger
}

func NewAdminHandler(service usecase.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log,
	}
}

// GetAllUsers handles GET /api/admin/users (admin only)
func (h *AdminHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	req := &request.PaginatedRequest{
		Page:    1,
		PerPage: 10,
	}

	// Parse query parameters
	query := r.URL.Query()
	req.Page = h.parseInt(query.Get("page"), 1)
	req.PerPage = h.parseInt(query.Get("per_page"), 10)

	users, err := h.service.GetAllUsers(r.Context(), req)
	if err != nil {
		h.log.Error("Failed to get all users", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}

// GetLogs handles GET /api/admin/logs (admin only)
func (h *AdminHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.GetLoginLogs(r.Context())
	if err != nil {
		h.log.Error("Failed to get login logs", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "Logs retrieved successfully", logs)
}

// parseInt helper for query parameters
func (h *AdminHandler) parseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}
