package usecase

import (
	"context"
	"fmt"

	"secure-login/internal/data/repository"
	"secure-login/internal/dto/request"
	"secure-login/internal/dto/response"
	"secure-login/pkg/utils"

	"go.uber.org/zap"
)

// logFetchLimit caps the audit trail view at the latest entries.
const logFetchLimit = 100

type AdminService interface {
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	GetLoginLogs(ctx context.Context) ([]response.LoginLogResponse, error)
}

type adminService struct {
	userRepo repository.UserRepository
	logRepo  repository.LoginLogRepository
	log      *zap.Logger
}

func NewAdminService(userRepo repository.UserRepository, logRepo repository.LoginLogRepository, log *zap.Logger) AdminService {
	return &adminService{
		userRepo: userRepo,
		logRepo:  logRepo,
		log:      log,
	}
}

func (as *adminService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	// Set defaults
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = 10
	}
	if req.PerPage > 100 {
		req.PerPage = 100
	}

	users, err := as.userRepo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		as.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get users: %w", err)
	}

	total, err := as.userRepo.CountAll(ctx)
	if err != nil {
		as.log.Error("Failed to count users", zap.Error(err))
		return nil, fmt.Errorf("count users: %w", err)
	}

	// Convert to response; password hashes never leave this layer
	userResponses := make([]response.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = response.UserToResponse(user)
	}

	as.log.Info("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("total_pages", utils.CalculateTotalPages(total, req.PerPage)),
	)

	return response.NewPaginatedResponse(userResponses, req.Page, req.PerPage, total), nil
}

// GetLoginLogs returns the latest audit entries, newest first.
func (as *adminService) GetLoginLogs(ctx context.Context) ([]response.LoginLogResponse, error) {
	entries, err := as.logRepo.FindLatest(ctx, logFetchLimit)
	if err != nil {
		as.log.Error("Failed to get login logs", zap.Error(err))
		return nil, fmt.Errorf("get login logs: %w", err)
	}

	logResponses := make([]response.LoginLogResponse, len(entries))
	for i, entry := range entries {
		logResponses[i] = response.LoginLogToResponse(entry)
	}

	return logResponses, nil
}
