package usecase

import (
	"secure-login/internal/data/repository"
	"secure-login/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth  AuthService
	User  UserService
	Admin AdminService
}

func NewService(repo *repository.Repository, notifier Notifier, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:  NewAuthService(repo, notifier, config, log),
		User:  NewUserService(repo.User, log),
		Admin: NewAdminService(repo.User, repo.Log, log),
	}
}
