package repository

import (
	"secure-login/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User UserRepository
	OTP  OTPRepository
	Log  LoginLogRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User: NewUserRepository(db, log),
		OTP:  NewOTPRepository(db, log),
		Log:  NewLoginLogRepository(db, log),
	}
}
