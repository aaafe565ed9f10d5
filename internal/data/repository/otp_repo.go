package repository

import (
	"context"
	"fmt"

	"secure-login/internal/data/entity"
	"secure-login/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OTPRepository interface {
	Upsert(ctx context.Context, otp *entity.OneTimeCode) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.OneTimeCode, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type otpRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOTPRepository(db database.PgxIface, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

// Upsert stores the pending code for a user, replacing any previous one in a
// single atomic statement. user_id is the primary key, so concurrent logins
// for one user resolve to last write wins.
func (r *otpRepository) Upsert(ctx context.Context, otp *entity.OneTimeCode) error {
	query := `
		INSERT INTO one_time_codes (user_id, otp_code, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET otp_code = EXCLUDED.otp_code,
		              expires_at = EXCLUDED.expires_at,
		              created_at = EXCLUDED.created_at
	`

	_, err := r.db.Exec(ctx, query,
		otp.UserID,
		otp.Code,
		otp.ExpiresAt,
		otp.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to upsert OTP",
			zap.Error(err),
			zap.String("user_id", otp.UserID.String()),
		)
		return fmt.Errorf("upsert OTP for user %s: %w", otp.UserID.String(), err)
	}

	return nil
}

func (r *otpRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.OneTimeCode, error) {
	query := `
		SELECT user_id, otp_code, expires_at, created_at
		FROM one_time_codes
		WHERE user_id = $1
	`

	var otp entity.OneTimeCode
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&otp.UserID,
		&otp.Code,
		&otp.ExpiresAt,
		&otp.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find OTP",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find OTP for user %s: %w", userID.String(), err)
	}

	return &otp, nil
}

func (r *otpRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM one_time_codes WHERE user_id = $1`

	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to delete OTP",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("delete OTP for user %s: %w", userID.String(), err)
	}

	return nil
}
