package repository

import (
	"context"
	"fmt"

	"secure-login/internal/data/entity"
	"secure-login/pkg/database"

	"go.uber.org/zap"
)

type LoginLogRepository interface {
	Create(ctx context.Context, entry *entity.LoginLog) error
	FindLatest(ctx context.Context, limit int) ([]*entity.LoginLog, error)
}

type loginLogRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewLoginLogRepository(db database.PgxIface, log *zap.Logger) LoginLogRepository {
	return &loginLogRepository{
		db:  db,
		log: log.With(zap.String("repository", "login_log")),
	}
}

// Create appends an audit entry. Entries are never updated or deleted.
func (r *loginLogRepository) Create(ctx context.Context, entry *entity.LoginLog) error {
	query := `
		INSERT INTO login_logs (id, user_id, username, ip_address, device, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Username,
		entry.IPAddress,
		entry.Device,
		entry.Status,
		entry.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create login log",
			zap.Error(err),
			zap.String("username", entry.Username),
			zap.String("status", string(entry.Status)),
		)
		return fmt.Errorf("create login log for %s: %w", entry.Username, err)
	}

	return nil
}

// FindLatest returns the newest entries first, capped at limit.
func (r *loginLogRepository) FindLatest(ctx context.Context, limit int) ([]*entity.LoginLog, error) {
	query := `
		SELECT id, user_id, username, ip_address, device, status, created_at
		FROM login_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to get login logs",
			zap.Error(err),
			zap.Int("limit", limit),
		)
		return nil, fmt.Errorf("find latest login logs limit %d: %w", limit, err)
	}
	defer rows.Close()

	var entries []*entity.LoginLog
	for rows.Next() {
		var entry entity.LoginLog
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Username,
			&entry.IPAddress,
			&entry.Device,
			&entry.Status,
			&entry.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan login log row", zap.Error(err))
			return nil, fmt.Errorf("scan login log row: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate login log rows: %w", err)
	}

	return entries, nil
}
