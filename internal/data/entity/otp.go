package entity

import (
	"time"

	"github.com/google/uuid"
)

// OneTimeCode is the pending login challenge for a user. At most one row
// exists per user; issuing a new code replaces the previous one.
type OneTimeCode struct {
	UserID    uuid.UUID `db:"user_id"`
	Code      string    `db:"otp_code"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}
