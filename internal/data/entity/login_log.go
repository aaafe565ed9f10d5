package entity

import (
	"github.com/google/uuid"
)

type LoginStatus string

const (
	LoginSuccess LoginStatus = "success"
	LoginFailure LoginStatus = "failure"
)

// LoginLog is an append-only audit record of a login attempt. UserID is nil
// when the attempt was made against a username that does not exist; the raw
// username string is always retained.
type LoginLog struct {
	BaseSimple
	UserID    *uuid.UUID  `db:"user_id"`
	Username  string      `db:"username"`
	IPAddress string      `db:"ip_address"`
	Device    string      `db:"device"`
	Status    LoginStatus `db:"status"`
}
