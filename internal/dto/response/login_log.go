package response

import (
	"time"

	"secure-login/internal/data/entity"
)

type LoginLogResponse struct {
	ID        string             `json:"id"`
	UserID    *string            `json:"user_id,omitempty"`
	Username  string             `json:"username"`
	IPAddress string             `json:"ip_address"`
	Device    string             `json:"device"`
	Status    entity.LoginStatus `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
}

func LoginLogToResponse(entry *entity.LoginLog) LoginLogResponse {
	resp := LoginLogResponse{
		ID:        entry.ID.String(),
		Username:  entry.Username,
		IPAddress: entry.IPAddress,
		Device:    entry.Device,
		Status:    entry.Status,
		Timestamp: entry.CreatedAt,
	}

	if entry.UserID != nil {
		id := entry.UserID.String()
		resp.UserID = &id
	}

	return resp
}
