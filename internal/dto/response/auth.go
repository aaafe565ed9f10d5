package response

import (
	"secure-login/internal/data/entity"
)

// LoginResponse references the pending challenge; no session token exists
// until the code is verified.
type LoginResponse struct {
	UserID string `json:"userId"`
}

type VerifyOTPResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

type SessionUser struct {
	Username string          `json:"username"`
	Role     entity.UserRole `json:"role"`
}

func VerifyOTPToResponse(user *entity.User, token string) *VerifyOTPResponse {
	return &VerifyOTPResponse{
		Token: token,
		User: SessionUser{
			Username: user.Username,
			Role:     user.Role,
		},
	}
}
