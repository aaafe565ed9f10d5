package usecase

import (
	"context"
	"fmt"
	"time"

	"secure-login/internal/data/entity"
	"secure-login/internal/data/repository"
	"secure-login/internal/dto/request"
	"secure-login/internal/dto/response"
	"secure-login/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier delivers a one-time code to a user's registered email. No timeout
// or retry policy: a failed dispatch is surfaced to the caller, who resends.
type Notifier interface {
	SendOTP(email, code string) error
}

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) error
	Login(ctx context.Context, req *request.LoginRequest, ip, device string) (*response.LoginResponse, error)
	VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest, ip, device string) (*response.VerifyOTPResponse, error)
	ResendOTP(ctx context.Context, req *request.ResendOTPRequest) error
}

type authService struct {
	repo     *repository.Repository // grouping userRepo, otpRepo & logRepo
	notifier Notifier
	config   *utils.Config
	log      *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	notifier Notifier,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:     repo,
		notifier: notifier,
		config:   config,
		log:      log,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) error {
	// 1. Check username already taken
	existingUser, err := s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to check username", zap.Error(err), zap.String("username", req.Username))
		return fmt.Errorf("check username: %w", err)
	}
	if existingUser != nil {
		return ErrUserExists
	}

	// 2. Check email already registered
	existingUser, err = s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", req.Email))
		return fmt.Errorf("check email: %w", err)
	}
	if existingUser != nil {
		return ErrUserExists
	}

	// 3. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("hash password: %w", err)
	}

	// 4. Create user entity
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         entity.RoleUser,
	}

	// 5. Save user
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		return fmt.Errorf("create user: %w", err)
	}

	// No session is issued here; the user must log in separately.
	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return nil
}

// Login is step one of the two-factor flow: password check plus challenge
// issuance. On success the caller gets the pending challenge reference (the
// user id), never a session token.
func (s *authService) Login(ctx context.Context, req *request.LoginRequest, ip, device string) (*response.LoginResponse, error) {
	// 1. Find user by username
	user, err := s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to find user for login", zap.Error(err), zap.String("username", req.Username))
		return nil, fmt.Errorf("find user: %w", err)
	}

	// 2. Unknown username: audit with the raw username, no user id. The
	// error is identical to the wrong-password one so the response never
	// reveals whether the username exists.
	if user == nil {
		if err := s.appendLog(ctx, nil, req.Username, ip, device, entity.LoginFailure); err != nil {
			return nil, err
		}
		s.log.Warn("Login attempt for unknown username", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	// 3. Check password
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		if err := s.appendLog(ctx, &user.ID, req.Username, ip, device, entity.LoginFailure); err != nil {
			return nil, err
		}
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	// 4. Issue the challenge. No audit entry is written for a successful
	// password step; only completed OTP verification records a success.
	if err := s.issueChallenge(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("Login challenge issued",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return &response.LoginResponse{UserID: user.ID.String()}, nil
}

// VerifyOTP is step two: validate the pending code and mint the session.
func (s *authService) VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest, ip, device string) (*response.VerifyOTPResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, ErrChallengeNotFound
	}

	// 1. Fetch the pending code
	otp, err := s.repo.OTP.FindByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find OTP", zap.Error(err), zap.String("user_id", req.UserID))
		return nil, fmt.Errorf("find OTP: %w", err)
	}
	if otp == nil {
		return nil, ErrChallengeNotFound
	}

	// 2. Expired codes are rejected but left in place
	if time.Now().After(otp.ExpiresAt) {
		s.log.Warn("Expired OTP submitted", zap.String("user_id", req.UserID))
		return nil, ErrChallengeExpired
	}

	// 3. Wrong guess: audit and keep the code, so retries remain possible
	// until expiry. No lockout policy exists.
	if otp.Code != req.OTP {
		if err := s.appendLog(ctx, &userID, "", ip, device, entity.LoginFailure); err != nil {
			return nil, err
		}
		s.log.Warn("Invalid OTP submitted", zap.String("user_id", req.UserID))
		return nil, ErrInvalidCode
	}

	// 4. Load the user and mint the session token
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load user after OTP match", zap.Error(err), zap.String("user_id", req.UserID))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	expiry := time.Duration(s.config.JWT.ExpiryHours) * time.Hour
	token, err := utils.GenerateSessionToken(user.ID, string(user.Role), s.config.JWT.Secret, expiry)
	if err != nil {
		s.log.Error("Failed to mint session token", zap.Error(err), zap.String("user_id", req.UserID))
		return nil, fmt.Errorf("mint session token: %w", err)
	}

	// 5. Audit success, then clear the challenge
	if err := s.appendLog(ctx, &user.ID, user.Username, ip, device, entity.LoginSuccess); err != nil {
		return nil, err
	}

	if err := s.repo.OTP.DeleteByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear OTP: %w", err)
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return response.VerifyOTPToResponse(user, token), nil
}

// ResendOTP repeats the challenge issuance, resetting the expiry window. The
// dispatch result is logged but does not fail the request; no audit entry is
// written for resends.
func (s *authService) ResendOTP(ctx context.Context, req *request.ResendOTPRequest) error {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return ErrUserNotFound
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find user for resend", zap.Error(err), zap.String("user_id", req.UserID))
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	code := utils.GenerateOTP(s.config.OTP.Length)
	expiresAt := time.Now().Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute)

	otp := &entity.OneTimeCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	if err := s.repo.OTP.Upsert(ctx, otp); err != nil {
		return fmt.Errorf("upsert OTP: %w", err)
	}

	if err := s.notifier.SendOTP(user.Email, code); err != nil {
		s.log.Warn("Failed to resend OTP email",
			zap.Error(err),
			zap.String("user_id", user.ID.String()))
	}

	s.log.Info("OTP resent", zap.String("user_id", user.ID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

// issueChallenge generates a fresh code, replaces any outstanding one and
// dispatches it. If dispatch fails the upserted code stays stored; the user
// must retry or resend.
func (s *authService) issueChallenge(ctx context.Context, user *entity.User) error {
	code := utils.GenerateOTP(s.config.OTP.Length)
	expiresAt := time.Now().Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute)

	otp := &entity.OneTimeCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	if err := s.repo.OTP.Upsert(ctx, otp); err != nil {
		return fmt.Errorf("upsert OTP: %w", err)
	}

	if err := s.notifier.SendOTP(user.Email, code); err != nil {
		s.log.Error("Failed to dispatch OTP",
			zap.Error(err),
			zap.String("user_id", user.ID.String()))
		return ErrNotificationFailed
	}

	return nil
}

func (s *authService) appendLog(ctx context.Context, userID *uuid.UUID, username, ip, device string, status entity.LoginStatus) error {
	entry := &entity.LoginLog{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:    userID,
		Username:  username,
		IPAddress: ip,
		Device:    device,
		Status:    status,
	}

	if err := s.repo.Log.Create(ctx, entry); err != nil {
		return fmt.Errorf("append login log: %w", err)
	}

	return nil
}
