package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"secure-login/internal/data/entity"
	"secure-login/internal/data/repository"
	"secure-login/internal/dto/request"
	"secure-login/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ==================== FAKES ====================

type fakeUserRepo struct {
	users []*entity.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	return f.users, nil
}

func (f *fakeUserRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakeOTPRepo struct {
	codes map[uuid.UUID]*entity.OneTimeCode
}

func (f *fakeOTPRepo) Upsert(ctx context.Context, otp *entity.OneTimeCode) error {
	f.codes[otp.UserID] = otp
	return nil
}

func (f *fakeOTPRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.OneTimeCode, error) {
	return f.codes[userID], nil
}

func (f *fakeOTPRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	delete(f.codes, userID)
	return nil
}

type fakeLogRepo struct {
	entries []*entity.LoginLog
}

func (f *fakeLogRepo) Create(ctx context.Context, entry *entity.LoginLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLogRepo) FindLatest(ctx context.Context, limit int) ([]*entity.LoginLog, error) {
	if len(f.entries) <= limit {
		return f.entries, nil
	}
	return f.entries[len(f.entries)-limit:], nil
}

type sentMail struct {
	email string
	code  string
}

type fakeNotifier struct {
	sent []sentMail
	fail bool
}

func (f *fakeNotifier) SendOTP(email, code string) error {
	if f.fail {
		return errors.New("smtp unreachable")
	}
	f.sent = append(f.sent, sentMail{email: email, code: code})
	return nil
}

// ==================== HELPERS ====================

type testEnv struct {
	svc      AuthService
	users    *fakeUserRepo
	otps     *fakeOTPRepo
	logs     *fakeLogRepo
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &fakeUserRepo{}
	otps := &fakeOTPRepo{codes: make(map[uuid.UUID]*entity.OneTimeCode)}
	logs := &fakeLogRepo{}
	notifier := &fakeNotifier{}

	repo := &repository.Repository{
		User: users,
		OTP:  otps,
		Log:  logs,
	}

	config := &utils.Config{
		JWT: utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
		OTP: utils.OTPConfig{ExpiryMinutes: 5, Length: 6},
	}

	svc := NewAuthService(repo, notifier, config, zap.NewNop())

	return &testEnv{
		svc:      svc,
		users:    users,
		otps:     otps,
		logs:     logs,
		notifier: notifier,
	}
}

func (e *testEnv) register(t *testing.T, username, email, password string) *entity.User {
	t.Helper()

	err := e.svc.Register(context.Background(), &request.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}

	user, _ := e.users.FindByUsername(context.Background(), username)
	if user == nil {
		t.Fatalf("user %s not persisted", username)
	}
	return user
}

// ==================== REGISTRATION ====================

func TestRegisterPersistsUser(t *testing.T) {
	env := newTestEnv(t)

	user := env.register(t, "alice", "a@x.com", "Secret123!")

	if user.Role != entity.RoleUser {
		t.Errorf("role = %q, want %q", user.Role, entity.RoleUser)
	}
	if user.PasswordHash == "Secret123!" || user.PasswordHash == "" {
		t.Error("password must be stored as a hash, never plaintext")
	}
	if !utils.CheckPasswordHash("Secret123!", user.PasswordHash) {
		t.Error("stored hash does not verify against the original password")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "a@x.com", "Secret123!")

	err := env.svc.Register(context.Background(), &request.RegisterRequest{
		Username: "alice",
		Email:    "other@x.com",
		Password: "Secret123!",
	})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("err = %v, want ErrUserExists", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "a@x.com", "Secret123!")

	err := env.svc.Register(context.Background(), &request.RegisterRequest{
		Username: "bob",
		Email:    "a@x.com",
		Password: "Secret123!",
	})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("err = %v, want ErrUserExists", err)
	}
}

// ==================== LOGIN STEP 1 ====================

func TestLoginUnknownUsername(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Login(context.Background(), &request.LoginRequest{
		Username: "ghost",
		Password: "whatever",
	}, "1.2.3.4", "cli")

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if len(env.logs.entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(env.logs.entries))
	}

	entry := env.logs.entries[0]
	if entry.UserID != nil {
		t.Error("user id must be nil when the username is unknown")
	}
	if entry.Username != "ghost" {
		t.Errorf("username = %q, want raw %q retained", entry.Username, "ghost")
	}
	if entry.Status != entity.LoginFailure {
		t.Errorf("status = %q, want failure", entry.Status)
	}
	if entry.IPAddress != "1.2.3.4" || entry.Device != "cli" {
		t.Errorf("ip/device = %q/%q, want 1.2.3.4/cli", entry.IPAddress, entry.Device)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice", "a@x.com", "Secret123!")

	_, err := env.svc.Login(context.Background(), &request.LoginRequest{
		Username: "alice",
		Password: "wrong",
	}, "1.2.3.4", "cli")

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if len(env.logs.entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(env.logs.entries))
	}

	entry := env.logs.entries[0]
	if entry.UserID == nil || *entry.UserID != user.ID {
		t.Error("failure entry must reference the user id when the username exists")
	}
	if entry.Status != entity.LoginFailure {
		t.Errorf("status = %q, want failure", entry.Status)
	}
}

func TestLoginErrorDoesNotRevealField(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "a@x.com", "Secret123!")

	_, unknownErr := env.svc.Login(context.Background(), &request.LoginRequest{
		Username: "ghost", Password: "whatever",
	}, "", "")
	_, wrongPassErr := env.svc.Login(context.Background(), &request.LoginRequest{
		Username: "alice", Password: "wrong",
	}, "", "")

	if unknownErr.Error() != wrongPassErr.Error() {
		t.Errorf("unknown username (%v) and wrong password (%v) must be indistinguishable",
			unknownErr, wrongPassErr)
	}
}

func TestLoginIssuesChallenge(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice", "a@x.com", "Secret123!")

	resp, err := env.svc.Login(context.Background(), &request.LoginRequest{
		Username: "alice",
		Password: "Secret123!",
	}, "1.2.3.4", "cli")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if resp.UserID != user.ID.String() {
		t.Errorf("userId = %q, want %q", resp.UserID, user.ID.String())
	}

	otp := env.otps.codes[user.ID]
	if otp == nil {
		t.Fatal("no pending code stored")
	}
	if len(otp.Code) != 6 {
		t.Errorf("code length = %d, want 6", len(otp.Code))
	}
	for _, c := range otp.Code {
		if c < '0' || c > '9' {
			t.Errorf("code %q contains non-digit", otp.Code)
			break
		}
	}

	wantExpiry := time.Now().Add(5 * time.Minute)
	if diff := otp.ExpiresAt.Sub(wantExpiry); diff < -time.Second || diff > time.Second {
		t.Errorf("expiry off by %v, want ~now+5m", diff)
	}

	if len(env.notifier.sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(env.notifier.sent))
	}
	if env.notifier.sent[0].email != "a@x.com" || env.notifier.sent[0].code != otp.Code {
		t.Errorf("dispatched %v, want stored code to a@x.com", env.notifier.sent[0])
	}

	// Passing the password alone is not audited; only completed OTP
	// verification writes a success entry.
	if len(env.logs.entries) != 0 {
		t.Errorf("log entries = %d, want 0 after step-1 success", len(env.logs.entries))
	}
}

func TestLoginNotifierFailure(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice", "a@x.com", "Secret123!")
	env.notifier.fail = true

	_, err := env.svc.Login(context.Background(), &request.LoginRequest{
		Username: "alice",
		Password: "Secret123!",
	}, "", "")

	if !errors.Is(err, ErrNotificationFailed) {
		t.Fatalf("err = %v, want ErrNotificationFailed", err)
	}

	// The upserted code stays stored; a resend can still deliver it.
	if env.otps.codes[user.ID] == nil {
		t.Error("pending code must remain stored after dispatch failure")
	}
}

// ==================== LOGIN STEP 2 ====================

func (e *testEnv) loginAlice(t *testing.T) (*entity.User, string) {
	t.Helper()

	user := e.register(t, "alice", "a@x.com", "Secret123!")
	_, err := e.svc.Login(context.Background(), &request.LoginRequest{
		Username: "alice",
		Password: "Secret123!",
	}, "1.2.3.4", "cli")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return user, e.otps.codes[user.ID].Code
}

func TestVerifyOTPChallengeNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		UserID: uuid.New().String(),
		OTP:    "123456",
	}, "", "")

	if !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("err = %v, want ErrChallengeNotFound", err)
	}
}

func TestVerifyOTPExpiry(t *testing.T) {
	env := newTestEnv(t)
	user, code := env.loginAlice(t)

	// Just inside the window: accepted
	env.otps.codes[user.ID].ExpiresAt = time.Now().Add(time.Second)
	resp, err := env.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		UserID: user.ID.String(),
		OTP:    code,
	}, "", "")
	if err != nil {
		t.Fatalf("verify inside window: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a session token")
	}

	// Fresh challenge just past the window: rejected, code left in place
	_, err = env.svc.Login(context.Background(), &request.LoginRequest{
		Username: "alice", Password: "Secret123!",
	}, "", "")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	env.otps.codes[user.ID].ExpiresAt = time.Now().Add(-time.Second)

	_, err = env.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		UserID: user.ID.String(),
		OTP:    env.otps.codes[user.ID].Code,
	}, "", "")
	if !errors.Is(err, ErrChallengeExpired) {
		t.Fatalf("err = %v, want ErrChallengeExpired", err)
	}
	if env.otps.codes[user.ID] == nil {
		t.Error("expired code must be left in place")
	}
}

func TestVerifyOTPWrongGuessKeepsCode(t *testing.T) {
	env := newTestEnv(t)
	user, code := env.loginAlice(t)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	_, err := env.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		UserID: user.ID.String(),
		OTP:    wrong,
	}, "1.2.3.4", "cli")
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("err = %v, want ErrInvalidCode", err)
	}

	if len(env.logs.entries) != 1 {
		t.Fatalf("log entries = %d, want 1 failure", len(env.logs.entries))
	}
	if env.logs.entries[0].Status != entity.LoginFailure {
		t.Errorf("status = %q, want failure", env.logs.entries[0].Status)
	}

	// Retries are unlimited until expiry: the correct code still works.
	resp, err := env.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		UserID: user.ID.String(),
		OTP:    code,
	}, "1.2.3.4", "cli")
	if err != nil {
		t.Fatalf("verify after wrong guess: %v", err)
	}
	if resp.User.Username != "alice" {
		t.Errorf("username = %q, want alice", resp.User.Username)
	}
}

func TestVerifyOTPSuccess(t *testing.T) {
	env := newTestEnv(t)
	user, code := env.loginAlice(t)

	resp, err := env.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		UserID: user.ID.String(),
		OTP:    code,
	}, "1.2.3.4", "cli")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if resp.User.Username != "alice" || resp.User.Role != entity.RoleUser {
		t.Errorf("user = %+v, want alice/user", resp.User)
	}

	// Token carries {user_id, role} and verifies with the same secret
	claims, err := utils.ParseSessionToken(resp.Token, "test-secret")
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != user.ID.String() {
		t.Errorf("claims user_id = %q, want %q", claims.UserID, user.ID.String())
	}
	if claims.Role != string(entity.RoleUser) {
		t.Errorf("claims role = %q, want user", claims.Role)
	}

	// Success is audited exactly once, and the challenge is cleared
	var successes int
	for _, entry := range env.logs.entries {
		if entry.Status == entity.LoginSuccess {
			successes++
			if entry.UserID == nil || *entry.UserID != user.ID {
				t.Error("success entry must reference the user id")
			}
			if entry.Username != "alice" {
				t.Errorf("success entry username = %q, want alice", entry.Username)
			}
		}
	}
	if successes != 1 {
		t.Errorf("success entries = %d, want exactly 1", successes)
	}
	if env.otps.codes[user.ID] != nil {
		t.Error("pending code must be deleted after successful verification")
	}

	// The challenge is single-use: a replay fails
	_, err = env.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		UserID: user.ID.String(),
		OTP:    code,
	}, "", "")
	if !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("replay err = %v, want ErrChallengeNotFound", err)
	}
}

// ==================== RESEND ====================

func TestResendUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.ResendOTP(context.Background(), &request.ResendOTPRequest{
		UserID: uuid.New().String(),
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestResendReplacesCode(t *testing.T) {
	env := newTestEnv(t)
	user, oldCode := env.loginAlice(t)

	if err := env.svc.ResendOTP(context.Background(), &request.ResendOTPRequest{
		UserID: user.ID.String(),
	}); err != nil {
		t.Fatalf("resend: %v", err)
	}

	if len(env.notifier.sent) != 2 {
		t.Fatalf("emails sent = %d, want 2", len(env.notifier.sent))
	}
	newCode := env.notifier.sent[1].code
	if env.otps.codes[user.ID].Code != newCode {
		t.Error("stored code must match the latest dispatched one")
	}

	// Only the newest code is accepted. Codes are random, so the old one
	// could coincide; only assert rejection when they actually differ.
	if oldCode != newCode {
		_, err := env.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
			UserID: user.ID.String(),
			OTP:    oldCode,
		}, "", "")
		if !errors.Is(err, ErrInvalidCode) {
			t.Errorf("old code err = %v, want ErrInvalidCode", err)
		}
	}

	_, err := env.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		UserID: user.ID.String(),
		OTP:    newCode,
	}, "", "")
	if err != nil {
		t.Errorf("newest code rejected: %v", err)
	}
}

func TestResendIgnoresDispatchFailure(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.loginAlice(t)
	env.notifier.fail = true

	if err := env.svc.ResendOTP(context.Background(), &request.ResendOTPRequest{
		UserID: user.ID.String(),
	}); err != nil {
		t.Errorf("resend must not fail on dispatch error, got %v", err)
	}
	if env.otps.codes[user.ID] == nil {
		t.Error("replacement code must still be stored")
	}
}
