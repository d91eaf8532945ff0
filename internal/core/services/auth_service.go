package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// OTPSettings controls one-time password generation for first logins.
type OTPSettings struct {
	Length int
	TTL    time.Duration
}

// AuthService implements authentication business logic
type AuthService struct {
	userRepo ports.UserRepository
	otpStore ports.OTPStore
	notifier ports.Notifier
	otp      OTPSettings
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo ports.UserRepository,
	otpStore ports.OTPStore,
	notifier ports.Notifier,
	otp OTPSettings,
) ports.AuthService {
	if otp.Length <= 0 {
		otp.Length = 6
	}
	if otp.TTL <= 0 {
		otp.TTL = 10 * time.Minute
	}
	return &AuthService{
		userRepo: userRepo,
		otpStore: otpStore,
		notifier: notifier,
		otp:      otp,
	}
}

// Login authenticates a user with email and password. Accounts still on
// their temporary password get an OTP instead of a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}
	if password == "" {
		return nil, apperrors.ErrPasswordRequired
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Don't reveal whether email exists
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive || !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.IsFirstLogin {
		if err := s.sendOTP(ctx, user); err != nil {
			return nil, err
		}
		return &ports.LoginResult{User: user, RequiresPasswordChange: true}, nil
	}

	if err := s.userRepo.UpdateLastActive(ctx, user.ID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &ports.LoginResult{User: user}, nil
}

// CompleteFirstLogin verifies the OTP and replaces the temporary password.
func (s *AuthService) CompleteFirstLogin(ctx context.Context, email, otp, newPassword string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidOTP
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsFirstLogin {
		return nil, apperrors.ErrNotFirstLogin
	}

	// Reject weak passwords before burning the OTP.
	if err := validateNewPassword(newPassword); err != nil {
		return nil, err
	}

	stored, err := s.otpStore.Consume(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(otp))) != 1 {
		return nil, apperrors.ErrInvalidOTP
	}

	if err := user.SetPassword(newPassword); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.HashedPassword, false); err != nil {
		return nil, err
	}
	return user, nil
}

// ResendOTP issues a fresh OTP for an account still in its first login.
// Unknown addresses succeed silently.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if !user.IsFirstLogin {
		return apperrors.ErrNotFirstLogin
	}
	return s.sendOTP(ctx, user)
}

// ChangePassword replaces the password of a signed-in user.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(currentPassword) {
		return apperrors.ErrInvalidCredentials
	}
	if user.IsFirstLogin {
		return apperrors.ErrFirstLoginRequired
	}
	if err := validateNewPassword(newPassword); err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, user.HashedPassword, false)
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// EnsureSuperAdmin creates the bootstrap super admin when none exists.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, fullName, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	exists, err := s.userRepo.ExistsByRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if fullName == "" {
		fullName = "Super Admin"
	}
	user, err := domain.NewUser(domain.UserParams{
		FullName: fullName,
		Email:    email,
		Password: password,
		Role:     domain.RoleSuperAdmin,
	})
	if err != nil {
		return err
	}

	_, err = s.userRepo.Create(ctx, user)
	return err
}

func (s *AuthService) sendOTP(ctx context.Context, user *domain.User) error {
	code, err := generateOTP(s.otp.Length)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.otpStore.Save(ctx, user.Email, code, s.otp.TTL); err != nil {
		return err
	}

	s.notifier.Notify(ctx, ports.NotificationParams{
		RecipientUserID: user.ID,
		RecipientEmail:  user.Email,
		Subject:         "Your one-time password",
		Message: fmt.Sprintf("Use %s to finish signing in. The code expires in %d minutes.",
			code, int(s.otp.TTL.Minutes())),
	})
	return nil
}

func validateNewPassword(password string) error {
	msgs := domain.ValidatePassword(password)
	if len(msgs) == 0 {
		return nil
	}
	errs := apperrors.NewValidationErrors()
	for _, msg := range msgs {
		errs.Add("newPassword", msg)
	}
	return errs
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
