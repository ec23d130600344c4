package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hirewire-api/internal/application/otp"
	"github.com/hirewire-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type PasswordRecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// Service drives the OTP-backed verification flows: email confirmation,
// phone confirmation, and password recovery. Code delivery happens here, at
// the call site of the OTP service, over SMTP or SNS.
type Service interface {
	RequestEmailConfirmation(ctx context.Context, userID string) error
	ConfirmEmail(ctx context.Context, userID, code string) error
	RequestPhoneConfirmation(ctx context.Context, userID string) error
	ConfirmPhone(ctx context.Context, userID, code string) error
	RequestPasswordRecovery(ctx context.Context, req PasswordRecoveryRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	OTPStatus(ctx context.Context, userID string) (*otp.Status, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	otp       otp.Service
	userRepo  userStore
	mailer    mailer
	smsSender smsSender
}

type ServiceDeps struct {
	OTP       otp.Service
	UserRepo  userStore
	Mailer    mailer
	SMSSender smsSender
}

func NewService(deps ServiceDeps) Service {
	return &service{
		otp:       deps.OTP,
		userRepo:  deps.UserRepo,
		mailer:    deps.Mailer,
		smsSender: deps.SMSSender,
	}
}

func (s *service) RequestEmailConfirmation(ctx context.Context, userID string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	code, err := s.otp.Generate(u.Email, otp.PurposeVerification)
	if err != nil {
		return err
	}
	return s.mailer.SendEmail(u.Email, "Confirm your email", "Your verification code: "+code)
}

func (s *service) ConfirmEmail(ctx context.Context, userID, code string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err := s.otp.Verify(u.Email, code, otp.PurposeVerification); err != nil {
		return err
	}
	return s.userRepo.Update(ctx, userID, map[string]interface{}{"email_confirmed": true})
}

func (s *service) RequestPhoneConfirmation(ctx context.Context, userID string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if u.Phone == nil {
		return fmt.Errorf("no phone number on account: %w", domain.ErrBadRequest)
	}
	// Keyed by email even for the phone flow: one live OTP per account.
	code, err := s.otp.Generate(u.Email, otp.PurposePhone)
	if err != nil {
		return err
	}
	return s.smsSender.SendSMS(ctx, *u.Phone, "Your verification code: "+code)
}

func (s *service) ConfirmPhone(ctx context.Context, userID, code string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err := s.otp.Verify(u.Email, code, otp.PurposePhone); err != nil {
		return err
	}
	return s.userRepo.Update(ctx, userID, map[string]interface{}{"phone_confirmed": true})
}

// RequestPasswordRecovery issues a reset code. An unknown email is still
// reported as ErrNotFound to the handler layer, which masks it with a
// generic response so the endpoint can't be used to probe accounts.
func (s *service) RequestPasswordRecovery(ctx context.Context, req PasswordRecoveryRequest) error {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	code, err := s.otp.Generate(u.Email, otp.PurposeReset)
	if err != nil {
		return err
	}
	return s.mailer.SendEmail(u.Email, "Password Recovery", "Your recovery code: "+code)
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err := s.otp.Verify(u.Email, req.OTP, otp.PurposeReset); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, u.UserID, map[string]interface{}{"password_hash": string(hash)}); err != nil {
		return err
	}
	slog.Info("password reset via OTP", "user_id", u.UserID)
	return nil
}

// OTPStatus exposes the caller's own OTP state for self-service UIs
// (attempts remaining, expiry countdown).
func (s *service) OTPStatus(ctx context.Context, userID string) (*otp.Status, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return s.otp.Status(u.Email)
}
