package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hirewire-api/internal/application/regnumber"
	"github.com/hirewire-api/internal/domain"
	"github.com/hirewire-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldUsername     = "username"
	fieldEmail        = "email"
	fieldPhone        = "phone"
	fieldFirstName    = "first_name"
	fieldLastName     = "last_name"
	fieldRole         = "role"
	fieldEnable       = "enable"
	fieldPasswordHash = "password_hash"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	List(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
}

type regNumberValidator interface {
	Validate(ctx context.Context, value string, opts regnumber.Options) (*regnumber.Result, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	repo      userStore
	regNumber regNumberValidator
	mailer    mailer
}

type ServiceDeps struct {
	UserRepo           userStore
	RegNumberValidator regNumberValidator
	Mailer             mailer
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.UserRepo,
		regNumber: deps.RegNumberValidator,
		mailer:    deps.Mailer,
	}
}

// Register creates a new account. Institute accounts must present a valid,
// unique registration number. The welcome email is best-effort: a send
// failure is logged and never fails the registration.
func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}

	role := req.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if role == domain.RoleInstitute {
		if req.RegistrationNumber == "" {
			return nil, fmt.Errorf("institute accounts require a registration number: %w", domain.ErrBadRequest)
		}
		res, err := s.regNumber.Validate(ctx, req.RegistrationNumber, regnumber.Options{})
		if err != nil {
			return nil, err
		}
		if !res.Valid {
			return nil, fmt.Errorf("registration number rejected: %w", domain.ErrBadRequest)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:             id.New(),
		Username:           req.Username,
		Email:              req.Email,
		Phone:              req.Phone,
		PasswordHash:       string(hash),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Role:               role,
		RegistrationNumber: req.RegistrationNumber,
		Enable:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendEmail(u.Email, "Welcome", "Your account is ready. Verify your email to get started."); err != nil {
			slog.Warn("welcome email failed", "user_id", u.UserID, "err", err)
		}
	}
	return u, nil
}

func (s *service) List(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	return s.repo.ScanPage(ctx, limit, cursor)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Username != nil {
		updates[fieldUsername] = *req.Username
	}
	if req.Email != nil {
		updates[fieldEmail] = *req.Email
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.FirstName != nil {
		updates[fieldFirstName] = *req.FirstName
	}
	if req.LastName != nil {
		updates[fieldLastName] = *req.LastName
	}
	if req.Role != nil {
		updates[fieldRole] = *req.Role
	}
	if req.Enable != nil {
		updates[fieldEnable] = *req.Enable
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID string) error {
	return s.repo.SoftDelete(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, userID, map[string]interface{}{fieldPasswordHash: string(hash)})
}
