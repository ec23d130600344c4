package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hirewire-api/internal/application/regnumber"
	"github.com/hirewire-api/internal/domain"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]domain.User), args.String(1), args.Error(2)
}

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	args := m.Called(ctx, userID, updates)
	return args.Error(0)
}

func (m *mockUserStore) SoftDelete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type fakeRegNumberValidator struct {
	result *regnumber.Result
	err    error
	called bool
}

func (f *fakeRegNumberValidator) Validate(_ context.Context, _ string, _ regnumber.Options) (*regnumber.Result, error) {
	f.called = true
	return f.result, f.err
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) SendEmail(to, _, _ string) error {
	f.sent = append(f.sent, to)
	return f.err
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	repo := new(mockUserStore)
	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)

	mail := &fakeMailer{}
	svc := NewService(ServiceDeps{UserRepo: repo, RegNumberValidator: &fakeRegNumberValidator{}, Mailer: mail})
	u, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, u.Role)
	assert.True(t, u.Enable)
	assert.NotEmpty(t, u.UserID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")))
	assert.Equal(t, []string{"alice@example.com"}, mail.sent)
}

func TestRegisterUsernameConflict(t *testing.T) {
	repo := new(mockUserStore)
	repo.On("GetByUsername", mock.Anything, "alice").
		Return(&domain.User{UserID: "u1", Username: "alice"}, nil)

	svc := NewService(ServiceDeps{UserRepo: repo})
	_, err := svc.Register(context.Background(), domain.CreateUserRequest{Username: "alice", Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterInstituteRequiresRegNumber(t *testing.T) {
	repo := new(mockUserStore)
	repo.On("GetByUsername", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	svc := NewService(ServiceDeps{UserRepo: repo, RegNumberValidator: &fakeRegNumberValidator{}})
	_, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Username: "iit",
		Email:    "admin@iit.example",
		Password: "x",
		Role:     domain.RoleInstitute,
	})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestRegisterInstituteRejectedRegNumber(t *testing.T) {
	repo := new(mockUserStore)
	repo.On("GetByUsername", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	validator := &fakeRegNumberValidator{result: &regnumber.Result{Valid: false}}
	svc := NewService(ServiceDeps{UserRepo: repo, RegNumberValidator: validator})
	_, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Username:           "iit",
		Email:              "admin@iit.example",
		Password:           "x",
		Role:               domain.RoleInstitute,
		RegistrationNumber: "UGC-12345",
	})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.True(t, validator.called)
}

func TestRegisterInstituteAcceptedRegNumber(t *testing.T) {
	repo := new(mockUserStore)
	repo.On("GetByUsername", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	repo.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleInstitute && u.RegistrationNumber == "UGC-12345"
	})).Return(nil)

	validator := &fakeRegNumberValidator{result: &regnumber.Result{Valid: true}}
	svc := NewService(ServiceDeps{UserRepo: repo, RegNumberValidator: validator})
	u, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Username:           "iit",
		Email:              "admin@iit.example",
		Password:           "x",
		Role:               domain.RoleInstitute,
		RegistrationNumber: "UGC-12345",
	})
	require.NoError(t, err)
	assert.Equal(t, "UGC-12345", u.RegistrationNumber)
	repo.AssertExpectations(t)
}

func TestRegisterSucceedsWhenWelcomeEmailFails(t *testing.T) {
	repo := new(mockUserStore)
	repo.On("GetByUsername", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(ServiceDeps{UserRepo: repo, Mailer: &fakeMailer{err: errors.New("smtp down")}})
	_, err := svc.Register(context.Background(), domain.CreateUserRequest{Username: "bob", Email: "bob@example.com", Password: "x"})
	assert.NoError(t, err)
}

func TestUpdateNoFields(t *testing.T) {
	svc := NewService(ServiceDeps{UserRepo: new(mockUserStore)})
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUpdatePartialFields(t *testing.T) {
	repo := new(mockUserStore)
	repo.On("Update", mock.Anything, "u1", map[string]interface{}{fieldFirstName: "Ada"}).Return(nil)
	repo.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", FirstName: "Ada"}, nil)

	first := "Ada"
	svc := NewService(ServiceDeps{UserRepo: repo})
	u, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FirstName)
	repo.AssertExpectations(t)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := new(mockUserStore)
	repo.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)

	svc := NewService(ServiceDeps{UserRepo: repo})
	err = svc.ChangePassword(context.Background(), "u1", "wrong", "new-pass")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := new(mockUserStore)
	repo.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)
	repo.On("Update", mock.Anything, "u1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		newHash, ok := updates[fieldPasswordHash].(string)
		return ok && bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-pass")) == nil
	})).Return(nil)

	svc := NewService(ServiceDeps{UserRepo: repo})
	err = svc.ChangePassword(context.Background(), "u1", "right", "new-pass")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
