package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hirewire-api/internal/domain"
	jwtinfra "github.com/hirewire-api/internal/infrastructure/jwt"
	"github.com/hirewire-api/internal/transport/http/middleware"
)

// --- mock ---

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) List(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.User), args.String(1), args.Error(2)
}

func (m *mockUserSvc) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserSvc) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	return m.Called(ctx, userID, currentPassword, newPassword).Error(0)
}

// --- helpers ---

// withClaims injects JWT claims into the request context, bypassing the auth
// middleware for handler-level tests.
func withClaims(r *http.Request, userID, role string) *http.Request {
	claims := &jwtinfra.Claims{UserID: userID, Role: role, SessionID: "sess1"}
	ctx := context.WithValue(r.Context(), middleware.ClaimsKey, claims)
	return r.WithContext(ctx)
}

// withURLParam attaches a chi route parameter so chi.URLParam resolves in tests.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// --- tests ---

func TestRegister_Created(t *testing.T) {
	svc := new(mockUserSvc)
	svc.On("Register", mock.Anything, mock.MatchedBy(func(req domain.CreateUserRequest) bool {
		return req.Username == "alice"
	})).Return(&domain.User{UserID: "u1", Username: "alice"}, nil)

	body, _ := json.Marshal(domain.CreateUserRequest{
		Username:  "alice",
		Password:  "s3cret-pass",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Doe",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	NewUserHandler(svc).Register(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "u1", env.User.UserID)
}

func TestRegister_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	NewUserHandler(new(mockUserSvc)).Register(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_ValidationFailure(t *testing.T) {
	// Missing required fields never reaches the service.
	svc := new(mockUserSvc)
	body, _ := json.Marshal(map[string]string{"username": "alice"})
	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	NewUserHandler(svc).Register(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_Conflict(t *testing.T) {
	svc := new(mockUserSvc)
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	body, _ := json.Marshal(domain.CreateUserRequest{
		Username:  "alice",
		Password:  "s3cret-pass",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Doe",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	NewUserHandler(svc).Register(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUpdate_OtherUserForbidden(t *testing.T) {
	svc := new(mockUserSvc)
	body, _ := json.Marshal(domain.UpdateUserRequest{})
	req := httptest.NewRequest(http.MethodPut, "/v1/users/u2", bytes.NewReader(body))
	req = withClaims(req, "u1", domain.RoleStudent)
	req = withURLParam(req, "id", "u2")
	rr := httptest.NewRecorder()
	NewUserHandler(svc).Update(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_NonAdminCannotEscalate(t *testing.T) {
	svc := new(mockUserSvc)
	svc.On("Update", mock.Anything, "u1", mock.MatchedBy(func(req domain.UpdateUserRequest) bool {
		return req.Role == nil && req.Enable == nil
	})).Return(&domain.User{UserID: "u1"}, nil)

	admin := domain.RoleAdmin
	enabled := false
	body, _ := json.Marshal(domain.UpdateUserRequest{Role: &admin, Enable: &enabled})
	req := httptest.NewRequest(http.MethodPut, "/v1/users/u1", bytes.NewReader(body))
	req = withClaims(req, "u1", domain.RoleStudent)
	req = withURLParam(req, "id", "u1")
	rr := httptest.NewRecorder()
	NewUserHandler(svc).Update(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestGet_NotFound(t *testing.T) {
	svc := new(mockUserSvc)
	svc.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/ghost", nil)
	req = withURLParam(req, "id", "ghost")
	rr := httptest.NewRecorder()
	NewUserHandler(svc).Get(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
