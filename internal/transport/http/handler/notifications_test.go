package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hirewire-api/internal/application/notification"
	"github.com/hirewire-api/internal/domain"
	"github.com/hirewire-api/internal/realtime"
)

type mockNotifSvc struct{ mock.Mock }

func (m *mockNotifSvc) Create(ctx context.Context, userID, notifType, title, message string, data map[string]string, sendRealTime bool) (*domain.Notification, error) {
	args := m.Called(ctx, userID, notifType, title, message, data, sendRealTime)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) FanOutToFollowers(ctx context.Context, sourceName string, payload notification.FanOutPayload, followerIDs []string) {
	m.Called(ctx, sourceName, payload, followerIDs)
}

func (m *mockNotifSvc) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *mockNotifSvc) MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID, userID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) MarkAllRead(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockNotifSvc) UnreadCount(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockNotifSvc) Delete(ctx context.Context, notificationID, userID string) error {
	return m.Called(ctx, notificationID, userID).Error(0)
}

func TestListUnread_RequiresClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	rr := httptest.NewRecorder()
	NewNotificationHandler(new(mockNotifSvc), realtime.NewHub()).ListUnread(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListUnread_ReturnsInbox(t *testing.T) {
	svc := new(mockNotifSvc)
	svc.On("ListUnread", mock.Anything, "u1").Return([]domain.Notification{
		{NotificationID: "n1", UserID: "u1", Title: "New Job"},
	}, nil)

	req := withClaims(httptest.NewRequest(http.MethodGet, "/v1/notifications", nil), "u1", domain.RoleStudent)
	rr := httptest.NewRecorder()
	NewNotificationHandler(svc, realtime.NewHub()).ListUnread(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var env PageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	items, ok := env.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestMarkRead_ForeignNotification(t *testing.T) {
	svc := new(mockNotifSvc)
	svc.On("MarkRead", mock.Anything, "n1", "u1").Return(nil, domain.ErrForbidden)

	req := httptest.NewRequest(http.MethodPut, "/v1/notifications/n1", nil)
	req = withClaims(req, "u1", domain.RoleStudent)
	req = withURLParam(req, "id", "n1")
	rr := httptest.NewRecorder()
	NewNotificationHandler(svc, realtime.NewHub()).MarkRead(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestMarkAllRead_ReportsCount(t *testing.T) {
	svc := new(mockNotifSvc)
	svc.On("MarkAllRead", mock.Anything, "u1").Return(3, nil)

	req := withClaims(httptest.NewRequest(http.MethodPut, "/v1/notifications/read-all", nil), "u1", domain.RoleStudent)
	rr := httptest.NewRecorder()
	NewNotificationHandler(svc, realtime.NewHub()).MarkAllRead(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 3, body["marked"])
}

// OTP failures must collapse into one generic message, whatever the cause.
func TestHTTPError_CollapsesOTPFailures(t *testing.T) {
	for _, err := range []error{domain.ErrInvalidCode, domain.ErrExpired, domain.ErrExhausted} {
		rr := httptest.NewRecorder()
		httpError(rr, err)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var env MessageEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
		assert.Equal(t, "invalid or expired code", env.Error)
	}

	rr := httptest.NewRecorder()
	httpError(rr, domain.ErrRateLimited)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}
