package follow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hirewire-api/internal/domain"
)

type mockFollowStore struct {
	mock.Mock
}

func (m *mockFollowStore) Put(ctx context.Context, f *domain.Follow) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *mockFollowStore) Delete(ctx context.Context, followedID, followerID string) error {
	args := m.Called(ctx, followedID, followerID)
	return args.Error(0)
}

func (m *mockFollowStore) ListFollowerIDs(ctx context.Context, followedID string) ([]string, error) {
	args := m.Called(ctx, followedID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestFollowRecruiter(t *testing.T) {
	repo := new(mockFollowStore)
	users := new(mockUserStore)
	users.On("Get", mock.Anything, "recruiter-1").
		Return(&domain.User{UserID: "recruiter-1", Role: domain.RoleRecruiter}, nil)
	repo.On("Put", mock.Anything, mock.MatchedBy(func(f *domain.Follow) bool {
		return f.FollowedID == "recruiter-1" && f.FollowerID == "student-1"
	})).Return(nil)

	svc := NewService(ServiceDeps{FollowRepo: repo, UserRepo: users})
	err := svc.Follow(context.Background(), "student-1", "recruiter-1")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestFollowSelfRejected(t *testing.T) {
	svc := NewService(ServiceDeps{FollowRepo: new(mockFollowStore), UserRepo: new(mockUserStore)})
	err := svc.Follow(context.Background(), "u1", "u1")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestFollowStudentRejected(t *testing.T) {
	users := new(mockUserStore)
	users.On("Get", mock.Anything, "student-2").
		Return(&domain.User{UserID: "student-2", Role: domain.RoleStudent}, nil)

	svc := NewService(ServiceDeps{FollowRepo: new(mockFollowStore), UserRepo: users})
	err := svc.Follow(context.Background(), "student-1", "student-2")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestFollowUnknownUser(t *testing.T) {
	users := new(mockUserStore)
	users.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := NewService(ServiceDeps{FollowRepo: new(mockFollowStore), UserRepo: users})
	err := svc.Follow(context.Background(), "student-1", "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUnfollow(t *testing.T) {
	repo := new(mockFollowStore)
	repo.On("Delete", mock.Anything, "recruiter-1", "student-1").Return(nil)

	svc := NewService(ServiceDeps{FollowRepo: repo, UserRepo: new(mockUserStore)})
	err := svc.Unfollow(context.Background(), "student-1", "recruiter-1")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
