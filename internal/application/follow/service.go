package follow

import (
	"context"
	"fmt"
	"time"

	"github.com/hirewire-api/internal/domain"
)

type Service interface {
	Follow(ctx context.Context, followerID, followedID string) error
	Unfollow(ctx context.Context, followerID, followedID string) error
	ListFollowerIDs(ctx context.Context, followedID string) ([]string, error)
}

type followStore interface {
	Put(ctx context.Context, f *domain.Follow) error
	Delete(ctx context.Context, followedID, followerID string) error
	ListFollowerIDs(ctx context.Context, followedID string) ([]string, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	repo  followStore
	users userStore
}

type ServiceDeps struct {
	FollowRepo followStore
	UserRepo   userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.FollowRepo, users: deps.UserRepo}
}

func (s *service) Follow(ctx context.Context, followerID, followedID string) error {
	if followerID == followedID {
		return fmt.Errorf("cannot follow yourself: %w", domain.ErrBadRequest)
	}
	followed, err := s.users.Get(ctx, followedID)
	if err != nil {
		return fmt.Errorf("followed user not found: %w", domain.ErrNotFound)
	}
	if followed.Role != domain.RoleRecruiter && followed.Role != domain.RoleInstitute {
		return fmt.Errorf("only recruiters and institutes can be followed: %w", domain.ErrBadRequest)
	}
	return s.repo.Put(ctx, &domain.Follow{
		FollowedID: followedID,
		FollowerID: followerID,
		CreatedAt:  time.Now().UTC(),
	})
}

func (s *service) Unfollow(ctx context.Context, followerID, followedID string) error {
	return s.repo.Delete(ctx, followedID, followerID)
}

func (s *service) ListFollowerIDs(ctx context.Context, followedID string) ([]string, error) {
	return s.repo.ListFollowerIDs(ctx, followedID)
}
