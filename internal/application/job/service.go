package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hirewire-api/internal/application/notification"
	"github.com/hirewire-api/internal/domain"
	"github.com/hirewire-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, posterID string, req domain.CreateJobRequest) (*domain.Job, error)
	Get(ctx context.Context, jobID string) (*domain.Job, error)
	List(ctx context.Context, limit int32, cursor string) ([]domain.Job, string, error)
	ListByPoster(ctx context.Context, posterID string) ([]domain.Job, error)
	Delete(ctx context.Context, jobID, requesterID string) error
}

type jobStore interface {
	Put(ctx context.Context, j *domain.Job) error
	Get(ctx context.Context, jobID string) (*domain.Job, error)
	ListByPoster(ctx context.Context, posterID string) ([]domain.Job, error)
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Job, string, error)
	SoftDelete(ctx context.Context, jobID string) error
}

type followStore interface {
	ListFollowerIDs(ctx context.Context, followedID string) ([]string, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type notifier interface {
	FanOutToFollowers(ctx context.Context, sourceName string, payload notification.FanOutPayload, followerIDs []string)
}

type service struct {
	repo     jobStore
	follows  followStore
	users    userStore
	notifier notifier
}

type ServiceDeps struct {
	JobRepo    jobStore
	FollowRepo followStore
	UserRepo   userStore
	Notifier   notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:     deps.JobRepo,
		follows:  deps.FollowRepo,
		users:    deps.UserRepo,
		notifier: deps.Notifier,
	}
}

// Create persists the job posting, then notifies the poster's followers as a
// detached side effect. The posting succeeds no matter what happens in the
// notification path.
func (s *service) Create(ctx context.Context, posterID string, req domain.CreateJobRequest) (*domain.Job, error) {
	poster, err := s.users.Get(ctx, posterID)
	if err != nil {
		return nil, fmt.Errorf("poster not found: %w", domain.ErrNotFound)
	}
	if poster.Role != domain.RoleRecruiter && poster.Role != domain.RoleInstitute && poster.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("only recruiters and institutes can post jobs: %w", domain.ErrForbidden)
	}

	now := time.Now().UTC()
	j := &domain.Job{
		JobID:        id.New(),
		PostedByID:   poster.UserID,
		PostedByName: poster.Username,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Salary:       req.Salary,
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, j); err != nil {
		return nil, err
	}

	go s.notifyFollowers(j)
	return j, nil
}

// notifyFollowers runs detached from the request; it carries its own context
// so the fan-out survives the poster's request completing.
func (s *service) notifyFollowers(j *domain.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	followerIDs, err := s.follows.ListFollowerIDs(ctx, j.PostedByID)
	if err != nil {
		slog.Warn("could not resolve followers for job fan-out", "job_id", j.JobID, "poster_id", j.PostedByID, "err", err)
		return
	}
	if len(followerIDs) == 0 {
		return
	}
	s.notifier.FanOutToFollowers(ctx, j.PostedByName, notification.FanOutPayload{
		Type:    domain.NotificationTypeJobPosted,
		Title:   "New Job",
		Subject: j.Title,
		Data:    map[string]string{"job_id": j.JobID},
	}, followerIDs)
}

func (s *service) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	return s.repo.Get(ctx, jobID)
}

func (s *service) List(ctx context.Context, limit int32, cursor string) ([]domain.Job, string, error) {
	return s.repo.ScanPage(ctx, limit, cursor)
}

func (s *service) ListByPoster(ctx context.Context, posterID string) ([]domain.Job, error) {
	return s.repo.ListByPoster(ctx, posterID)
}

func (s *service) Delete(ctx context.Context, jobID, requesterID string) error {
	j, err := s.repo.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if j.PostedByID != requesterID {
		return fmt.Errorf("job belongs to another poster: %w", domain.ErrForbidden)
	}
	return s.repo.SoftDelete(ctx, jobID)
}
