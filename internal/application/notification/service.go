package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hirewire-api/internal/domain"
	"github.com/hirewire-api/internal/pkg/id"
)

// EventName is the event pushed over a live connection for each new notification.
const EventName = "notification"

// FanOutPayload describes the event being fanned out to followers.
type FanOutPayload struct {
	Type    string
	Title   string
	Subject string // e.g. the job title; rendered into the message template
	Data    map[string]string
}

type Service interface {
	Create(ctx context.Context, userID, notifType, title, message string, data map[string]string, sendRealTime bool) (*domain.Notification, error)
	FanOutToFollowers(ctx context.Context, sourceName string, payload FanOutPayload, followerIDs []string)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, notificationID, userID string) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	Update(ctx context.Context, notificationID string, updates map[string]interface{}) error
	Delete(ctx context.Context, notificationID string) error
}

type pusher interface {
	Push(userID, event string, payload interface{}) (bool, error)
}

type service struct {
	repo notificationStore
	hub  pusher
}

func NewService(repo notificationStore, hub pusher) Service {
	return &service{repo: repo, hub: hub}
}

// Create persists a notification and, when requested, pushes it to the
// recipient's live connection. Persistence is the record of truth: its
// failure propagates. Delivery is best-effort; a push failure (or a
// disconnected recipient) never rolls back or retries the write.
func (s *service) Create(ctx context.Context, userID, notifType, title, message string, data map[string]string, sendRealTime bool) (*domain.Notification, error) {
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         userID,
		Type:           notifType,
		Title:          title,
		Message:        message,
		Data:           data,
		Read:           false,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}

	if sendRealTime {
		if delivered, err := s.hub.Push(userID, EventName, n); err != nil {
			slog.Warn("realtime notification push failed", "user_id", userID, "notification_id", n.NotificationID, "err", err)
		} else if !delivered {
			slog.Debug("recipient not connected, notification stored only", "user_id", userID)
		}
	}
	return n, nil
}

// FanOutToFollowers creates one notification per follower, all concurrently.
// The batch settles rather than fails: each follower's outcome is independent,
// failures are logged one by one, and the call never reports an error because
// fan-out is always a secondary effect of some primary action.
func (s *service) FanOutToFollowers(ctx context.Context, sourceName string, payload FanOutPayload, followerIDs []string) {
	message := fmt.Sprintf("%s posted %s", sourceName, payload.Subject)

	var wg sync.WaitGroup
	for _, followerID := range followerIDs {
		wg.Add(1)
		go func(followerID string) {
			defer wg.Done()
			if _, err := s.Create(ctx, followerID, payload.Type, payload.Title, message, payload.Data, true); err != nil {
				slog.Warn("fan-out notification failed for follower", "follower_id", followerID, "source", sourceName, "err", err)
			}
		}(followerID)
	}
	wg.Wait()
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}

// MarkRead flips the read flag on a single notification after an ownership
// check. A notification is only ever mutated by its recipient.
func (s *service) MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, notificationID, map[string]interface{}{
		"read":    true,
		"read_at": now.Format(time.RFC3339),
	}); err != nil {
		return nil, err
	}
	n.Read = true
	n.ReadAt = &now
	return n, nil
}

// MarkAllRead marks every unread notification for userID, updating them
// concurrently. Returns the number successfully updated; individual update
// failures are logged and skipped.
func (s *service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	unread, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		count int
	)
	now := time.Now().UTC().Format(time.RFC3339)
	for _, n := range unread {
		wg.Add(1)
		go func(notificationID string) {
			defer wg.Done()
			err := s.repo.Update(ctx, notificationID, map[string]interface{}{
				"read":    true,
				"read_at": now,
			})
			if err != nil {
				slog.Warn("mark-all-read update failed", "notification_id", notificationID, "user_id", userID, "err", err)
				return
			}
			mu.Lock()
			count++
			mu.Unlock()
		}(n.NotificationID)
	}
	wg.Wait()
	return count, nil
}

// UnreadCount is used on stream handshake to seed the client's badge count.
func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	unread, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

func (s *service) Delete(ctx context.Context, notificationID, userID string) error {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	return s.repo.Delete(ctx, notificationID)
}
