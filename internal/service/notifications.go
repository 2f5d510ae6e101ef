package service

import (
	"context"
	"strings"
	"time"

	"cajapos/backend/internal/domain"
	"cajapos/backend/internal/store"
)

const (
	unreadCounterKey = "notifications:unread"
	unreadCounterTTL = 30 * time.Second
	readRetention    = 30 * 24 * time.Hour
)

func (s *Service) ListNotifications(ctx context.Context, filter string, limit int, offset int) ([]domain.Notification, error) {
	filter = strings.ToLower(strings.TrimSpace(filter))
	switch filter {
	case "", "all":
		filter = "all"
	case "unread", "read":
	default:
		return nil, store.ErrInvalidInput
	}
	return s.repo.ListNotifications(ctx, filter, limit, offset)
}

func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidInput
	}
	if err := s.repo.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	return s.counters.Invalidate(ctx, unreadCounterKey)
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	updated, err := s.repo.MarkAllNotificationsRead(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.counters.Invalidate(ctx, unreadCounterKey); err != nil {
		return updated, err
	}
	return updated, nil
}

// UnreadCount serves the badge counter from cache when possible. Ledger
// figures are never cached; this counter is the only cached aggregate.
func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	if cached, hit, err := s.counters.Get(ctx, unreadCounterKey); err == nil && hit {
		return cached, nil
	}

	count, err := s.repo.CountUnreadNotifications(ctx)
	if err != nil {
		return 0, err
	}
	_ = s.counters.Set(ctx, unreadCounterKey, count, unreadCounterTTL)
	return count, nil
}

// PurgeOldNotifications removes read notifications older than the retention
// window and reports how many were deleted.
func (s *Service) PurgeOldNotifications(ctx context.Context) (int, error) {
	return s.repo.DeleteReadNotificationsBefore(ctx, s.now().Add(-readRetention))
}
