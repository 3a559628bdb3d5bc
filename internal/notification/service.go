package notification

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ctrlfund/ctrlfund/internal/core/events"
)

const defaultFeedSize = 50

// Service keeps a bounded in-memory feed of the most recent
// notifications and fans each one out over the event bus.
type Service struct {
	logger   *slog.Logger
	eventBus *events.EventBus
	maxSize  int

	mu   sync.RWMutex
	feed []Notification
}

func NewService(logger *slog.Logger, eventBus *events.EventBus, maxSize int) *Service {
	if maxSize <= 0 {
		maxSize = defaultFeedSize
	}
	return &Service{
		logger:   logger,
		eventBus: eventBus,
		maxSize:  maxSize,
	}
}

func (s *Service) Notify(message string, severity Severity) {
	n := newNotification(message, severity)

	s.mu.Lock()
	s.feed = append(s.feed, n)
	if len(s.feed) > s.maxSize {
		s.feed = s.feed[len(s.feed)-s.maxSize:]
	}
	s.mu.Unlock()

	s.logger.Info("notification emitted",
		"severity", severity,
		"message", message)

	if s.eventBus != nil {
		event := events.NewNotificationEvent(message, string(severity))
		if err := s.eventBus.Publish(context.Background(), event); err != nil {
			s.logger.Error("failed to publish notification event", "error", err)
		}
	}
}

// Recent returns the feed newest-first.
func (s *Service) Recent() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, len(s.feed))
	for i, n := range s.feed {
		out[len(s.feed)-1-i] = n
	}
	return out
}

// Clear empties the feed.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed = nil
}
