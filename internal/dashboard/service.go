// Package dashboard aggregates an organization's headline numbers.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gestaodobem/backend/internal/models"
)

const listLimit = 5

// Stats are the dashboard counters. ActionsThisMonth is the all-time sum of
// members' action counts; the name is kept for the client.
type Stats struct {
	ActiveUsers      int64 `json:"activeUsers"`
	PendingTasks     int64 `json:"pendingTasks"`
	UpcomingEvents   int64 `json:"upcomingEvents"`
	ActionsThisMonth int64 `json:"actionsThisMonth"`
}

// Summary is the GET /dashboard/summary payload.
type Summary struct {
	Stats          Stats           `json:"stats"`
	RecentTasks    []*models.Task  `json:"recentTasks"`
	UpcomingEvents []*models.Event `json:"upcomingEvents"`
}

// Store is the dashboard persistence the service needs.
type Store interface {
	Stats(ctx context.Context, orgID uuid.UUID, today time.Time) (Stats, error)
	RecentTasks(ctx context.Context, orgID uuid.UUID, limit int) ([]*models.Task, error)
	UpcomingEvents(ctx context.Context, orgID uuid.UUID, today time.Time, limit int) ([]*models.Event, error)
}

// Service builds dashboard summaries.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the dashboard service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

func emptySummary() *Summary {
	return &Summary{RecentTasks: []*models.Task{}, UpcomingEvents: []*models.Event{}}
}

// Summary returns the organization's dashboard. A nil organization gets an
// all-zero summary.
func (s *Service) Summary(ctx context.Context, orgID uuid.UUID) (*Summary, error) {
	if orgID == uuid.Nil {
		s.logger.Warn("dashboard requested without organization")
		return emptySummary(), nil
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	out := emptySummary()
	var err error
	if out.Stats, err = s.store.Stats(ctx, orgID, today); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	recent, err := s.store.RecentTasks(ctx, orgID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("recent tasks: %w", err)
	}
	upcoming, err := s.store.UpcomingEvents(ctx, orgID, today, listLimit)
	if err != nil {
		return nil, fmt.Errorf("upcoming events: %w", err)
	}
	if recent != nil {
		out.RecentTasks = recent
	}
	if upcoming != nil {
		out.UpcomingEvents = upcoming
	}
	return out, nil
}
