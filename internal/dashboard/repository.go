package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gestaodobem/backend/internal/events"
	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/internal/tasks"
	"github.com/gestaodobem/backend/pkg/database"
)

// Repository reads dashboard aggregates.
type Repository struct {
	pool database.Pool
}

// NewRepository creates a dashboard repository.
func NewRepository(pool database.Pool) *Repository {
	return &Repository{pool: pool}
}

// Stats computes the counters in one round trip.
func (r *Repository) Stats(ctx context.Context, orgID uuid.UUID, today time.Time) (Stats, error) {
	const q = `SELECT
			(SELECT COUNT(*) FROM users WHERE organization_id = $1),
			(SELECT COUNT(*) FROM tasks WHERE organization_id = $1 AND status = 'todo'),
			(SELECT COUNT(*) FROM events WHERE organization_id = $1 AND event_date >= $2),
			(SELECT COALESCE(SUM(actions_count), 0) FROM users WHERE organization_id = $1)`
	var s Stats
	err := r.pool.QueryRow(ctx, q, orgID, today).
		Scan(&s.ActiveUsers, &s.PendingTasks, &s.UpcomingEvents, &s.ActionsThisMonth)
	return s, err
}

// RecentTasks returns the newest tasks with assignees.
func (r *Repository) RecentTasks(ctx context.Context, orgID uuid.UUID, limit int) ([]*models.Task, error) {
	rows, err := r.pool.Query(ctx, tasks.SelectTasks+` WHERE t.organization_id = $1
		ORDER BY t.created_at DESC LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.Task{}
	for rows.Next() {
		t, err := tasks.ScanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// UpcomingEvents returns the soonest events dated today or later.
func (r *Repository) UpcomingEvents(ctx context.Context, orgID uuid.UUID, today time.Time, limit int) ([]*models.Event, error) {
	rows, err := r.pool.Query(ctx, events.SelectEvents+` WHERE e.organization_id = $1 AND e.event_date >= $2
		ORDER BY e.event_date ASC, e.event_time ASC LIMIT $3`, orgID, today, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.Event{}
	for rows.Next() {
		e, err := events.ScanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
