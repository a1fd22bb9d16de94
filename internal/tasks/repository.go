package tasks

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/database"
)

// SelectTasks is the joined task query read by ScanTask; callers append
// WHERE and ORDER BY.
const SelectTasks = `SELECT t.id, t.title, t.description, t.due_date, t.priority, t.status, t.organization_id,
		t.assignee_id, t.created_by, t.completed_at, t.created_at, t.updated_at,
		a.full_name, a.email, c.full_name, c.email
	FROM tasks t
	LEFT JOIN users a ON a.id = t.assignee_id
	LEFT JOIN users c ON c.id = t.created_by`

// PriorityOrder sorts urgente first when used with DESC.
const PriorityOrder = `array_position(ARRAY['baixa', 'média', 'alta', 'urgente']::text[], t.priority)`

// Repository handles task persistence.
type Repository struct {
	pool database.Pool
}

// NewRepository creates a tasks repository.
func NewRepository(pool database.Pool) *Repository {
	return &Repository{pool: pool}
}

// ScanTask reads one row of SelectTasks.
func ScanTask(row pgx.Row) (*models.Task, error) {
	var (
		t             models.Task
		aName, aEmail *string
		cName, cEmail *string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Status, &t.OrganizationID,
		&t.AssigneeID, &t.CreatedByID, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
		&aName, &aEmail, &cName, &cEmail)
	if err != nil {
		return nil, err
	}
	t.Assignee = summary(t.AssigneeID, aName, aEmail)
	t.CreatedBy = summary(t.CreatedByID, cName, cEmail)
	return &t, nil
}

func summary(id *uuid.UUID, name, email *string) *models.UserSummary {
	if id == nil || name == nil {
		return nil
	}
	s := &models.UserSummary{ID: *id, FullName: *name}
	if email != nil {
		s.Email = *email
	}
	return s
}

// List returns the organization's tasks by due date, then priority.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID) ([]*models.Task, error) {
	q := SelectTasks + ` WHERE t.organization_id = $1
		ORDER BY t.due_date ASC, ` + PriorityOrder + ` DESC, t.created_at ASC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.Task{}
	for rows.Next() {
		t, err := ScanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Get returns a task of the organization.
func (r *Repository) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Task, error) {
	t, err := ScanTask(r.pool.QueryRow(ctx, SelectTasks+` WHERE t.id = $1 AND t.organization_id = $2`, id, orgID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Create inserts t and fills in its ID and timestamps.
func (r *Repository) Create(ctx context.Context, t *models.Task) error {
	const q = `INSERT INTO tasks (title, description, due_date, priority, status, organization_id, assignee_id, created_by, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q,
		t.Title, t.Description, t.DueDate, string(t.Priority), string(t.Status), t.OrganizationID,
		t.AssigneeID, t.CreatedByID, t.CompletedAt,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update saves t's editable fields.
func (r *Repository) Update(ctx context.Context, t *models.Task) error {
	const q = `UPDATE tasks SET title = $3, description = $4, due_date = $5, priority = $6, status = $7,
			assignee_id = $8, completed_at = $9, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q,
		t.ID, t.OrganizationID, t.Title, t.Description, t.DueDate, string(t.Priority), string(t.Status),
		t.AssigneeID, t.CompletedAt,
	).Scan(&t.UpdatedAt)
	if database.IsNoRows(err) {
		return ErrNotFound
	}
	return err
}

// Delete removes a task of the organization.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsMember reports whether userID belongs to the organization.
func (r *Repository) IsMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND organization_id = $2)`, userID, orgID,
	).Scan(&ok)
	return ok, err
}
