package exports

import (
	"context"

	"github.com/google/uuid"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/database"
)

// Repository handles roster export persistence.
type Repository struct {
	pool database.Pool
}

// NewRepository creates a roster exports repository.
func NewRepository(pool database.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a pending export.
func (r *Repository) Create(ctx context.Context, x *models.RosterExport) error {
	const q = `INSERT INTO roster_exports (event_id, organization_id, requested_by, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, x.EventID, x.OrganizationID, x.RequestedBy, string(x.Status)).
		Scan(&x.ID, &x.CreatedAt, &x.UpdatedAt)
}

// Get returns an export of the organization.
func (r *Repository) Get(ctx context.Context, orgID, id uuid.UUID) (*models.RosterExport, error) {
	const q = `SELECT id, event_id, organization_id, requested_by, status, s3_key, error, created_at, updated_at
		FROM roster_exports WHERE id = $1 AND organization_id = $2`
	var x models.RosterExport
	err := r.pool.QueryRow(ctx, q, id, orgID).Scan(&x.ID, &x.EventID, &x.OrganizationID, &x.RequestedBy,
		&x.Status, &x.S3Key, &x.Error, &x.CreatedAt, &x.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &x, nil
}

// MarkCompleted records the uploaded object key.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, key string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE roster_exports SET status = $2, s3_key = $3, error = NULL, updated_at = NOW() WHERE id = $1`,
		id, string(models.ExportCompleted), key)
	return err
}

// MarkFailed records why the export could not be produced.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE roster_exports SET status = $2, error = $3, updated_at = NOW() WHERE id = $1`,
		id, string(models.ExportFailed), reason)
	return err
}
