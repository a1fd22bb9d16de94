package exports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/database/dbtest"
)

const selectExport = `FROM roster_exports WHERE id = $1 AND organization_id = $2`

func TestRepositoryGet_ScopedToOrganization(t *testing.T) {
	mock := dbtest.NewPool(t)
	repo := NewRepository(mock)
	orgID, id := uuid.New(), uuid.New()

	mock.ExpectQuery(dbtest.Match(selectExport)).
		WithArgs(id, orgID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Get(context.Background(), orgID, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryGet_Completed(t *testing.T) {
	mock := dbtest.NewPool(t)
	repo := NewRepository(mock)
	orgID, id, eventID := uuid.New(), uuid.New(), uuid.New()
	key := "rosters/" + id.String() + ".csv"
	now := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(dbtest.Match(selectExport)).
		WithArgs(id, orgID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "event_id", "organization_id", "requested_by", "status", "s3_key", "error", "created_at", "updated_at",
		}).AddRow(id, eventID, orgID, nil, models.ExportCompleted, &key, nil, now, now))

	x, err := repo.Get(context.Background(), orgID, id)
	require.NoError(t, err)
	assert.Equal(t, models.ExportCompleted, x.Status)
	require.NotNil(t, x.S3Key)
	assert.Equal(t, key, *x.S3Key)
	assert.Nil(t, x.Error)
}

func TestRepositoryMarkCompleted_ClearsError(t *testing.T) {
	mock := dbtest.NewPool(t)
	repo := NewRepository(mock)
	id := uuid.New()

	mock.ExpectExec(dbtest.Match(`SET status = $2, s3_key = $3, error = NULL`)).
		WithArgs(id, "completed", "rosters/x.csv").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkCompleted(context.Background(), id, "rosters/x.csv"))
}
