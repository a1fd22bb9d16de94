package worker

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/apperr"
	"github.com/gestaodobem/backend/pkg/queue"
	"github.com/gestaodobem/backend/pkg/storage"
)

type fakeRosters struct {
	orgID, eventID uuid.UUID
	entries        []models.RosterEntry
}

func (f fakeRosters) Roster(_ context.Context, orgID, eventID uuid.UUID) ([]models.RosterEntry, error) {
	if f.orgID != orgID || f.eventID != eventID {
		return nil, apperr.NotFound("event not found")
	}
	return f.entries, nil
}

type fakeExports struct {
	export    *models.RosterExport
	completed string
	failed    string
}

func (f *fakeExports) Get(_ context.Context, orgID, id uuid.UUID) (*models.RosterExport, error) {
	if f.export == nil || f.export.ID != id || f.export.OrganizationID != orgID {
		return nil, apperr.NotFound("roster export not found")
	}
	return f.export, nil
}

func (f *fakeExports) MarkCompleted(_ context.Context, _ uuid.UUID, key string) error {
	f.completed = key
	f.export.Status = models.ExportCompleted
	return nil
}

func (f *fakeExports) MarkFailed(_ context.Context, _ uuid.UUID, reason string) error {
	f.failed = reason
	f.export.Status = models.ExportFailed
	return nil
}

type fakeUploader struct {
	key         string
	contentType string
	body        string
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, key, contentType string, body io.Reader) error {
	if f.err != nil {
		return f.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.key, f.contentType, f.body = key, contentType, string(b)
	return nil
}

type fakeQueue struct {
	retried int
	dead    bool
}

func (q *fakeQueue) Dequeue(context.Context) (*queue.Job, error) { return nil, nil }

func (q *fakeQueue) Retry(_ context.Context, job *queue.Job) (bool, error) {
	q.retried++
	job.Attempt++
	return q.dead, nil
}

type fixture struct {
	proc     *RosterExportProcessor
	exports  *fakeExports
	uploader *fakeUploader
	queue    *fakeQueue
	job      *queue.Job
	payload  queue.RosterExportPayload
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	orgID, eventID, exportID := uuid.New(), uuid.New(), uuid.New()
	phone := "11999990000"
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	rosters := fakeRosters{
		orgID:   orgID,
		eventID: eventID,
		entries: []models.RosterEntry{
			{FullName: "Ana Souza", Email: "ana@example.org", Phone: &phone, Status: models.RegistrationConfirmed, RegisteredAt: at},
			{FullName: "Silva, Bruno", Email: "bruno@example.org", Status: models.RegistrationConfirmed, RegisteredAt: at},
		},
	}
	exports := &fakeExports{export: &models.RosterExport{ID: exportID, EventID: eventID, OrganizationID: orgID, Status: models.ExportPending}}
	uploader := &fakeUploader{}
	q := &fakeQueue{}
	payload := queue.RosterExportPayload{ExportID: exportID, EventID: eventID, OrganizationID: orgID}
	job, err := queue.NewJob(queue.JobTypeRosterExport, payload)
	require.NoError(t, err)

	return &fixture{
		proc:     NewRosterExportProcessor(rosters, exports, uploader, q, nil),
		exports:  exports,
		uploader: uploader,
		queue:    q,
		job:      job,
		payload:  payload,
	}
}

func TestProcess_UploadsRosterAndCompletes(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.proc.Process(context.Background(), f.job))

	key := storage.RosterKey(f.payload.OrganizationID.String(), f.payload.EventID.String(), f.payload.ExportID.String())
	assert.Equal(t, key, f.uploader.key)
	assert.Equal(t, key, f.exports.completed)
	assert.Equal(t, storage.ContentTypeCSV, f.uploader.contentType)

	rows, err := csv.NewReader(strings.NewReader(f.uploader.body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, RosterHeader, rows[0])
	assert.Equal(t, []string{"Ana Souza", "ana@example.org", "11999990000", "confirmed", "2024-03-01T12:30:00Z"}, rows[1])
	assert.Equal(t, "Silva, Bruno", rows[2][0])
	assert.Equal(t, "", rows[2][2])
}

func TestProcess_SkipsCompletedExport(t *testing.T) {
	f := newFixture(t)
	f.exports.export.Status = models.ExportCompleted

	require.NoError(t, f.proc.Process(context.Background(), f.job))
	assert.Empty(t, f.uploader.key)
}

func TestProcess_RejectsUnknownJobType(t *testing.T) {
	f := newFixture(t)
	f.job.Type = "unknown_job"

	assert.Error(t, f.proc.Process(context.Background(), f.job))
}

func TestHandle_RetriesThenMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.uploader.err = errors.New("s3 unavailable")
	ctx := context.Background()

	f.proc.Handle(ctx, f.job)
	assert.Equal(t, 1, f.queue.retried)
	assert.Empty(t, f.exports.failed)

	f.queue.dead = true
	f.proc.Handle(ctx, f.job)
	assert.Equal(t, 2, f.queue.retried)
	assert.Contains(t, f.exports.failed, "s3 unavailable")
	assert.Equal(t, models.ExportFailed, f.exports.export.Status)
}

func TestHandle_SuccessDoesNotRetry(t *testing.T) {
	f := newFixture(t)

	f.proc.Handle(context.Background(), f.job)
	assert.Zero(t, f.queue.retried)
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.proc.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRenderRoster_Empty(t *testing.T) {
	body, err := RenderRoster(nil)
	require.NoError(t, err)
	assert.Equal(t, "name,email,phone,status,registered_at\n", string(body))
}
