package exports

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/apperr"
	"github.com/gestaodobem/backend/pkg/queue"
)

type fakeStore struct {
	exports map[uuid.UUID]*models.RosterExport
	failed  map[uuid.UUID]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{exports: map[uuid.UUID]*models.RosterExport{}, failed: map[uuid.UUID]string{}}
}

func (s *fakeStore) Create(_ context.Context, x *models.RosterExport) error {
	x.ID = uuid.New()
	cp := *x
	s.exports[x.ID] = &cp
	return nil
}

func (s *fakeStore) Get(_ context.Context, orgID, id uuid.UUID) (*models.RosterExport, error) {
	x, ok := s.exports[id]
	if !ok || x.OrganizationID != orgID {
		return nil, ErrNotFound
	}
	cp := *x
	return &cp, nil
}

func (s *fakeStore) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	s.failed[id] = reason
	s.exports[id].Status = models.ExportFailed
	return nil
}

type fakeEvents struct{ byOrg map[uuid.UUID]uuid.UUID }

func (e fakeEvents) Get(_ context.Context, orgID, id uuid.UUID) (*models.Event, error) {
	if e.byOrg[id] != orgID {
		return nil, apperr.NotFound("event not found")
	}
	return &models.Event{ID: id, OrganizationID: orgID}, nil
}

type fakeQueue struct {
	jobs []queue.RosterExportPayload
	err  error
}

func (q *fakeQueue) EnqueueRosterExport(_ context.Context, p queue.RosterExportPayload) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, p)
	return nil
}

type fakePresigner struct{}

func (fakePresigner) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://signed.example/" + key, nil
}

func setup() (*Service, *fakeStore, *fakeQueue, uuid.UUID, uuid.UUID) {
	orgID, eventID := uuid.New(), uuid.New()
	store := newFakeStore()
	q := &fakeQueue{}
	svc := NewService(store, fakeEvents{byOrg: map[uuid.UUID]uuid.UUID{eventID: orgID}}, q, fakePresigner{}, nil)
	return svc, store, q, orgID, eventID
}

func TestRequest_QueuesJob(t *testing.T) {
	svc, _, q, orgID, eventID := setup()
	sess := models.Session{UserID: uuid.New(), Role: models.RoleCoordinator, OrganizationID: orgID}

	x, err := svc.Request(context.Background(), sess, eventID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportPending, x.Status)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, queue.RosterExportPayload{ExportID: x.ID, EventID: eventID, OrganizationID: orgID}, q.jobs[0])
}

func TestRequest_Rejections(t *testing.T) {
	svc, _, q, orgID, eventID := setup()
	ctx := context.Background()

	_, err := svc.Request(ctx, models.Session{Role: models.RoleVolunteer, OrganizationID: orgID}, eventID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.Request(ctx, models.Session{Role: models.RoleAdmin, OrganizationID: uuid.New()}, eventID)
	assert.True(t, apperr.IsNotFound(err))
	assert.Empty(t, q.jobs)
}

func TestRequest_EnqueueFailureMarksFailed(t *testing.T) {
	svc, store, q, orgID, eventID := setup()
	q.err = errors.New("redis down")

	_, err := svc.Request(context.Background(), models.Session{Role: models.RoleAdmin, OrganizationID: orgID}, eventID)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	require.Len(t, store.failed, 1)
}

func TestGet_SignsCompletedExports(t *testing.T) {
	svc, store, _, orgID, eventID := setup()
	key := "rosters/a/b/c.csv"
	done := &models.RosterExport{ID: uuid.New(), EventID: eventID, OrganizationID: orgID, Status: models.ExportCompleted, S3Key: &key}
	pending := &models.RosterExport{ID: uuid.New(), EventID: eventID, OrganizationID: orgID, Status: models.ExportPending}
	store.exports[done.ID] = done
	store.exports[pending.ID] = pending
	ctx := context.Background()

	got, err := svc.Get(ctx, orgID, done.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/"+key, got.DownloadURL)

	got, err = svc.Get(ctx, orgID, pending.ID)
	require.NoError(t, err)
	assert.Empty(t, got.DownloadURL)

	_, err = svc.Get(ctx, uuid.New(), done.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
