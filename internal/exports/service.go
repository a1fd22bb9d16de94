// Package exports queues roster CSV exports and serves their download links.
package exports

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/apperr"
	"github.com/gestaodobem/backend/pkg/queue"
)

var ErrNotFound = apperr.NotFound("roster export not found")

// Store is the export persistence the service needs.
type Store interface {
	Create(ctx context.Context, x *models.RosterExport) error
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.RosterExport, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// Events looks up an organization's event.
type Events interface {
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Event, error)
}

// Enqueuer hands export jobs to the worker.
type Enqueuer interface {
	EnqueueRosterExport(ctx context.Context, payload queue.RosterExportPayload) error
}

// Presigner signs download links for stored objects.
type Presigner interface {
	PresignDownload(ctx context.Context, key string) (string, error)
}

// Service requests roster exports and resolves their downloads.
type Service struct {
	store     Store
	events    Events
	queue     Enqueuer
	presigner Presigner
	logger    *zap.Logger
}

// NewService creates the roster export service.
func NewService(store Store, events Events, q Enqueuer, presigner Presigner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, events: events, queue: q, presigner: presigner, logger: logger}
}

// Request creates a pending export of the event's roster and queues it.
func (s *Service) Request(ctx context.Context, sess models.Session, eventID uuid.UUID) (*models.RosterExport, error) {
	if !sess.Role.Can(models.CapManageEvents) {
		return nil, apperr.Forbidden("insufficient permissions")
	}
	if _, err := s.events.Get(ctx, sess.OrganizationID, eventID); err != nil {
		return nil, err
	}
	requester := sess.UserID
	x := &models.RosterExport{
		EventID:        eventID,
		OrganizationID: sess.OrganizationID,
		RequestedBy:    &requester,
		Status:         models.ExportPending,
	}
	if err := s.store.Create(ctx, x); err != nil {
		return nil, fmt.Errorf("create export: %w", err)
	}
	err := s.queue.EnqueueRosterExport(ctx, queue.RosterExportPayload{
		ExportID:       x.ID,
		EventID:        x.EventID,
		OrganizationID: x.OrganizationID,
	})
	if err != nil {
		if markErr := s.store.MarkFailed(ctx, x.ID, "could not queue export"); markErr != nil {
			s.logger.Error("mark export failed", zap.String("export_id", x.ID.String()), zap.Error(markErr))
		}
		return nil, apperr.Internal("failed to queue export", err)
	}
	s.logger.Info("roster export requested", zap.String("export_id", x.ID.String()), zap.String("event_id", eventID.String()))
	return x, nil
}

// Get returns an export; completed exports carry a pre-signed download URL.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*models.RosterExport, error) {
	x, err := s.store.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if x.Status == models.ExportCompleted && x.S3Key != nil {
		url, err := s.presigner.PresignDownload(ctx, *x.S3Key)
		if err != nil {
			return nil, apperr.Internal("failed to sign download", err)
		}
		x.DownloadURL = url
	}
	return x, nil
}
