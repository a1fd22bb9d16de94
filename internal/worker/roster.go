// Package worker renders roster exports queued by the API.
package worker

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/queue"
	"github.com/gestaodobem/backend/pkg/storage"
)

// RosterHeader is the first row of every roster CSV.
var RosterHeader = []string{"name", "email", "phone", "status", "registered_at"}

// Rosters loads the volunteer rows of an organization's event.
type Rosters interface {
	Roster(ctx context.Context, orgID, eventID uuid.UUID) ([]models.RosterEntry, error)
}

// ExportStore tracks export state.
type ExportStore interface {
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.RosterExport, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, key string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// Uploader stores rendered files.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
}

// JobQueue is the queue the processor consumes.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) (dead bool, err error)
}

// RosterExportProcessor turns roster export jobs into CSV files in S3.
type RosterExportProcessor struct {
	rosters  Rosters
	exports  ExportStore
	uploader Uploader
	queue    JobQueue
	logger   *zap.Logger
	backoff  time.Duration
}

// NewRosterExportProcessor creates a roster export processor.
func NewRosterExportProcessor(rosters Rosters, exports ExportStore, uploader Uploader, q JobQueue, logger *zap.Logger) *RosterExportProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterExportProcessor{
		rosters:  rosters,
		exports:  exports,
		uploader: uploader,
		queue:    q,
		logger:   logger,
		backoff:  queue.RetryBackoff,
	}
}

// Process executes one roster export job.
func (p *RosterExportProcessor) Process(ctx context.Context, job *queue.Job) error {
	payload, err := decodePayload(job)
	if err != nil {
		return err
	}

	x, err := p.exports.Get(ctx, payload.OrganizationID, payload.ExportID)
	if err != nil {
		return fmt.Errorf("load export %s: %w", payload.ExportID, err)
	}
	if x.Status == models.ExportCompleted {
		p.logger.Info("roster export already completed", zap.String("export_id", x.ID.String()))
		return nil
	}

	entries, err := p.rosters.Roster(ctx, payload.OrganizationID, payload.EventID)
	if err != nil {
		return fmt.Errorf("load roster of event %s: %w", payload.EventID, err)
	}
	body, err := RenderRoster(entries)
	if err != nil {
		return fmt.Errorf("render roster: %w", err)
	}

	key := storage.RosterKey(payload.OrganizationID.String(), payload.EventID.String(), payload.ExportID.String())
	if err := p.uploader.Upload(ctx, key, storage.ContentTypeCSV, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}
	if err := p.exports.MarkCompleted(ctx, payload.ExportID, key); err != nil {
		return fmt.Errorf("update export: %w", err)
	}

	p.logger.Info("roster export completed",
		zap.String("export_id", payload.ExportID.String()),
		zap.String("s3_key", key),
		zap.Int("rows", len(entries)),
	)
	return nil
}

// Handle processes job and requeues it on failure. A job that exhausted its
// retries marks its export failed.
func (p *RosterExportProcessor) Handle(ctx context.Context, job *queue.Job) {
	err := p.Process(ctx, job)
	if err == nil {
		return
	}
	p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))

	dead, reErr := p.queue.Retry(ctx, job)
	if reErr != nil {
		p.logger.Error("retry enqueue failed", zap.String("job_id", job.ID), zap.Error(reErr))
		return
	}
	if !dead {
		return
	}
	payload, decErr := decodePayload(job)
	if decErr != nil {
		return
	}
	if markErr := p.exports.MarkFailed(ctx, payload.ExportID, err.Error()); markErr != nil {
		p.logger.Error("mark export failed", zap.String("export_id", payload.ExportID.String()), zap.Error(markErr))
	}
}

// Run starts the worker loop until ctx is done.
func (p *RosterExportProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("roster export worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		p.Handle(ctx, job)
	}
}

func (p *RosterExportProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func decodePayload(job *queue.Job) (queue.RosterExportPayload, error) {
	var payload queue.RosterExportPayload
	if job.Type != queue.JobTypeRosterExport {
		return payload, fmt.Errorf("unknown job type: %s", job.Type)
	}
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return payload, fmt.Errorf("unmarshal payload: %w", err)
	}
	return payload, nil
}

// RenderRoster writes the roster as CSV, one row per volunteer.
func RenderRoster(entries []models.RosterEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(RosterHeader); err != nil {
		return nil, err
	}
	for _, x := range entries {
		var phone string
		if x.Phone != nil {
			phone = *x.Phone
		}
		row := []string{x.FullName, x.Email, phone, string(x.Status), x.RegisteredAt.UTC().Format(time.RFC3339)}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
