package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/apperr"
	"github.com/gestaodobem/backend/pkg/sanitize"
)

var (
	ErrNotFound        = apperr.NotFound("task not found")
	ErrAssigneeOutside = apperr.Validation("assignee must belong to your organization")
)

// Store is the task persistence the service needs.
type Store interface {
	List(ctx context.Context, orgID uuid.UUID) ([]*models.Task, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, t *models.Task) error
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	IsMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error)
}

// Service runs the task board of an organization.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the task service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// CreateInput is a new task.
type CreateInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    models.TaskPriority
	Status      models.TaskStatus
	AssigneeID  *uuid.UUID
}

// UpdateInput holds the optional fields of a task update.
type UpdateInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	AssigneeID  models.OptionalUUID
}

func (s *Service) checkAssignee(ctx context.Context, orgID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	ok, err := s.store.IsMember(ctx, orgID, *id)
	if err != nil {
		return fmt.Errorf("check assignee: %w", err)
	}
	if !ok {
		return ErrAssigneeOutside
	}
	return nil
}

// Create adds a task to the caller's organization, created by the caller.
func (s *Service) Create(ctx context.Context, sess models.Session, in CreateInput) (*models.Task, error) {
	title := sanitize.Text(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, apperr.Validation("invalid priority %q", in.Priority)
	}
	if in.Status == "" {
		in.Status = models.TaskTodo
	}
	if !in.Status.Valid() {
		return nil, apperr.Validation("invalid status %q", in.Status)
	}
	if err := s.checkAssignee(ctx, sess.OrganizationID, in.AssigneeID); err != nil {
		return nil, err
	}

	creator := sess.UserID
	t := &models.Task{
		Title:          title,
		Description:    sanitize.RichText(in.Description),
		DueDate:        in.DueDate,
		Priority:       in.Priority,
		OrganizationID: sess.OrganizationID,
		AssigneeID:     in.AssigneeID,
		CreatedByID:    &creator,
	}
	t.SetStatus(in.Status, s.now())

	if err := s.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.logger.Info("task created", zap.String("task_id", t.ID.String()), zap.String("organization_id", t.OrganizationID.String()))
	return s.store.Get(ctx, sess.OrganizationID, t.ID)
}

// List returns the organization's tasks.
func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]*models.Task, error) {
	return s.store.List(ctx, orgID)
}

// Get returns one task of the organization.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Task, error) {
	return s.store.Get(ctx, orgID, id)
}

// Update applies the provided fields. Status changes keep CompletedAt in step.
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, in UpdateInput) (*models.Task, error) {
	t, err := s.store.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := sanitize.Text(*in.Title)
		if title == "" {
			return nil, apperr.Validation("title must not be blank")
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = sanitize.RichText(*in.Description)
	}
	if in.DueDate != nil {
		t.DueDate = *in.DueDate
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, apperr.Validation("invalid priority %q", *in.Priority)
		}
		t.Priority = *in.Priority
	}
	if in.AssigneeID.Set {
		if err := s.checkAssignee(ctx, orgID, in.AssigneeID.Value); err != nil {
			return nil, err
		}
		t.AssigneeID = in.AssigneeID.Value
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Validation("invalid status %q", *in.Status)
		}
		t.SetStatus(*in.Status, s.now())
	}

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, orgID, id)
}

// Remove deletes a task of the organization.
func (s *Service) Remove(ctx context.Context, orgID, id uuid.UUID) error {
	return s.store.Delete(ctx, orgID, id)
}
