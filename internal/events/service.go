package events

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
	ErrNotFound               = apperr.NotFound("event not found")
	ErrRegistrationNotFound   = apperr.NotFound("registration not found")
	ErrEventFull              = apperr.Domain("event is full")
	ErrCapacityBelowConfirmed = apperr.Validation("maxParticipants cannot be lower than confirmed participants")
)

const (
	MsgRegistered        = "registered successfully"
	MsgAlreadyRegistered = "already registered"
	MsgUnregistered      = "unregistered successfully"
)

// RegistrationTx is the set of reads and writes one registration change
// performs, in a transaction that holds the event row lock.
type RegistrationTx interface {
	LockEvent(ctx context.Context, orgID, id uuid.UUID) (*models.Event, error)
	IsRegistered(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	AddRegistration(ctx context.Context, reg *models.EventUser) error
	RemoveRegistration(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	SetConfirmed(ctx context.Context, eventID uuid.UUID, n int) error
}

// Store is the event persistence the service needs.
type Store interface {
	List(ctx context.Context, orgID uuid.UUID) ([]*models.Event, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Event, error)
	Create(ctx context.Context, e *models.Event) error
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	Registration(ctx context.Context, fn func(tx RegistrationTx) error) error
}

// Service runs an organization's events and their volunteer registrations.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates the event service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// CreateInput is a new event.
type CreateInput struct {
	Title           string
	Description     string
	EventDate       time.Time
	EventTime       string
	Location        string
	MaxParticipants int
	Status          models.EventStatus
}

// UpdateInput holds the optional fields of an event update.
type UpdateInput struct {
	Title           *string
	Description     *string
	EventDate       *time.Time
	EventTime       *string
	Location        *string
	MaxParticipants *int
	Status          *models.EventStatus
}

// Result is the outcome of a registration change.
type Result struct {
	Message string `json:"message"`
}

// Create adds an event to the caller's organization.
func (s *Service) Create(ctx context.Context, sess models.Session, in CreateInput) (*models.Event, error) {
	e := &models.Event{
		Title:           sanitize.Text(in.Title),
		Description:     sanitize.RichText(in.Description),
		EventDate:       in.EventDate,
		EventTime:       in.EventTime,
		Location:        sanitize.Text(in.Location),
		MaxParticipants: in.MaxParticipants,
		Status:          in.Status,
		OrganizationID:  sess.OrganizationID,
		Registrations:   []models.EventUser{},
	}
	if e.Title == "" || e.Location == "" {
		return nil, apperr.Validation("title and location are required")
	}
	if e.MaxParticipants == 0 {
		e.MaxParticipants = models.DefaultMaxParticipants
	}
	if e.MaxParticipants < 1 {
		return nil, apperr.Validation("maxParticipants must be at least 1")
	}
	if e.Status == "" {
		e.Status = models.EventPlanned
	}
	if !e.Status.Valid() {
		return nil, apperr.Validation("invalid status %q", e.Status)
	}
	creator := sess.UserID
	e.CreatedByID = &creator

	if err := s.store.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info("event created", zap.String("event_id", e.ID.String()), zap.String("organization_id", e.OrganizationID.String()))
	return e, nil
}

// List returns the organization's events.
func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]*models.Event, error) {
	return s.store.List(ctx, orgID)
}

// Get returns one event of the organization.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Event, error) {
	return s.store.Get(ctx, orgID, id)
}

// Update applies the provided fields. The confirmed count is never edited here.
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, in UpdateInput) (*models.Event, error) {
	e, err := s.store.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if e.Title = sanitize.Text(*in.Title); e.Title == "" {
			return nil, apperr.Validation("title must not be blank")
		}
	}
	if in.Description != nil {
		e.Description = sanitize.RichText(*in.Description)
	}
	if in.EventDate != nil {
		e.EventDate = *in.EventDate
	}
	if in.EventTime != nil {
		e.EventTime = *in.EventTime
	}
	if in.Location != nil {
		if e.Location = sanitize.Text(*in.Location); e.Location == "" {
			return nil, apperr.Validation("location must not be blank")
		}
	}
	if in.MaxParticipants != nil {
		if *in.MaxParticipants < 1 {
			return nil, apperr.Validation("maxParticipants must be at least 1")
		}
		if *in.MaxParticipants < e.ConfirmedParticipants {
			return nil, ErrCapacityBelowConfirmed
		}
		e.MaxParticipants = *in.MaxParticipants
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Validation("invalid status %q", *in.Status)
		}
		e.Status = *in.Status
	}
	if err := s.store.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Remove deletes an event and its registrations.
func (s *Service) Remove(ctx context.Context, orgID, id uuid.UUID) error {
	return s.store.Delete(ctx, orgID, id)
}

// RegisterVolunteer registers userID on the event. Registering twice is not
// an error; a full event is rejected without writes.
func (s *Service) RegisterVolunteer(ctx context.Context, orgID, eventID, userID uuid.UUID) (*Result, error) {
	var res Result
	err := s.store.Registration(ctx, func(tx RegistrationTx) error {
		e, err := tx.LockEvent(ctx, orgID, eventID)
		if err != nil {
			return err
		}
		registered, err := tx.IsRegistered(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("check registration: %w", err)
		}
		if registered {
			res.Message = MsgAlreadyRegistered
			return nil
		}
		if e.IsFull() {
			return ErrEventFull
		}
		reg := &models.EventUser{EventID: eventID, UserID: userID, Status: models.RegistrationConfirmed}
		if err := tx.AddRegistration(ctx, reg); err != nil {
			return err
		}
		if err := tx.SetConfirmed(ctx, eventID, e.ConfirmedParticipants+1); err != nil {
			return fmt.Errorf("update confirmed count: %w", err)
		}
		res.Message = MsgRegistered
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Message == MsgRegistered {
		s.logger.Info("volunteer registered", zap.String("event_id", eventID.String()), zap.String("user_id", userID.String()))
	}
	return &res, nil
}

// UnregisterVolunteer removes userID's registration from the event.
func (s *Service) UnregisterVolunteer(ctx context.Context, orgID, eventID, userID uuid.UUID) (*Result, error) {
	err := s.store.Registration(ctx, func(tx RegistrationTx) error {
		e, err := tx.LockEvent(ctx, orgID, eventID)
		if err != nil {
			return err
		}
		removed, err := tx.RemoveRegistration(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("remove registration: %w", err)
		}
		if !removed {
			return ErrRegistrationNotFound
		}
		n := e.ConfirmedParticipants - 1
		if n < 0 {
			n = 0
		}
		if err := tx.SetConfirmed(ctx, eventID, n); err != nil {
			return fmt.Errorf("update confirmed count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("volunteer unregistered", zap.String("event_id", eventID.String()), zap.String("user_id", userID.String()))
	return &Result{Message: MsgUnregistered}, nil
}
