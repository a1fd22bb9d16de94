package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxParticipants is the capacity of an event created without one.
const DefaultMaxParticipants = 10

// EventStatus tracks an event from planning to completion.
type EventStatus string

const (
	EventPlanned   EventStatus = "planned"
	EventConfirmed EventStatus = "confirmed"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventPlanned, EventConfirmed, EventCancelled, EventCompleted:
		return true
	}
	return false
}

// Event is a scheduled activity with a participant capacity.
// ConfirmedParticipants always equals len of its registrations.
type Event struct {
	ID                    uuid.UUID   `json:"id"`
	Title                 string      `json:"title"`
	Description           string      `json:"description"`
	EventDate             time.Time   `json:"eventDate"`
	EventTime             string      `json:"eventTime"`
	Location              string      `json:"location"`
	MaxParticipants       int         `json:"maxParticipants"`
	ConfirmedParticipants int         `json:"confirmedParticipants"`
	Status                EventStatus `json:"status"`
	OrganizationID        uuid.UUID   `json:"organizationId"`
	CreatedByID           *uuid.UUID  `json:"createdById"`
	Registrations         []EventUser `json:"userRegistrations"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}

// IsFull reports whether no more volunteers fit.
func (e *Event) IsFull() bool {
	return e.ConfirmedParticipants >= e.MaxParticipants
}

// RegistrationStatus is the state of a volunteer's registration.
type RegistrationStatus string

const (
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// EventUser is a volunteer's registration to an event.
type EventUser struct {
	ID           uuid.UUID          `json:"id"`
	EventID      uuid.UUID          `json:"eventId"`
	UserID       uuid.UUID          `json:"userId"`
	User         *UserSummary       `json:"user,omitempty"`
	Status       RegistrationStatus `json:"status"`
	RegisteredAt time.Time          `json:"registeredAt"`
}
