package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportStatus is the lifecycle of an asynchronous roster export.
type ExportStatus string

const (
	ExportPending   ExportStatus = "pending"
	ExportCompleted ExportStatus = "completed"
	ExportFailed    ExportStatus = "failed"
)

// RosterExport is a CSV snapshot of an event's registrations stored in S3.
type RosterExport struct {
	ID             uuid.UUID    `json:"id"`
	EventID        uuid.UUID    `json:"eventId"`
	OrganizationID uuid.UUID    `json:"organizationId"`
	RequestedBy    *uuid.UUID   `json:"requestedBy,omitempty"`
	Status         ExportStatus `json:"status"`
	S3Key          *string      `json:"-"`
	Error          *string      `json:"error,omitempty"`
	DownloadURL    string       `json:"downloadUrl,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// RosterEntry is one volunteer row of an exported roster.
type RosterEntry struct {
	FullName     string
	Email        string
	Phone        *string
	Status       RegistrationStatus
	RegisteredAt time.Time
}
