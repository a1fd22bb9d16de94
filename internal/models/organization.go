package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenancy root: it owns users, tasks and events.
type Organization struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	ActivityField string     `json:"activityField"`
	AddressID     *uuid.UUID `json:"addressId,omitempty"`
	Address       *Address   `json:"address,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Address is an organization's postal address (one-to-one).
type Address struct {
	ID           uuid.UUID `json:"id"`
	ZipCode      string    `json:"zipCode,omitempty"`
	Street       string    `json:"street,omitempty"`
	Number       string    `json:"number,omitempty"`
	Complement   string    `json:"complement,omitempty"`
	Neighborhood string    `json:"neighborhood,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"` // 2-letter code
}
