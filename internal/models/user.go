package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UserStatus is whether a user is currently active in its organization.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// Toggled returns the opposite status.
func (s UserStatus) Toggled() UserStatus {
	if s == UserActive {
		return UserInactive
	}
	return UserActive
}

// User is a member of an organization. PasswordHash never leaves the server.
type User struct {
	ID             uuid.UUID     `json:"id"`
	FullName       string        `json:"fullName"`
	Email          string        `json:"email"`
	PasswordHash   string        `json:"-"`
	Role           Role          `json:"role"`
	OrganizationID uuid.UUID     `json:"organizationId"`
	Organization   *Organization `json:"organization,omitempty"`
	Phone          *string       `json:"phone"`
	ActionsCount   int           `json:"actionsCount"`
	Status         UserStatus    `json:"status"`
	Skills         []UserSkill   `json:"skillConnections"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// SkillNames is the ordered list of skill names, the legacy flat view of Skills.
func (u *User) SkillNames() []string {
	names := make([]string, 0, len(u.Skills))
	for _, s := range u.Skills {
		names = append(names, s.Name)
	}
	return names
}

// MarshalJSON adds the flat "skills" name list next to the skill connections.
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		SkillNames []string `json:"skills"`
	}{alias: alias(u), SkillNames: u.SkillNames()})
}

// UserSummary is the subset of a user embedded in tasks and registrations.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
}
