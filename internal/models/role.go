package models

import "github.com/google/uuid"

// Role is a user's role inside its organization.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleCoordinator  Role = "coordinator"
	RoleVolunteer    Role = "volunteer"
	RoleOrganization Role = "organization"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleVolunteer, RoleOrganization:
		return true
	}
	return false
}

// Capability is something a role may be allowed to do.
type Capability int

const (
	// CapManageUsers covers creating, editing, removing and toggling organization users.
	CapManageUsers Capability = iota
	// CapAssignAdmin covers granting the admin role.
	CapAssignAdmin
	// CapManageEvents covers creating, editing and deleting events and exporting rosters.
	CapManageEvents
)

var capabilities = map[Capability][]Role{
	CapManageUsers:  {RoleAdmin, RoleCoordinator, RoleOrganization},
	CapAssignAdmin:  {RoleAdmin},
	CapManageEvents: {RoleAdmin, RoleCoordinator, RoleOrganization},
}

// Can reports whether r grants c.
func (r Role) Can(c Capability) bool {
	for _, allowed := range capabilities[c] {
		if allowed == r {
			return true
		}
	}
	return false
}

// Session is the identity asserted by a valid session token.
type Session struct {
	UserID         uuid.UUID
	Email          string
	Role           Role
	OrganizationID uuid.UUID
}
