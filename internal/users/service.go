package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/apperr"
	"github.com/gestaodobem/backend/pkg/sanitize"
	"github.com/gestaodobem/backend/pkg/utils"
)

var (
	ErrEmailInUse     = apperr.Conflict("email already in use")
	ErrCannotRemove   = apperr.Domain("you cannot remove your own account")
	ErrAdminProtected = apperr.Forbidden("only admins can change another admin")
)

// Store is the persistence the user management service needs.
type Store interface {
	Create(ctx context.Context, u *models.User, skills []models.SkillInput) error
	List(ctx context.Context, orgID uuid.UUID) ([]*models.User, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, u *models.User, skills *[]models.SkillInput) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	SetStatus(ctx context.Context, orgID, id uuid.UUID, status models.UserStatus) error
	EmailInUse(ctx context.Context, email string, exceptID uuid.UUID) (bool, error)
	ListSkills(ctx context.Context) ([]*models.Skill, error)
}

// Service manages the members of an organization.
type Service struct {
	store  Store
	hasher *utils.PasswordHasher
	logger *zap.Logger
}

// NewService creates the user management service.
func NewService(store Store, hasher *utils.PasswordHasher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, hasher: hasher, logger: logger}
}

// CreateInput is a new member.
type CreateInput struct {
	FullName string
	Email    string
	Password string
	Phone    *string
	Role     models.Role
	Status   models.UserStatus
	Skills   []models.SkillInput
}

// UpdateInput holds the optional fields of a member update.
type UpdateInput struct {
	FullName *string
	Email    *string
	Phone    *string
	Role     *models.Role
	Skills   *[]models.SkillInput
}

func checkRoleGrant(sess models.Session, role models.Role) error {
	if !role.Valid() {
		return apperr.Validation("invalid role %q", role)
	}
	if role == models.RoleAdmin && !sess.Role.Can(models.CapAssignAdmin) {
		return apperr.Forbidden("only admins can grant the admin role")
	}
	return nil
}

// checkActOn rejects changes to another admin's account by a role that
// cannot grant the admin role.
func checkActOn(sess models.Session, target *models.User) error {
	if target.ID != sess.UserID && target.Role == models.RoleAdmin && !sess.Role.Can(models.CapAssignAdmin) {
		return ErrAdminProtected
	}
	return nil
}

// Create adds a member to the caller's organization.
func (s *Service) Create(ctx context.Context, sess models.Session, in CreateInput) (*models.User, error) {
	if !sess.Role.Can(models.CapManageUsers) {
		return nil, apperr.Forbidden("insufficient permissions")
	}
	if in.Role == "" {
		in.Role = models.RoleVolunteer
	}
	if err := checkRoleGrant(sess, in.Role); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.UserActive
	}
	if in.Status != models.UserActive && in.Status != models.UserInactive {
		return nil, apperr.Validation("invalid status %q", in.Status)
	}
	name := sanitize.Text(in.FullName)
	if name == "" {
		return nil, apperr.Validation("fullName is required")
	}
	skills, err := models.NormalizeSkills(in.Skills)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	email := strings.TrimSpace(in.Email)
	taken, err := s.store.EmailInUse(ctx, email, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailInUse
	}

	u := &models.User{
		FullName:       name,
		Email:          email,
		PasswordHash:   hash,
		Role:           in.Role,
		OrganizationID: sess.OrganizationID,
		Phone:          blankToNil(in.Phone),
		Status:         in.Status,
	}
	if err := s.store.Create(ctx, u, skills); err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	s.logger.Info("user created",
		zap.String("user_id", u.ID.String()),
		zap.String("organization_id", u.OrganizationID.String()),
		zap.String("role", string(u.Role)))
	return u, nil
}

// List returns the organization's members.
func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]*models.User, error) {
	list, err := s.store.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for _, u := range list {
		u.PasswordHash = ""
	}
	return list, nil
}

// Get returns one member.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*models.User, error) {
	u, err := s.store.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Update edits a member. Members may edit their own contact fields; anything
// else requires the user management capability.
func (s *Service) Update(ctx context.Context, sess models.Session, id uuid.UUID, in UpdateInput) (*models.User, error) {
	manages := sess.Role.Can(models.CapManageUsers)
	if id != sess.UserID && !manages {
		return nil, apperr.Forbidden("insufficient permissions")
	}
	u, err := s.store.Get(ctx, sess.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if err := checkActOn(sess, u); err != nil {
		return nil, err
	}

	if in.FullName != nil {
		name := sanitize.Text(*in.FullName)
		if name == "" {
			return nil, apperr.Validation("fullName must not be blank")
		}
		u.FullName = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if !strings.EqualFold(email, u.Email) {
			taken, err := s.store.EmailInUse(ctx, email, u.ID)
			if err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if taken {
				return nil, ErrEmailInUse
			}
		}
		u.Email = email
	}
	if in.Phone != nil {
		u.Phone = blankToNil(in.Phone)
	}
	if in.Role != nil && *in.Role != u.Role {
		if !manages {
			return nil, apperr.Forbidden("insufficient permissions")
		}
		if err := checkRoleGrant(sess, *in.Role); err != nil {
			return nil, err
		}
		u.Role = *in.Role
	}
	var skills *[]models.SkillInput
	if in.Skills != nil {
		normalized, err := models.NormalizeSkills(*in.Skills)
		if err != nil {
			return nil, apperr.Validation("%s", err.Error())
		}
		skills = &normalized
	}

	if err := s.store.Update(ctx, u, skills); err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Remove deletes a member.
func (s *Service) Remove(ctx context.Context, sess models.Session, id uuid.UUID) error {
	if !sess.Role.Can(models.CapManageUsers) {
		return apperr.Forbidden("insufficient permissions")
	}
	if id == sess.UserID {
		return ErrCannotRemove
	}
	u, err := s.store.Get(ctx, sess.OrganizationID, id)
	if err != nil {
		return err
	}
	if err := checkActOn(sess, u); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, sess.OrganizationID, id); err != nil {
		return err
	}
	s.logger.Info("user removed", zap.String("user_id", id.String()), zap.String("by", sess.UserID.String()))
	return nil
}

// ToggleStatus flips a member between active and inactive.
func (s *Service) ToggleStatus(ctx context.Context, sess models.Session, id uuid.UUID) (*models.User, error) {
	if !sess.Role.Can(models.CapManageUsers) {
		return nil, apperr.Forbidden("insufficient permissions")
	}
	u, err := s.store.Get(ctx, sess.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if err := checkActOn(sess, u); err != nil {
		return nil, err
	}
	u.Status = u.Status.Toggled()
	if err := s.store.SetStatus(ctx, sess.OrganizationID, id, u.Status); err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Skills returns the skill taxonomy.
func (s *Service) Skills(ctx context.Context) ([]*models.Skill, error) {
	return s.store.ListSkills(ctx)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitize.Text(*s)
	if v == "" {
		return nil
	}
	return &v
}
