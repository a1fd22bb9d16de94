package auth

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
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = apperr.Unauthorized("invalid email or password")
	ErrIncorrectPassword  = apperr.Domain("incorrect current password")
)

// Store is the user persistence the credential service needs.
type Store interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetWithOrganization(ctx context.Context, id uuid.UUID) (*models.User, error)
	EmailInUse(ctx context.Context, email string, exceptID uuid.UUID) (bool, error)
	UpdateProfile(ctx context.Context, u *models.User) error
}

// Service validates credentials, issues sessions and manages the caller's profile.
type Service struct {
	store  Store
	hasher *utils.PasswordHasher
	tokens *JWTService
	logger *zap.Logger
}

// NewService creates the credential service.
func NewService(store Store, hasher *utils.PasswordHasher, tokens *JWTService, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, hasher: hasher, tokens: tokens, logger: logger}
}

// Validate returns the user owning email when password matches.
func (s *Service) Validate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.store.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Matches(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	u.PasswordHash = ""
	return u, nil
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// Login validates credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Validate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, apperr.Internal("failed to issue session", err)
	}
	s.logger.Info("user logged in", zap.String("user_id", u.ID.String()), zap.String("organization_id", u.OrganizationID.String()))
	return &LoginResult{AccessToken: token, User: u}, nil
}

// Profile returns the user with its organization.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.store.GetWithOrganization(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// ProfileUpdate holds the optional fields of PATCH /auth/profile.
type ProfileUpdate struct {
	FullName        *string
	Email           *string
	Phone           *string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfile applies the provided fields. A password change needs both
// passwords and the current one must match.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*models.User, error) {
	u, err := s.store.GetWithOrganization(ctx, userID)
	if err != nil {
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
				return nil, apperr.Conflict("email already in use")
			}
		}
		u.Email = email
	}
	if in.Phone != nil {
		phone := sanitize.Text(*in.Phone)
		if phone == "" {
			u.Phone = nil
		} else {
			u.Phone = &phone
		}
	}

	if in.CurrentPassword != "" && in.NewPassword != "" {
		if !s.hasher.Matches(u.PasswordHash, in.CurrentPassword) {
			return nil, ErrIncorrectPassword
		}
		hash, err := s.hasher.Hash(in.NewPassword)
		if err != nil {
			return nil, apperr.Validation("%s", err.Error())
		}
		u.PasswordHash = hash
		s.logger.Info("password changed", zap.String("user_id", u.ID.String()))
	}

	if err := s.store.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}
