package organizations

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/apperr"
	"github.com/gestaodobem/backend/pkg/sanitize"
	"github.com/gestaodobem/backend/pkg/utils"
)

var ErrEmailInUse = apperr.Conflict("admin email already in use")

// OnboardingTx is the set of writes onboarding performs, all in one transaction.
type OnboardingTx interface {
	EmailTaken(ctx context.Context, email string) (bool, error)
	CreateAddress(ctx context.Context, a *models.Address) error
	CreateOrganization(ctx context.Context, org *models.Organization) error
	CreateUser(ctx context.Context, u *models.User) error
}

// Store runs fn in a transaction, committing only when fn returns nil.
type Store interface {
	Onboard(ctx context.Context, fn func(tx OnboardingTx) error) error
}

// Service registers new organizations.
type Service struct {
	store  Store
	hasher *utils.PasswordHasher
	logger *zap.Logger
}

// NewService creates the onboarding service.
func NewService(store Store, hasher *utils.PasswordHasher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, hasher: hasher, logger: logger}
}

// AdminInput is the first administrator of a new organization.
type AdminInput struct {
	FullName string
	Email    string
	Password string
}

// AddressInput is the optional postal address of a new organization.
type AddressInput struct {
	ZipCode      string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
}

// RegisterInput is an onboarding request.
type RegisterInput struct {
	OrganizationName string
	ActivityField    string
	Admin            AdminInput
	Address          *AddressInput
}

// Register creates the address, the organization and its admin user
// atomically and returns the organization.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Organization, error) {
	org := &models.Organization{
		Name:          sanitize.Text(in.OrganizationName),
		ActivityField: sanitize.Text(in.ActivityField),
	}
	if org.Name == "" || org.ActivityField == "" {
		return nil, apperr.Validation("organizationName and activityField are required")
	}
	adminName := sanitize.Text(in.Admin.FullName)
	if adminName == "" {
		return nil, apperr.Validation("admin fullName is required")
	}
	adminEmail := strings.TrimSpace(in.Admin.Email)

	// Hashed outside the transaction.
	hash, err := s.hasher.Hash(in.Admin.Password)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	var admin *models.User
	err = s.store.Onboard(ctx, func(tx OnboardingTx) error {
		taken, err := tx.EmailTaken(ctx, adminEmail)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return ErrEmailInUse
		}

		if in.Address != nil {
			addr := &models.Address{
				ZipCode:      sanitize.Text(in.Address.ZipCode),
				Street:       sanitize.Text(in.Address.Street),
				Number:       sanitize.Text(in.Address.Number),
				Complement:   sanitize.Text(in.Address.Complement),
				Neighborhood: sanitize.Text(in.Address.Neighborhood),
				City:         sanitize.Text(in.Address.City),
				State:        strings.ToUpper(strings.TrimSpace(in.Address.State)),
			}
			if err := tx.CreateAddress(ctx, addr); err != nil {
				return err
			}
			org.AddressID = &addr.ID
			org.Address = addr
		}

		if err := tx.CreateOrganization(ctx, org); err != nil {
			return err
		}

		admin = &models.User{
			FullName:       adminName,
			Email:          adminEmail,
			PasswordHash:   hash,
			Role:           models.RoleAdmin,
			OrganizationID: org.ID,
			Status:         models.UserActive,
		}
		if err := tx.CreateUser(ctx, admin); err != nil {
			if apperr.KindOf(err) == apperr.KindConflict {
				return ErrEmailInUse
			}
			return fmt.Errorf("create admin: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("organization registered",
		zap.String("organization_id", org.ID.String()),
		zap.String("admin_id", admin.ID.String()))
	return org, nil
}
