package organizations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/internal/users"
	"github.com/gestaodobem/backend/pkg/database"
)

// Repository handles organization onboarding persistence.
type Repository struct {
	pool database.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool database.Pool) *Repository {
	return &Repository{pool: pool}
}

// Onboard runs the onboarding steps inside one transaction. Any error rolls
// back every row written so far.
func (r *Repository) Onboard(ctx context.Context, fn func(tx OnboardingTx) error) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgOnboardingTx{db: tx})
	})
}

type pgOnboardingTx struct {
	db database.DBTX
}

func (t *pgOnboardingTx) EmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := t.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&taken)
	return taken, err
}

func (t *pgOnboardingTx) CreateAddress(ctx context.Context, a *models.Address) error {
	const q = `INSERT INTO addresses (zip_code, street, number, complement, neighborhood, city, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := t.db.QueryRow(ctx, q,
		a.ZipCode, a.Street, a.Number, a.Complement, a.Neighborhood, a.City, a.State,
	).Scan(&a.ID); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (t *pgOnboardingTx) CreateOrganization(ctx context.Context, org *models.Organization) error {
	const q = `INSERT INTO organizations (name, activity_field, address_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	if err := t.db.QueryRow(ctx, q, org.Name, org.ActivityField, org.AddressID).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (t *pgOnboardingTx) CreateUser(ctx context.Context, u *models.User) error {
	return users.Insert(ctx, t.db, u)
}
