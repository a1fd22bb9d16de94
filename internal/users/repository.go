package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/apperr"
	"github.com/gestaodobem/backend/pkg/database"
)

var errNotFound = apperr.NotFound("user not found")

const userColumns = `u.id, u.full_name, u.email, u.password_hash, u.role, u.organization_id,
	u.phone, u.actions_count, u.status, u.created_at, u.updated_at`

// Repository handles user and skill persistence.
type Repository struct {
	pool database.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool database.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row, extra ...any) (*models.User, error) {
	var u models.User
	dest := append([]any{
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.OrganizationID,
		&u.Phone, &u.ActionsCount, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &u, nil
}

// Insert creates u on db, which may be a transaction. u.ID and timestamps are filled in.
func Insert(ctx context.Context, db database.DBTX, u *models.User) error {
	const q = `INSERT INTO users (full_name, email, password_hash, role, organization_id, phone, actions_count, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := db.QueryRow(ctx, q,
		u.FullName, u.Email, u.PasswordHash, string(u.Role), u.OrganizationID, u.Phone, u.ActionsCount, string(u.Status),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return apperr.Conflict("email already in use")
	}
	return err
}

// EmailTaken reports whether any user other than exceptID has email (case-insensitive).
func EmailTaken(ctx context.Context, db database.DBTX, email string, exceptID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2)`
	var taken bool
	if err := db.QueryRow(ctx, q, email, exceptID).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// GetByEmail returns the user with email, including its password hash.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u WHERE LOWER(u.email) = LOWER($1)`
	u, err := scanUser(r.pool.QueryRow(ctx, q, email))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errNotFound
		}
		return nil, err
	}
	if err := r.attachSkills(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetWithOrganization returns the user with its organization and address.
func (r *Repository) GetWithOrganization(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + `,
			o.id, o.name, COALESCE(o.activity_field, ''), o.address_id, o.created_at, o.updated_at,
			a.id, a.zip_code, a.street, a.number, a.complement, a.neighborhood, a.city, a.state
		FROM users u
		JOIN organizations o ON o.id = u.organization_id
		LEFT JOIN addresses a ON a.id = o.address_id
		WHERE u.id = $1`
	var (
		org                                                       models.Organization
		addrID                                                    *uuid.UUID
		zip, street, number, complement, neighborhood, city, state *string
	)
	u, err := scanUser(r.pool.QueryRow(ctx, q, id),
		&org.ID, &org.Name, &org.ActivityField, &org.AddressID, &org.CreatedAt, &org.UpdatedAt,
		&addrID, &zip, &street, &number, &complement, &neighborhood, &city, &state,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errNotFound
		}
		return nil, err
	}
	if addrID != nil {
		org.Address = &models.Address{
			ID:           *addrID,
			ZipCode:      deref(zip),
			Street:       deref(street),
			Number:       deref(number),
			Complement:   deref(complement),
			Neighborhood: deref(neighborhood),
			City:         deref(city),
			State:        deref(state),
		}
	}
	u.Organization = &org
	if err := r.attachSkills(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// EmailInUse reports whether another user already has email.
func (r *Repository) EmailInUse(ctx context.Context, email string, exceptID uuid.UUID) (bool, error) {
	return EmailTaken(ctx, r.pool, email, exceptID)
}

// UpdateProfile saves the caller-editable fields and password hash.
func (r *Repository) UpdateProfile(ctx context.Context, u *models.User) error {
	const q = `UPDATE users SET full_name = $2, email = $3, phone = $4, password_hash = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, u.ID, u.FullName, u.Email, u.Phone, u.PasswordHash).Scan(&u.UpdatedAt)
	switch {
	case database.IsUniqueViolation(err):
		return apperr.Conflict("email already in use")
	case database.IsNoRows(err):
		return errNotFound
	}
	return err
}

// Create inserts u and its skills in one transaction.
func (r *Repository) Create(ctx context.Context, u *models.User, skills []models.SkillInput) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := Insert(ctx, tx, u); err != nil {
			return err
		}
		var err error
		u.Skills, err = replaceSkills(ctx, tx, u.ID, skills)
		return err
	})
}

// List returns the organization's members, excluding the organization account, by name.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID) ([]*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u
		WHERE u.organization_id = $1 AND u.role <> $2
		ORDER BY u.full_name`
	rows, err := r.pool.Query(ctx, q, orgID, string(models.RoleOrganization))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSkills(ctx, list...); err != nil {
		return nil, err
	}
	return list, nil
}

// Get returns a user of the organization.
func (r *Repository) Get(ctx context.Context, orgID, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1 AND u.organization_id = $2`
	u, err := scanUser(r.pool.QueryRow(ctx, q, id, orgID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errNotFound
		}
		return nil, err
	}
	if err := r.attachSkills(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update saves u's editable fields. A non-nil skills replaces the user's skills.
func (r *Repository) Update(ctx context.Context, u *models.User, skills *[]models.SkillInput) error {
	const q = `UPDATE users SET full_name = $3, email = $4, phone = $5, role = $6, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING updated_at`
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, q, u.ID, u.OrganizationID, u.FullName, u.Email, u.Phone, string(u.Role)).Scan(&u.UpdatedAt)
		switch {
		case database.IsUniqueViolation(err):
			return apperr.Conflict("email already in use")
		case database.IsNoRows(err):
			return errNotFound
		case err != nil:
			return err
		}
		if skills != nil {
			u.Skills, err = replaceSkills(ctx, tx, u.ID, *skills)
		}
		return err
	})
}

// Delete removes a user of the organization.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// SetStatus stores a new status for a user of the organization.
func (r *Repository) SetStatus(ctx context.Context, orgID, id uuid.UUID, status models.UserStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET status = $3, updated_at = NOW() WHERE id = $1 AND organization_id = $2`,
		id, orgID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// ListSkills returns the skill taxonomy by name.
func (r *Repository) ListSkills(ctx context.Context) ([]*models.Skill, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, category, created_at FROM skills ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.Skill{}
	for rows.Next() {
		var s models.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// attachSkills loads the skill connections of every user in one query.
func (r *Repository) attachSkills(ctx context.Context, list ...*models.User) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	byID := make(map[uuid.UUID]*models.User, len(list))
	for _, u := range list {
		u.Skills = []models.UserSkill{}
		ids = append(ids, u.ID.String())
		byID[u.ID] = u
	}
	const q = `SELECT us.user_id, s.id, s.name, us.proficiency_level
		FROM user_skills us
		JOIN skills s ON s.id = us.skill_id
		WHERE us.user_id = ANY($1::uuid[])
		ORDER BY us.id`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return fmt.Errorf("load skills: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			userID uuid.UUID
			s      models.UserSkill
		)
		if err := rows.Scan(&userID, &s.SkillID, &s.Name, &s.Level); err != nil {
			return err
		}
		if u, ok := byID[userID]; ok {
			u.Skills = append(u.Skills, s)
		}
	}
	return rows.Err()
}

// replaceSkills swaps the user's skill connections for skills, creating
// taxonomy entries for unknown names.
func replaceSkills(ctx context.Context, db database.DBTX, userID uuid.UUID, skills []models.SkillInput) ([]models.UserSkill, error) {
	if _, err := db.Exec(ctx, `DELETE FROM user_skills WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("clear skills: %w", err)
	}
	// Names match case-insensitively; the taxonomy keeps its first spelling.
	const upsertSkill = `INSERT INTO skills (name) VALUES ($1)
		ON CONFLICT ((LOWER(name))) DO UPDATE SET name = skills.name
		RETURNING id, name`
	const link = `INSERT INTO user_skills (user_id, skill_id, proficiency_level) VALUES ($1, $2, $3)`
	out := make([]models.UserSkill, 0, len(skills))
	for _, s := range skills {
		var (
			skillID uuid.UUID
			name    string
		)
		if err := db.QueryRow(ctx, upsertSkill, s.Name).Scan(&skillID, &name); err != nil {
			return nil, fmt.Errorf("upsert skill %q: %w", s.Name, err)
		}
		if _, err := db.Exec(ctx, link, userID, skillID, string(s.Level)); err != nil {
			return nil, fmt.Errorf("link skill %q: %w", s.Name, err)
		}
		out = append(out, models.UserSkill{SkillID: skillID, Name: name, Level: s.Level})
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
