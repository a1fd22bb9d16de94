package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/database"
)

// SelectEvents is the event column list read by ScanEvent; callers append
// WHERE and ORDER BY.
const SelectEvents = `SELECT e.id, e.title, e.description, e.event_date, e.event_time, e.location,
		e.max_participants, e.confirmed_participants, e.status, e.organization_id, e.created_by,
		e.created_at, e.updated_at
	FROM events e`

// Repository handles event and registration persistence.
type Repository struct {
	pool database.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool database.Pool) *Repository {
	return &Repository{pool: pool}
}

// ScanEvent reads one row of SelectEvents.
func ScanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.EventDate, &e.EventTime, &e.Location,
		&e.MaxParticipants, &e.ConfirmedParticipants, &e.Status, &e.OrganizationID, &e.CreatedByID,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Registrations = []models.EventUser{}
	return &e, nil
}

// List returns the organization's events, newest date first, with registrations.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID) ([]*models.Event, error) {
	rows, err := r.pool.Query(ctx, SelectEvents+` WHERE e.organization_id = $1
		ORDER BY e.event_date DESC, e.event_time DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.Event{}
	for rows.Next() {
		e, err := ScanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := attachRegistrations(ctx, r.pool, list...); err != nil {
		return nil, err
	}
	return list, nil
}

// Get returns an event of the organization with its registrations.
func (r *Repository) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Event, error) {
	e, err := getEvent(ctx, r.pool, orgID, id, false)
	if err != nil {
		return nil, err
	}
	if err := attachRegistrations(ctx, r.pool, e); err != nil {
		return nil, err
	}
	return e, nil
}

func getEvent(ctx context.Context, db database.DBTX, orgID, id uuid.UUID, lock bool) (*models.Event, error) {
	q := SelectEvents + ` WHERE e.id = $1 AND e.organization_id = $2`
	if lock {
		q += ` FOR UPDATE`
	}
	e, err := ScanEvent(db.QueryRow(ctx, q, id, orgID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Roster returns the contact rows of an event's volunteers in registration order.
func (r *Repository) Roster(ctx context.Context, orgID, eventID uuid.UUID) ([]models.RosterEntry, error) {
	if _, err := getEvent(ctx, r.pool, orgID, eventID, false); err != nil {
		return nil, err
	}
	const q = `SELECT u.full_name, u.email, u.phone, eu.status, eu.registered_at
		FROM event_users eu
		JOIN events e ON e.id = eu.event_id
		JOIN users u ON u.id = eu.user_id
		WHERE eu.event_id = $1 AND e.organization_id = $2
		ORDER BY eu.registered_at`
	rows, err := r.pool.Query(ctx, q, eventID, orgID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	defer rows.Close()
	entries := []models.RosterEntry{}
	for rows.Next() {
		var x models.RosterEntry
		if err := rows.Scan(&x.FullName, &x.Email, &x.Phone, &x.Status, &x.RegisteredAt); err != nil {
			return nil, err
		}
		entries = append(entries, x)
	}
	return entries, rows.Err()
}

// Create inserts e and fills in its ID and timestamps.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (title, description, event_date, event_time, location, max_participants,
			confirmed_participants, status, organization_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9)
		RETURNING id, confirmed_participants, created_at, updated_at`
	return r.pool.QueryRow(ctx, q,
		e.Title, e.Description, e.EventDate, e.EventTime, e.Location, e.MaxParticipants,
		string(e.Status), e.OrganizationID, e.CreatedByID,
	).Scan(&e.ID, &e.ConfirmedParticipants, &e.CreatedAt, &e.UpdatedAt)
}

// Update saves e's editable fields. The capacity may not drop below the
// current confirmed count, which is read under the same statement.
func (r *Repository) Update(ctx context.Context, e *models.Event) error {
	const q = `UPDATE events SET title = $3, description = $4, event_date = $5, event_time = $6, location = $7,
			max_participants = $8, status = $9, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND confirmed_participants <= $8
		RETURNING confirmed_participants, updated_at`
	err := r.pool.QueryRow(ctx, q,
		e.ID, e.OrganizationID, e.Title, e.Description, e.EventDate, e.EventTime, e.Location,
		e.MaxParticipants, string(e.Status),
	).Scan(&e.ConfirmedParticipants, &e.UpdatedAt)
	if database.IsNoRows(err) {
		if _, getErr := getEvent(ctx, r.pool, e.OrganizationID, e.ID, false); getErr != nil {
			return getErr
		}
		return ErrCapacityBelowConfirmed
	}
	return err
}

// Delete removes an event of the organization; registrations cascade.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Registration runs fn in a transaction for changing an event's registrations.
func (r *Repository) Registration(ctx context.Context, fn func(tx RegistrationTx) error) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgRegistrationTx{db: tx})
	})
}

type pgRegistrationTx struct {
	db database.DBTX
}

func (t *pgRegistrationTx) LockEvent(ctx context.Context, orgID, id uuid.UUID) (*models.Event, error) {
	return getEvent(ctx, t.db, orgID, id, true)
}

func (t *pgRegistrationTx) IsRegistered(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := t.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_users WHERE event_id = $1 AND user_id = $2)`, eventID, userID,
	).Scan(&ok)
	return ok, err
}

func (t *pgRegistrationTx) AddRegistration(ctx context.Context, reg *models.EventUser) error {
	const q = `INSERT INTO event_users (event_id, user_id, status) VALUES ($1, $2, $3)
		RETURNING id, registered_at`
	if err := t.db.QueryRow(ctx, q, reg.EventID, reg.UserID, string(reg.Status)).Scan(&reg.ID, &reg.RegisteredAt); err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (t *pgRegistrationTx) RemoveRegistration(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	tag, err := t.db.Exec(ctx, `DELETE FROM event_users WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (t *pgRegistrationTx) SetConfirmed(ctx context.Context, eventID uuid.UUID, n int) error {
	_, err := t.db.Exec(ctx,
		`UPDATE events SET confirmed_participants = $2, updated_at = NOW() WHERE id = $1`, eventID, n)
	return err
}

// attachRegistrations loads registrations and user summaries of every event in one query.
func attachRegistrations(ctx context.Context, db database.DBTX, list ...*models.Event) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	byID := make(map[uuid.UUID]*models.Event, len(list))
	for _, e := range list {
		ids = append(ids, e.ID.String())
		byID[e.ID] = e
	}
	const q = `SELECT eu.id, eu.event_id, eu.user_id, eu.status, eu.registered_at, u.full_name, u.email
		FROM event_users eu
		JOIN users u ON u.id = eu.user_id
		WHERE eu.event_id = ANY($1::uuid[])
		ORDER BY eu.registered_at`
	rows, err := db.Query(ctx, q, ids)
	if err != nil {
		return fmt.Errorf("load registrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			reg  models.EventUser
			user models.UserSummary
		)
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reg.RegisteredAt,
			&user.FullName, &user.Email); err != nil {
			return err
		}
		user.ID = reg.UserID
		reg.User = &user
		if e, ok := byID[reg.EventID]; ok {
			e.Registrations = append(e.Registrations, reg)
		}
	}
	return rows.Err()
}
