package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"guestlist/internal/guest/models"
	id "guestlist/pkg/domain"
	"guestlist/pkg/platform/sentinel"
)

// Postgres persists guests in PostgreSQL. The unique index on the lowered
// name pair enforces the normalized-name uniqueness contract, and Execute
// takes a row lock so concurrent confirmation transitions serialize.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the guests table and its indexes if they do not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS guests (
			id            UUID PRIMARY KEY,
			last_name     VARCHAR(100) NOT NULL,
			first_name    VARCHAR(100) NOT NULL,
			confirmed     BOOLEAN NOT NULL DEFAULT FALSE,
			confirmed_at  TIMESTAMPTZ,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL,
			CONSTRAINT guests_confirmed_at_matches_flag
				CHECK (confirmed = (confirmed_at IS NOT NULL))
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS guests_normalized_name_idx
			ON guests (LOWER(last_name), LOWER(first_name))`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate guests: %w", err)
		}
	}
	return nil
}

const guestColumns = `id, last_name, first_name, confirmed, confirmed_at, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, guest *models.Guest) error {
	query := `
		INSERT INTO guests (` + guestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		guest.ID.String(),
		guest.LastName,
		guest.FirstName,
		guest.Confirmed,
		guest.ConfirmedAt,
		guest.CreatedAt,
		guest.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert guest: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, guest *models.Guest) error {
	query := `
		UPDATE guests
		SET last_name = $2, first_name = $3, confirmed = $4, confirmed_at = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		guest.ID.String(),
		guest.LastName,
		guest.FirstName,
		guest.Confirmed,
		guest.ConfirmedAt,
		guest.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update guest: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) Delete(ctx context.Context, guestID id.GuestID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM guests WHERE id = $1`, guestID.String())
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) FindByID(ctx context.Context, guestID id.GuestID) (*models.Guest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE id = $1`,
		guestID.String(),
	)
	return scanGuest(row)
}

func (s *Postgres) FindByName(ctx context.Context, lastName, firstName string) (*models.Guest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+guestColumns+` FROM guests
		WHERE LOWER(last_name) = LOWER(TRIM($1)) AND LOWER(first_name) = LOWER(TRIM($2))`,
		lastName, firstName,
	)
	return scanGuest(row)
}

// List returns all guests in insertion order.
func (s *Postgres) List(ctx context.Context) ([]*models.Guest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+guestColumns+` FROM guests ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()
	return scanGuests(rows)
}

func (s *Postgres) Search(ctx context.Context, query string) ([]*models.Guest, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+guestColumns+` FROM guests
		WHERE last_name ILIKE $1 OR first_name ILIKE $1
		ORDER BY created_at, id`,
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search guests: %w", err)
	}
	defer rows.Close()
	return scanGuests(rows)
}

func (s *Postgres) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM guests`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count guests: %w", err)
	}
	return count, nil
}

func (s *Postgres) CountConfirmed(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM guests WHERE confirmed`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count confirmed guests: %w", err)
	}
	return count, nil
}

// Execute locks the guest row FOR UPDATE, runs validate then mutate, and
// writes the result in the same transaction. Exactly one of any concurrent
// transitions for a guest observes the pre-mutation state.
func (s *Postgres) Execute(ctx context.Context, guestID id.GuestID, validate func(*models.Guest) error, mutate func(*models.Guest)) (*models.Guest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin guest transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE id = $1 FOR UPDATE`,
		guestID.String(),
	)
	guest, err := scanGuest(row)
	if err != nil {
		return nil, err
	}

	if err := validate(guest); err != nil {
		return nil, err
	}
	mutate(guest)

	_, err = tx.ExecContext(ctx, `
		UPDATE guests
		SET last_name = $2, first_name = $3, confirmed = $4, confirmed_at = $5, updated_at = $6
		WHERE id = $1`,
		guest.ID.String(),
		guest.LastName,
		guest.FirstName,
		guest.Confirmed,
		guest.ConfirmedAt,
		guest.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("update guest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit guest transaction: %w", err)
	}
	return guest, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(row rowScanner) (*models.Guest, error) {
	var (
		guest models.Guest
		rawID string
	)
	err := row.Scan(
		&rawID,
		&guest.LastName,
		&guest.FirstName,
		&guest.Confirmed,
		&guest.ConfirmedAt,
		&guest.CreatedAt,
		&guest.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan guest: %w", err)
	}
	guestID, err := id.ParseGuestID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan guest id: %w", err)
	}
	guest.ID = guestID
	return &guest, nil
}

func scanGuests(rows *sql.Rows) ([]*models.Guest, error) {
	guests := make([]*models.Guest, 0)
	for rows.Next() {
		guest, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, guest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guests: %w", err)
	}
	return guests, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// escapeLike neutralizes LIKE wildcards in user input so search is literal
// substring containment.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
