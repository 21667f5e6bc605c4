package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foyerhq/foyer/internal/org"
)

// Sentinel errors for storage-level uniqueness violations. The unique
// constraints in the users table are the enforced invariant; the
// service's pre-checks only produce friendlier errors ahead of the race
// window.
var (
	ErrEmailTaken  = errors.New("email already exists")
	ErrPhoneTaken  = errors.New("phone number already in use")
	ErrUserIDTaken = errors.New("user id already exists")
)

const uniqueViolation = "23505"

// Store provides database operations for users.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new user store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateWithDefaultOrg persists a new user, their default organisation,
// and the linking membership in a single transaction. No partially
// applied state is ever visible to concurrent requests.
func (s *Store) CreateWithDefaultOrg(ctx context.Context, p CreateUserParams, orgName string) (*User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	u := &User{}
	err = tx.QueryRow(ctx,
		`INSERT INTO users (user_id, first_name, last_name, email, phone, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING user_id, first_name, last_name, email, phone, password_hash, created_at`,
		p.UserID, p.FirstName, p.LastName, p.Email, p.Phone, p.PasswordHash,
	).Scan(&u.UserID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, translateUniqueViolation(err)
	}

	o := org.Organisation{}
	err = tx.QueryRow(ctx,
		`INSERT INTO organisations (org_id, name, description)
		 VALUES ($1, $2, '')
		 RETURNING org_id, name, description, created_at`,
		uuid.NewString(), orgName,
	).Scan(&o.OrgID, &o.Name, &o.Description, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating default organisation: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO memberships (user_id, org_id) VALUES ($1, $2)`,
		u.UserID, o.OrgID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating default membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing user: %w", err)
	}

	u.Organisations = []org.Organisation{o}
	return u, nil
}

// GetByUserID retrieves a user by public identifier with organisation
// memberships eagerly loaded.
func (s *Store) GetByUserID(ctx context.Context, userID string) (*User, error) {
	return s.getOne(ctx, `WHERE user_id = $1`, userID)
}

// GetByEmail retrieves a user by email address with organisation
// memberships eagerly loaded.
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.getOne(ctx, `WHERE email = $1`, email)
}

func (s *Store) getOne(ctx context.Context, where string, arg any) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, first_name, last_name, email, phone, password_hash, created_at
		 FROM users `+where, arg,
	).Scan(&u.UserID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	if err := s.loadOrganisations(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) loadOrganisations(ctx context.Context, u *User) error {
	rows, err := s.pool.Query(ctx,
		`SELECT o.org_id, o.name, o.description, o.created_at
		 FROM organisations o
		 JOIN memberships m ON m.org_id = o.org_id
		 WHERE m.user_id = $1
		 ORDER BY m.created_at`, u.UserID)
	if err != nil {
		return fmt.Errorf("loading user organisations: %w", err)
	}
	defer rows.Close()

	u.Organisations = []org.Organisation{}
	for rows.Next() {
		var o org.Organisation
		if err := rows.Scan(&o.OrgID, &o.Name, &o.Description, &o.CreatedAt); err != nil {
			return fmt.Errorf("scanning organisation row: %w", err)
		}
		u.Organisations = append(u.Organisations, o)
	}
	return rows.Err()
}

// EmailTaken reports whether a user already holds the given email.
func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

// PhoneTaken reports whether a user already holds the given phone number.
func (s *Store) PhoneTaken(ctx context.Context, phone string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE phone = $1)`, phone)
}

// UserIDTaken reports whether a user already holds the given identifier.
func (s *Store) UserIDTaken(ctx context.Context, userID string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID)
}

func (s *Store) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}
	return exists, nil
}

// translateUniqueViolation maps a users-table unique constraint error to
// its sentinel, so callers can produce the right conflict message even
// when the pre-check lost a race.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return ErrEmailTaken
		case "users_phone_key":
			return ErrPhoneTaken
		case "users_pkey":
			return ErrUserIDTaken
		}
	}
	return fmt.Errorf("creating user: %w", err)
}

// IsNotFound reports whether err represents a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
