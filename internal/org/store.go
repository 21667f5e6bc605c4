package org

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAlreadyMember is returned when a membership row already exists for
// the (user, organisation) pair. The memberships primary key is the
// authoritative source; pre-checks are advisory.
var ErrAlreadyMember = errors.New("user already in organisation")

// uniqueViolation is the Postgres SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

// Store provides database operations for organisations and memberships.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new organisation store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateWithMember inserts a new organisation and its creator's
// membership in a single transaction. There is no intermediate state
// where the organisation exists without its creator as member.
func (s *Store) CreateWithMember(ctx context.Context, in CreateOrganisationInput, creatorID string) (*Organisation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	o := &Organisation{}
	err = tx.QueryRow(ctx,
		`INSERT INTO organisations (org_id, name, description)
		 VALUES ($1, $2, $3)
		 RETURNING org_id, name, description, created_at`,
		uuid.NewString(), in.Name, in.Description,
	).Scan(&o.OrgID, &o.Name, &o.Description, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating organisation: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO memberships (user_id, org_id) VALUES ($1, $2)`,
		creatorID, o.OrgID,
	)
	if err != nil {
		return nil, fmt.Errorf("adding creator membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing organisation: %w", err)
	}
	return o, nil
}

// GetByOrgID retrieves an organisation by its public identifier.
// Returns pgx.ErrNoRows (wrapped) if absent.
func (s *Store) GetByOrgID(ctx context.Context, orgID string) (*Organisation, error) {
	o := &Organisation{}
	err := s.pool.QueryRow(ctx,
		`SELECT org_id, name, description, created_at
		 FROM organisations WHERE org_id = $1`, orgID,
	).Scan(&o.OrgID, &o.Name, &o.Description, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting organisation: %w", err)
	}
	return o, nil
}

// GetForMember retrieves an organisation only if userID is a member.
// Absent organisations and non-member lookups are indistinguishable:
// both surface pgx.ErrNoRows.
func (s *Store) GetForMember(ctx context.Context, orgID, userID string) (*Organisation, error) {
	o := &Organisation{}
	err := s.pool.QueryRow(ctx,
		`SELECT o.org_id, o.name, o.description, o.created_at
		 FROM organisations o
		 JOIN memberships m ON m.org_id = o.org_id
		 WHERE o.org_id = $1 AND m.user_id = $2`, orgID, userID,
	).Scan(&o.OrgID, &o.Name, &o.Description, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting organisation for member: %w", err)
	}
	return o, nil
}

// ListByUser returns exactly the organisations the user is a member of,
// in membership insertion order.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Organisation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT o.org_id, o.name, o.description, o.created_at
		 FROM organisations o
		 JOIN memberships m ON m.org_id = o.org_id
		 WHERE m.user_id = $1
		 ORDER BY m.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing organisations: %w", err)
	}
	defer rows.Close()

	orgs := []Organisation{}
	for rows.Next() {
		var o Organisation
		if err := rows.Scan(&o.OrgID, &o.Name, &o.Description, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning organisation row: %w", err)
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

// IsMember reports whether userID belongs to orgID.
func (s *Store) IsMember(ctx context.Context, orgID, userID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM memberships WHERE org_id = $1 AND user_id = $2
		 )`, orgID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return exists, nil
}

// AddMember inserts a membership row. A duplicate pair surfaces as
// ErrAlreadyMember via the primary key, never as a silent no-op.
func (s *Store) AddMember(ctx context.Context, orgID, userID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO memberships (user_id, org_id) VALUES ($1, $2)`,
		userID, orgID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyMember
		}
		return fmt.Errorf("adding membership: %w", err)
	}
	return nil
}

// IsNotFound reports whether err represents an absent row.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// SharesOrganisation reports whether two users have at least one
// organisation membership in common.
func (s *Store) SharesOrganisation(ctx context.Context, userA, userB string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM memberships a
		   JOIN memberships b ON a.org_id = b.org_id
		   WHERE a.user_id = $1 AND b.user_id = $2
		 )`, userA, userB,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking shared organisation: %w", err)
	}
	return exists, nil
}
