// Package identity implements signup, login, and token resolution. The
// business logic is written once against the UserStore interface; the
// pgx-backed store in internal/user is the concrete backend.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/foyerhq/foyer/internal/apperror"
	"github.com/foyerhq/foyer/internal/user"
	"github.com/foyerhq/foyer/internal/validation"
)

// DefaultBcryptCost is the work factor applied to new password hashes.
const DefaultBcryptCost = 12

// UserStore is the persistence surface the identity service needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByUserID(ctx context.Context, userID string) (*user.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	PhoneTaken(ctx context.Context, phone string) (bool, error)
	UserIDTaken(ctx context.Context, userID string) (bool, error)
	CreateWithDefaultOrg(ctx context.Context, p user.CreateUserParams, orgName string) (*user.User, error)
}

// SignupInput holds the fields required to register a user.
type SignupInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
}

// Service provides identity operations: signup, login, and resolving a
// bearer token to a user with memberships loaded.
type Service struct {
	users  UserStore
	tokens *TokenIssuer
	cost   int
}

// NewService creates an identity service. A bcryptCost of zero selects
// DefaultBcryptCost.
func NewService(users UserStore, tokens *TokenIssuer, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &Service{users: users, tokens: tokens, cost: bcryptCost}
}

// Signup validates and registers a new user, mints their default
// organisation, and issues a session token. The plaintext password is
// hashed before it touches the store and is never logged.
func (s *Service) Signup(ctx context.Context, in SignupInput) (string, *user.User, error) {
	if verr := validation.User(validation.UserInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Phone:     in.Phone,
	}); verr != nil {
		return "", nil, verr
	}

	// Advisory pre-checks; the table constraints remain authoritative.
	if taken, err := s.users.EmailTaken(ctx, in.Email); err != nil {
		return "", nil, fmt.Errorf("checking email: %w", err)
	} else if taken {
		return "", nil, apperror.Conflict("email already exists")
	}
	if taken, err := s.users.PhoneTaken(ctx, in.Phone); err != nil {
		return "", nil, fmt.Errorf("checking phone: %w", err)
	} else if taken {
		return "", nil, apperror.Conflict("phone number already in use")
	}

	userID, err := s.freshUserID(ctx)
	if err != nil {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return "", nil, fmt.Errorf("hashing password: %w", err)
	}

	u, err := s.users.CreateWithDefaultOrg(ctx, user.CreateUserParams{
		UserID:       userID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
	}, DefaultOrgName(in.FirstName))
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			return "", nil, apperror.Conflict("email already exists")
		case errors.Is(err, user.ErrPhoneTaken):
			return "", nil, apperror.Conflict("phone number already in use")
		default:
			return "", nil, fmt.Errorf("creating user: %w", err)
		}
	}

	token, err := s.tokens.Mint(u.UserID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Login authenticates an email/password pair. Every credential-path
// failure is reported identically so the response never reveals which
// field was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	if email == "" || password == "" {
		return "", nil, apperror.Authentication("authentication failed")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if user.IsNotFound(err) {
			return "", nil, apperror.Authentication("authentication failed")
		}
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, apperror.Authentication("authentication failed")
	}

	token, err := s.tokens.Mint(u.UserID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// ResolveToken verifies a bearer token and loads its user with
// organisation memberships eagerly attached. A valid token whose user no
// longer exists resolves to a not-found error, not an auth error.
func (s *Service) ResolveToken(ctx context.Context, token string) (*user.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperror.Authentication("invalid or expired token")
	}

	u, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if user.IsNotFound(err) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, fmt.Errorf("resolving token user: %w", err)
	}
	return u, nil
}

// freshUserID generates identifiers until one is unused. Generator
// collisions are astronomically rare but handled, not assumed away.
func (s *Service) freshUserID(ctx context.Context) (string, error) {
	for {
		id := uuid.NewString()
		taken, err := s.users.UserIDTaken(ctx, id)
		if err != nil {
			return "", fmt.Errorf("checking user id: %w", err)
		}
		if !taken {
			return id, nil
		}
	}
}

// DefaultOrgName is the name of the organisation auto-created at signup.
func DefaultOrgName(firstName string) string {
	return fmt.Sprintf("%s's Organisation", firstName)
}
