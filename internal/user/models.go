package user

import (
	"time"

	"github.com/foyerhq/foyer/internal/org"
)

// User is a registered account. Organisations is eagerly loaded by the
// store so request-time policy checks never go back to the database for
// the requester's own memberships.
type User struct {
	UserID        string
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	PasswordHash  string
	CreatedAt     time.Time
	Organisations []org.Organisation
}

// PublicUser is the subset of a user record safe to return to clients.
type PublicUser struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Public returns the client-facing view of the user. The password hash
// never leaves the server.
func (u *User) Public() PublicUser {
	return PublicUser{
		UserID:    u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
	}
}

// MemberOf reports whether the user belongs to the given organisation,
// based on the eagerly loaded memberships.
func (u *User) MemberOf(orgID string) bool {
	for _, o := range u.Organisations {
		if o.OrgID == orgID {
			return true
		}
	}
	return false
}

// CreateUserParams holds the fields required to persist a new user. The
// identifier and password hash are produced by the identity service.
type CreateUserParams struct {
	UserID       string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
}
