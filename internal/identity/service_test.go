package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/foyerhq/foyer/internal/apperror"
	"github.com/foyerhq/foyer/internal/org"
	"github.com/foyerhq/foyer/internal/user"
)

// fakeUserStore is an in-memory UserStore for service tests.
type fakeUserStore struct {
	users   map[string]*user.User // keyed by userID
	byEmail map[string]string
	byPhone map[string]string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   map[string]*user.User{},
		byEmail: map[string]string{},
		byPhone: map[string]string{},
	}
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return f.users[id], nil
}

func (f *fakeUserStore) GetByUserID(_ context.Context, userID string) (*user.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserStore) EmailTaken(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUserStore) PhoneTaken(_ context.Context, phone string) (bool, error) {
	_, ok := f.byPhone[phone]
	return ok, nil
}

func (f *fakeUserStore) UserIDTaken(_ context.Context, userID string) (bool, error) {
	_, ok := f.users[userID]
	return ok, nil
}

func (f *fakeUserStore) CreateWithDefaultOrg(_ context.Context, p user.CreateUserParams, orgName string) (*user.User, error) {
	if _, ok := f.byEmail[p.Email]; ok {
		return nil, user.ErrEmailTaken
	}
	if _, ok := f.byPhone[p.Phone]; ok {
		return nil, user.ErrPhoneTaken
	}

	u := &user.User{
		UserID:       p.UserID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		Phone:        p.Phone,
		PasswordHash: p.PasswordHash,
		CreatedAt:    time.Now(),
		Organisations: []org.Organisation{
			{OrgID: "org-" + p.UserID, Name: orgName},
		},
	}
	f.users[p.UserID] = u
	f.byEmail[p.Email] = p.UserID
	f.byPhone[p.Phone] = p.UserID
	return u, nil
}

func newTestService(store *fakeUserStore) *Service {
	tokens := NewTokenIssuer("test-secret", time.Hour)
	return NewService(store, tokens, bcrypt.MinCost)
}

func validSignup() SignupInput {
	return SignupInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "Str0ng-pass",
		Phone:     "+442079460000",
	}
}

func TestSignup(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)

	token, u, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("Signup() error: %v", err)
	}

	if u.UserID == "" {
		t.Error("expected generated user id")
	}
	if token == "" {
		t.Fatal("expected session token")
	}

	// Token resolves back to the new user.
	resolved, err := svc.ResolveToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveToken() error: %v", err)
	}
	if resolved.UserID != u.UserID {
		t.Errorf("token resolved to %q, want %q", resolved.UserID, u.UserID)
	}
}

func TestSignupCreatesDefaultOrganisation(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)

	_, u, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("Signup() error: %v", err)
	}

	if len(u.Organisations) != 1 {
		t.Fatalf("expected 1 organisation, got %d", len(u.Organisations))
	}
	if u.Organisations[0].Name != "Ada's Organisation" {
		t.Errorf("org name = %q, want %q", u.Organisations[0].Name, "Ada's Organisation")
	}
}

func TestSignupHashesPassword(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)

	in := validSignup()
	_, u, err := svc.Signup(context.Background(), in)
	if err != nil {
		t.Fatalf("Signup() error: %v", err)
	}

	if u.PasswordHash == in.Password {
		t.Fatal("password stored in plaintext")
	}
	if !strings.HasPrefix(u.PasswordHash, "$2") {
		t.Errorf("expected bcrypt hash, got %q", u.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		t.Errorf("hash does not verify against original password: %v", err)
	}
}

func TestSignupValidationFailureCreatesNothing(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)

	in := validSignup()
	in.Email = "not-an-email"
	in.Password = "weak"

	_, _, err := svc.Signup(context.Background(), in)
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) || len(appErr.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %v", err)
	}
	if len(store.users) != 0 {
		t.Error("no user should be created on validation failure")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)

	if _, _, err := svc.Signup(context.Background(), validSignup()); err != nil {
		t.Fatalf("first Signup() error: %v", err)
	}

	in := validSignup()
	in.Phone = "+15551234567"
	_, _, err := svc.Signup(context.Background(), in)
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "email already exists" {
		t.Errorf("message = %q", err.Error())
	}
	if len(store.users) != 1 {
		t.Errorf("expected 1 user, got %d", len(store.users))
	}
}

func TestSignupDuplicatePhone(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)

	if _, _, err := svc.Signup(context.Background(), validSignup()); err != nil {
		t.Fatalf("first Signup() error: %v", err)
	}

	in := validSignup()
	in.Email = "other@example.com"
	_, _, err := svc.Signup(context.Background(), in)
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "phone number already in use" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestLogin(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)

	in := validSignup()
	if _, _, err := svc.Signup(context.Background(), in); err != nil {
		t.Fatalf("Signup() error: %v", err)
	}

	token, u, err := svc.Login(context.Background(), in.Email, in.Password)
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if u.Email != in.Email {
		t.Errorf("logged in as %q, want %q", u.Email, in.Email)
	}
	if token == "" {
		t.Fatal("expected session token")
	}
}

// Every credential-path failure must produce the same error, so the
// response cannot be used to probe which accounts exist.
func TestLoginFailureParity(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)

	in := validSignup()
	if _, _, err := svc.Signup(context.Background(), in); err != nil {
		t.Fatalf("Signup() error: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", in.Password},
		{"wrong password", in.Email, "Wrong-pass1"},
		{"missing email", "", in.Password},
		{"missing password", in.Email, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tt.email, tt.password)
			if apperror.KindOf(err) != apperror.KindAuthentication {
				t.Fatalf("expected authentication error, got %v", err)
			}
			if err.Error() != "authentication failed" {
				t.Errorf("message = %q, want %q", err.Error(), "authentication failed")
			}
		})
	}
}

func TestResolveTokenInvalid(t *testing.T) {
	svc := newTestService(newFakeUserStore())

	_, err := svc.ResolveToken(context.Background(), "garbage")
	if apperror.KindOf(err) != apperror.KindAuthentication {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestResolveTokenDeletedUser(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)

	token, u, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("Signup() error: %v", err)
	}

	delete(store.users, u.UserID)

	_, err = svc.ResolveToken(context.Background(), token)
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestDefaultOrgName(t *testing.T) {
	if got := DefaultOrgName("John"); got != "John's Organisation" {
		t.Errorf("DefaultOrgName() = %q", got)
	}
}
