package identity

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 72*time.Hour)

	token, err := issuer.Mint("user-123")
	if err != nil {
		t.Fatalf("Mint() error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want user-123", userID)
	}
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	minted := time.Now()
	issuer.now = func() time.Time { return minted }

	token, err := issuer.Mint("user-123")
	if err != nil {
		t.Fatalf("Mint() error: %v", err)
	}

	// Still valid just before the deadline.
	issuer.now = func() time.Time { return minted.Add(59 * time.Minute) }
	if _, err := issuer.Verify(token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	// Rejected once the lifetime has elapsed.
	issuer.now = func() time.Time { return minted.Add(2 * time.Hour) }
	if _, err := issuer.Verify(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	minter := NewTokenIssuer("secret-a", time.Hour)
	verifier := NewTokenIssuer("secret-b", time.Hour)

	token, err := minter.Mint("user-123")
	if err != nil {
		t.Fatalf("Mint() error: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}

func TestTokenGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := issuer.Verify(token); err == nil {
			t.Errorf("expected rejection for %q", token)
		}
	}
}

func TestTokenBindsSingleUser(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	tokenA, _ := issuer.Mint("user-a")
	tokenB, _ := issuer.Mint("user-b")

	gotA, err := issuer.Verify(tokenA)
	if err != nil {
		t.Fatalf("Verify(tokenA) error: %v", err)
	}
	gotB, err := issuer.Verify(tokenB)
	if err != nil {
		t.Fatalf("Verify(tokenB) error: %v", err)
	}
	if gotA != "user-a" || gotB != "user-b" {
		t.Errorf("got %q/%q, want user-a/user-b", gotA, gotB)
	}
}
