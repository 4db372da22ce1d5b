package service

import (
	"errors"
	"testing"
	"time"

	"github.com/fotf/subscription-system/internal/core/domain"
)

func testAccount() *domain.Account {
	return &domain.Account{ID: "64f000000000000000000001", Username: "alice", IsAdmin: false}
}

func TestTokenService_IssueVerify_RoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.Issue(testAccount())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "64f000000000000000000001" {
		t.Fatalf("unexpected subject: %s", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Fatalf("unexpected username: %s", claims.Username)
	}
	if claims.IsAdmin {
		t.Fatalf("expected non-admin claims")
	}
}

func TestTokenService_Verify_AdminClaim(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	account := testAccount()
	account.IsAdmin = true
	token, err := svc.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !claims.IsAdmin {
		t.Fatalf("expected admin claim")
	}
}

func TestTokenService_Verify_Expired(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	issued := time.Now().UTC()
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue(testAccount())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Just before expiry the token still verifies.
	svc.now = func() time.Time { return issued.Add(time.Hour - time.Second) }
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("verify before expiry: %v", err)
	}

	// At and after expiry it does not.
	svc.now = func() time.Time { return issued.Add(time.Hour + time.Second) }
	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_Verify_WrongKey(t *testing.T) {
	issuer := NewTokenService("key-one", time.Hour)
	verifier := NewTokenService("key-two", time.Hour)

	token, err := issuer.Issue(testAccount())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestTokenService_Verify_Malformed(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(token); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("token %q: expected ErrTokenMalformed, got %v", token, err)
		}
	}
}

func TestTokenService_DefaultTTL(t *testing.T) {
	svc := NewTokenService("secret", 0)

	issued := time.Now().UTC()
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue(testAccount())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	want := issued.Add(DefaultTokenTTL).Unix()
	if claims.ExpiresAt.Unix() != want {
		t.Fatalf("expected expiry %d, got %d", want, claims.ExpiresAt.Unix())
	}
}
