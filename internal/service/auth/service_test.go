package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func newTestService(now time.Time) *Service {
	svc := New(Config{Secret: testSecret})
	svc.now = func() time.Time { return now }
	return svc
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(now)

	token, err := svc.Issue("crm-user", 30*time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	id, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if id.Subject != "crm-user" {
		t.Fatalf("expected subject crm-user, got %q", id.Subject)
	}
	if id.IssuedAt.Unix() != now.Unix() {
		t.Fatalf("expected iat %d, got %d", now.Unix(), id.IssuedAt.Unix())
	}
	if id.ExpiresAt.Unix() != now.Add(30*time.Minute).Unix() {
		t.Fatalf("expected exp %d, got %d", now.Add(30*time.Minute).Unix(), id.ExpiresAt.Unix())
	}
}

func TestIssueWireFormat(t *testing.T) {
	svc := newTestService(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	token, err := svc.Issue("crm-user", 0)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}
	for i, part := range parts {
		if part == "" {
			t.Fatalf("segment %d is empty", i)
		}
		if strings.ContainsAny(part, "=+/") {
			t.Fatalf("segment %d is not unpadded base64url: %q", i, part)
		}
	}

	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("header decode failed: %v", err)
	}
	if string(header) != `{"alg":"HS256","typ":"JWT"}` {
		t.Fatalf("unexpected header: %s", header)
	}
}

func TestIssueDefaultTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(now)

	token, err := svc.Issue("crm-user", 0)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	id, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got := id.ExpiresAt.Sub(id.IssuedAt); got != DefaultTTL {
		t.Fatalf("expected default ttl %v, got %v", DefaultTTL, got)
	}
}

func TestIssueWithoutSecret(t *testing.T) {
	svc := New(Config{})
	if _, err := svc.Issue("crm-user", 0); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("expected ErrNoSecret, got %v", err)
	}
}

func TestIssueEmptySubject(t *testing.T) {
	svc := newTestService(time.Now())
	if _, err := svc.Issue("", 0); !errors.Is(err, ErrSubjectRequired) {
		t.Fatalf("expected ErrSubjectRequired, got %v", err)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	svc := newTestService(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	token, err := svc.Issue("crm-user", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	mid := len(sig) / 2
	if sig[mid] == 'A' {
		sig[mid] = 'B'
	} else {
		sig[mid] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := svc.Verify(tampered); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestService(now)
	verifier := New(Config{Secret: "a-different-secret"})
	verifier.now = func() time.Time { return now }

	token, err := issuer.Issue("crm-user", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	svc := newTestService(time.Now())

	for _, token := range []string{"", "not-a-token", "one.two", "a.b.c.d"} {
		if _, err := svc.Verify(token); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("token %q: expected ErrMalformedToken, got %v", token, err)
		}
	}
}

func TestVerifyExpired(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(base)

	token, err := svc.Issue("crm-user", 1*time.Second)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	svc.now = func() time.Time { return base.Add(2 * time.Second) }
	if _, err := svc.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyMissingExpiry(t *testing.T) {
	svc := newTestService(time.Now())

	// A structurally valid, correctly signed token with no exp claim
	// must still be rejected: validity is recomputed from the payload,
	// so an unbounded payload is untrusted.
	unbounded := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "crm-user"})
	token, err := unbounded.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := svc.Verify(token); !errors.Is(err, ErrBadPayload) {
		t.Fatalf("expected ErrBadPayload, got %v", err)
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(now)

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	token, err := anonymous.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := svc.Verify(token); !errors.Is(err, ErrBadPayload) {
		t.Fatalf("expected ErrBadPayload, got %v", err)
	}
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(now)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "crm-user",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	token, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := svc.Verify(token); err == nil {
		t.Fatal("expected rejection of alg=none token")
	}
}
