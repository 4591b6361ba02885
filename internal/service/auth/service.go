// Package auth issues and verifies the self-contained bearer tokens
// the CRM uses instead of server-side sessions. Tokens are HS256 JWTs
// signed with a single shared secret; validity is recomputed from the
// token itself on every request, so no storage is involved.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultIssuer identifies tokens minted by this service.
	DefaultIssuer = "jagmag-crm"
	// DefaultTTL bounds a login session when no explicit ttl is given.
	DefaultTTL = 12 * time.Hour
)

var (
	ErrNoSecret        = errors.New("signing secret not configured")
	ErrSubjectRequired = errors.New("subject is required")
	ErrMalformedToken  = errors.New("malformed token")
	ErrBadSignature    = errors.New("token signature mismatch")
	ErrBadPayload      = errors.New("invalid token payload")
	ErrExpiredToken    = errors.New("token expired")
)

// Config carries the shared secret and issuance policy. The secret is
// injected here rather than read from the environment per call, so the
// service is testable without mutating process state.
type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// Identity is the trusted content of a verified token.
type Identity struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// claims pins the payload schema: sub, iat, exp and iss are the only
// fields this service reads or writes.
type claims struct {
	jwt.RegisteredClaims
}

// Service signs and verifies bearer tokens. It is stateless and safe
// for concurrent use.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// New builds a token service from the supplied configuration.
func New(cfg Config) *Service {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		secret: []byte(cfg.Secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue mints a signed token for subject, valid for ttl (the
// configured default when ttl <= 0). The result is the standard
// three-segment form header.payload.signature, each segment unpadded
// base64url.
func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSecret
	}
	if subject == "" {
		return "", ErrSubjectRequired
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(s.secret)
}

// Verify checks a token's signature and expiry and returns its
// identity. Exactly one rejection reason is returned per failure; the
// signature is evaluated over the wire bytes before any claim is
// trusted.
func (s *Service) Verify(raw string) (Identity, error) {
	if len(s.secret) == 0 {
		return Identity{}, ErrNoSecret
	}

	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Identity{}, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrExpiredToken
		default:
			return Identity{}, ErrBadPayload
		}
	}
	if c.Subject == "" {
		return Identity{}, ErrBadPayload
	}

	id := Identity{Subject: c.Subject}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}
