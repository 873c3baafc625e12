package auth

import (
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	defaultAccessTTL = 15 * time.Minute
	defaultLeeway    = 30 * time.Second
)

// JWTManager verifies HS256 bearer tokens minted by the identity provider.
// The subject claim is the provider's account id.
type JWTManager struct {
	secret    []byte
	issuer    string
	leeway    time.Duration
	accessTTL time.Duration
	now       func() time.Time
}

type Option func(*JWTManager)

// WithIssuer requires the iss claim on parsed tokens and stamps it on
// generated ones.
func WithIssuer(issuer string) Option {
	return func(m *JWTManager) { m.issuer = strings.TrimSpace(issuer) }
}

// WithLeeway tolerates clock skew between the provider and this process.
func WithLeeway(leeway time.Duration) Option {
	return func(m *JWTManager) {
		if leeway >= 0 {
			m.leeway = leeway
		}
	}
}

func NewJWTManager(secret string, accessTTL time.Duration, opts ...Option) *JWTManager {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	m := &JWTManager{
		secret:    []byte(secret),
		leeway:    defaultLeeway,
		accessTTL: accessTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GenerateAccessToken issues a token for an external account. Used by tests
// and local tooling; in production the provider issues tokens.
func (m *JWTManager) GenerateAccessToken(externalID string) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("jwt secret is empty")
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return "", time.Time{}, fmt.Errorf("external id is required")
	}

	issuedAt := m.now().UTC()
	expiresAt := issuedAt.Add(m.accessTTL)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   externalID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAccessToken returns ErrUnauthorized for every rejected token; the
// reason is not exposed to callers.
func (m *JWTManager) ParseAccessToken(raw string) (AccessClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(m.secret) == 0 {
		return AccessClaims{}, ErrUnauthorized
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(m.now),
		jwt.WithLeeway(m.leeway),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(m.issuer))
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, parserOpts...)
	if err != nil || !token.Valid {
		return AccessClaims{}, ErrUnauthorized
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return AccessClaims{}, ErrUnauthorized
	}
	return AccessClaims{ExternalID: subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}
