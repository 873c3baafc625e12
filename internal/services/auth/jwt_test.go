package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ivankudzin/matchcore/internal/domain/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager("secret", time.Minute)
	m.now = func() time.Time { return now }

	token, expiresAt, err := m.GenerateAccessToken("ext-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected expiry: got %s want %s", expiresAt, now.Add(time.Minute))
	}

	claims, err := m.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ExternalID != "ext-1" {
		t.Fatalf("unexpected subject: got %s want %s", claims.ExternalID, "ext-1")
	}

	now = now.Add(2 * time.Minute)
	if _, err := m.ParseAccessToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expired token: unexpected error %v", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	issuer := NewJWTManager("other", time.Minute)
	token, _, err := issuer.GenerateAccessToken("ext-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTManager("secret", time.Minute).ParseAccessToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unexpected error: got %v want %v", err, ErrUnauthorized)
	}
	if _, err := NewJWTManager("secret", time.Minute).ParseAccessToken(""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("empty token: unexpected error %v", err)
	}
}

func TestIdentityContext(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatalf("identity found in empty context")
	}
	ctx := WithIdentity(context.Background(), Identity{ExternalID: "ext-1", Profile: model.Profile{ProfileID: "p1"}})
	identity, ok := IdentityFromContext(ctx)
	if !ok || !identity.Registered() || identity.ExternalID != "ext-1" {
		t.Fatalf("unexpected identity: %+v ok=%v", identity, ok)
	}
	if identity.IsAdmin() {
		t.Fatalf("plain profile reported as admin")
	}
	if (Identity{Profile: model.Profile{Admin: true}}).IsAdmin() {
		t.Fatalf("unregistered identity reported as admin")
	}
}

func TestParseChecksIssuerAndLeeway(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	provider := NewJWTManager("secret", time.Minute, WithIssuer("accounts"))
	provider.now = func() time.Time { return now }
	token, _, err := provider.GenerateAccessToken("ext-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	strict := NewJWTManager("secret", time.Minute, WithIssuer("someone-else"), WithLeeway(0))
	strict.now = provider.now
	if _, err := strict.ParseAccessToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("foreign issuer: unexpected error %v", err)
	}

	skewed := NewJWTManager("secret", time.Minute, WithIssuer("accounts"), WithLeeway(30*time.Second))
	skewed.now = func() time.Time { return now.Add(time.Minute + 10*time.Second) }
	if _, err := skewed.ParseAccessToken(token); err != nil {
		t.Fatalf("token within leeway rejected: %v", err)
	}
}
