package apiapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/app/engine"
	"github.com/ivankudzin/matchcore/internal/config"
	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/repo/memory"
	authsvc "github.com/ivankudzin/matchcore/internal/services/auth"
)

type resolverStub struct {
	profiles map[string]model.Profile
	err      error
	touched  []string
}

func (s *resolverStub) Current(_ context.Context, externalID string) (model.Profile, error) {
	if s.err != nil {
		return model.Profile{}, s.err
	}
	p, ok := s.profiles[externalID]
	if !ok {
		return model.Profile{}, errs.NotFound("profile of %s", externalID)
	}
	return p, nil
}

func (s *resolverStub) Touch(_ context.Context, profileID string) (bool, error) {
	s.touched = append(s.touched, profileID)
	return true, nil
}

func issue(t *testing.T, jwt *authsvc.JWTManager, externalID string) string {
	t.Helper()
	token, _, err := jwt.GenerateAccessToken(externalID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func serveAuth(mw func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, authsvc.Identity) {
	var seen authsvc.Identity
	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = authsvc.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)
	return rr, seen
}

func TestAuthMiddlewareResolvesProfile(t *testing.T) {
	jwt := authsvc.NewJWTManager("secret", time.Minute)
	resolver := &resolverStub{profiles: map[string]model.Profile{"ext-1": {ProfileID: "p1", ExternalID: "ext-1"}}}
	mw := AuthMiddleware(jwt, resolver, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/profiles/me", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, jwt, "ext-1"))
	rr, identity := serveAuth(mw, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
	if !identity.Registered() || identity.Profile.ProfileID != "p1" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if len(resolver.touched) != 1 || resolver.touched[0] != "p1" {
		t.Fatalf("unexpected activity writes: %v", resolver.touched)
	}
}

func TestAuthMiddlewarePassesUnregisteredAccounts(t *testing.T) {
	jwt := authsvc.NewJWTManager("secret", time.Minute)
	resolver := &resolverStub{profiles: map[string]model.Profile{}}
	mw := AuthMiddleware(jwt, resolver, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/profiles", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, jwt, "ext-new"))
	rr, identity := serveAuth(mw, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
	if identity.Registered() || identity.ExternalID != "ext-new" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if len(resolver.touched) != 0 {
		t.Fatalf("activity must not be written for unregistered accounts")
	}
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	jwt := authsvc.NewJWTManager("secret", time.Minute)
	other := authsvc.NewJWTManager("other-secret", time.Minute)
	mw := AuthMiddleware(jwt, &resolverStub{}, zap.NewNop())

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Basic abc",
		"foreign key":  "Bearer " + issue(t, other, "ext-1"),
	} {
		req := httptest.NewRequest(http.MethodGet, "/v1/profiles/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr, _ := serveAuth(mw, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: unexpected status: got %d want %d", name, rr.Code, http.StatusUnauthorized)
		}
	}
}

func TestAuthMiddlewareReportsStoreOutage(t *testing.T) {
	jwt := authsvc.NewJWTManager("secret", time.Minute)
	mw := AuthMiddleware(jwt, &resolverStub{err: errs.Store("find", errors.New("no reachable servers"))}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/profiles/me", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, jwt, "ext-1"))
	rr, _ := serveAuth(mw, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		name     string
		identity *authsvc.Identity
		want     int
	}{
		{name: "anonymous", want: http.StatusUnauthorized},
		{name: "unregistered", identity: &authsvc.Identity{ExternalID: "ext"}, want: http.StatusForbidden},
		{name: "member", identity: &authsvc.Identity{ExternalID: "ext", Profile: model.Profile{ProfileID: "p"}}, want: http.StatusForbidden},
		{name: "admin", identity: &authsvc.Identity{ExternalID: "ext", Profile: model.Profile{ProfileID: "p", Admin: true}}, want: http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/profiles/x/complaints", nil)
		if tc.identity != nil {
			req = req.WithContext(authsvc.WithIdentity(req.Context(), *tc.identity))
		}
		rr := httptest.NewRecorder()
		RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("%s: unexpected status: got %d want %d", tc.name, rr.Code, tc.want)
		}
	}
}

func TestRoutesRegisterAndReadBack(t *testing.T) {
	jwt := authsvc.NewJWTManager("secret", time.Minute)
	e := engine.New(
		memory.NewCollection[model.Profile]("profiles", model.FieldProfileID, model.FieldExternalID),
		memory.NewCollection[model.Group]("groups", model.FieldGroupID),
		config.Default().Engine,
		nil,
	)
	r := chi.NewRouter()
	ApplyMiddlewares(r, zap.NewNop())
	RegisterRoutes(r, Dependencies{Engine: e, Tokens: jwt, Logger: zap.NewNop()})
	token := issue(t, jwt, "ext-1")

	body, err := json.Marshal(map[string]any{
		"name":    "Ada",
		"region":  "eu",
		"gender":  "female",
		"seeking": []string{"male"},
	})
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/profiles", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected register status: got %d want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/profiles/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	var me model.Profile
	if err := json.Unmarshal(rr.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rr.Code != http.StatusOK || me.Name != "Ada" || me.ExternalID != "ext-1" {
		t.Fatalf("unexpected me: %d %+v", rr.Code, me)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/profiles/"+me.ProfileID+"/complaints", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected admin status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestExtractBearerToken(t *testing.T) {
	if got, ok := extractBearerToken("  bearer abc.def "); !ok || got != "abc.def" {
		t.Fatalf("unexpected token: %q %v", got, ok)
	}
	if _, ok := extractBearerToken("Bearer "); ok {
		t.Fatalf("empty token must be rejected")
	}
}
