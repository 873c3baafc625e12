//go:build integration

package apiapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/config"
)

// Run with a reachable MongoDB: MONGO_URI=mongodb://localhost:27017 go test -tags integration ./...
func TestHealthz(t *testing.T) {
	cfg := config.Default()
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.Mongo.URI = uri
	}
	cfg.Mongo.Database = "matchcore_smoke"
	cfg.HTTP.Addr = ":0"

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app, err := New(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	defer func() { _ = app.Shutdown(context.Background()) }()

	ts := httptest.NewServer(app.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	resp, err = http.Get(ts.URL + "/v1/profiles/me")
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status without token: got %d want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}
