package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/v1/profiles/{profileID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/profiles/{profileID}", "204"))
	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/profiles/"+id, http.NoBody)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/profiles/{profileID}", "204"))
	if after-before != 2 {
		t.Fatalf("unexpected request count delta: got %v want %v", after-before, 2)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Fatalf("expected duration observations")
	}
}

func TestNormalizePath(t *testing.T) {
	if got := normalizePath(""); got != "unknown" {
		t.Fatalf("unexpected path: got %q want %q", got, "unknown")
	}
	if got := normalizePath("/health"); got != "/health" {
		t.Fatalf("unexpected path: got %q want %q", got, "/health")
	}
}

func TestEngineCounters(t *testing.T) {
	var engine Engine

	inserted := ComplaintsTotal.WithLabelValues(string(enums.ComplaintContextGroup), "inserted")
	refreshed := ComplaintsTotal.WithLabelValues(string(enums.ComplaintContextGroup), "refreshed")
	beforeInserted, beforeRefreshed := testutil.ToFloat64(inserted), testutil.ToFloat64(refreshed)
	beforeBlocks := testutil.ToFloat64(MemberBlocksTotal)

	engine.ComplaintFiled(enums.ComplaintContextGroup, true)
	engine.ComplaintFiled(enums.ComplaintContextGroup, false)
	engine.MemberBlocked()

	if testutil.ToFloat64(inserted)-beforeInserted != 1 || testutil.ToFloat64(refreshed)-beforeRefreshed != 1 {
		t.Fatalf("complaint counters did not move")
	}
	if testutil.ToFloat64(MemberBlocksTotal)-beforeBlocks != 1 {
		t.Fatalf("block counter did not move")
	}

	beforeVisited := testutil.ToFloat64(SweepRemovedTotal.WithLabelValues("visited"))
	beforeFailed := testutil.ToFloat64(SweepOwnersTotal.WithLabelValues("failed"))
	engine.OwnerSwept(map[string]int{"visited": 3, "likes": 0}, true)
	if got := testutil.ToFloat64(SweepRemovedTotal.WithLabelValues("visited")) - beforeVisited; got != 3 {
		t.Fatalf("unexpected removed delta: got %v want %v", got, 3)
	}
	if got := testutil.ToFloat64(SweepOwnersTotal.WithLabelValues("failed")) - beforeFailed; got != 1 {
		t.Fatalf("unexpected failed owners delta: got %v want %v", got, 1)
	}
}
