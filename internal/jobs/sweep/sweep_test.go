package sweep

import (
	"context"
	"errors"
	"testing"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/services/reconcile"
)

type fakeLister struct {
	ids   []string
	calls []string
}

func (f *fakeLister) IDs(_ context.Context, after string, limit int) ([]string, error) {
	f.calls = append(f.calls, after)
	out := make([]string, 0, limit)
	for _, id := range f.ids {
		if id > after && len(out) < limit {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeCleaner struct {
	cleaned []string
	fail    map[string]error
}

func (f *fakeCleaner) Clean(_ context.Context, ownerID string) (reconcile.Report, error) {
	f.cleaned = append(f.cleaned, ownerID)
	report := reconcile.Report{OwnerID: ownerID, Removed: map[string]int{reconcile.StepVisited: 1}}
	if err := f.fail[ownerID]; err != nil {
		return reconcile.Report{OwnerID: ownerID, Removed: map[string]int{}}, err
	}
	return report, nil
}

type recordingObserver struct {
	failed int
	total  int
}

func (o *recordingObserver) OwnerSwept(_ map[string]int, failed bool) {
	o.total++
	if failed {
		o.failed++
	}
}

func TestRunVisitsEveryProfileInBatches(t *testing.T) {
	lister := &fakeLister{ids: []string{"a", "b", "c", "d", "e"}}
	cleaner := &fakeCleaner{fail: map[string]error{
		"b": errs.NotFound("profile b"),
		"d": errors.New("store down"),
	}}
	observer := &recordingObserver{}

	job := New(lister, cleaner, 2, nil)
	job.AttachObserver(observer)

	stats, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(cleaner.cleaned) != 5 {
		t.Fatalf("unexpected cleaned owners: %v", cleaner.cleaned)
	}
	if stats.Owners != 5 || stats.Failed != 1 || stats.Removed != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if observer.total != 5 || observer.failed != 1 {
		t.Fatalf("unexpected observer calls: %+v", observer)
	}
	if len(lister.calls) != 3 || lister.calls[1] != "b" || lister.calls[2] != "d" {
		t.Fatalf("unexpected paging: %v", lister.calls)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&fakeLister{ids: []string{"a"}}, &fakeCleaner{}, 0, nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error: got %v want %v", err, context.Canceled)
	}
}
