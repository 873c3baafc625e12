package moderation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
	"github.com/ivankudzin/matchcore/internal/repo/docstore"
	"github.com/ivankudzin/matchcore/internal/repo/memory"
)

type memoryAudit struct {
	events []model.ComplaintEvent
	fail   error
}

func (a *memoryAudit) Record(_ context.Context, ev model.ComplaintEvent) error {
	if a.fail != nil {
		return a.fail
	}
	a.events = append(a.events, ev)
	return nil
}

func (a *memoryAudit) History(_ context.Context, subjectID string, _ int) ([]model.ComplaintEvent, error) {
	out := make([]model.ComplaintEvent, 0)
	for _, ev := range a.events {
		if ev.SubjectID == subjectID {
			out = append(out, ev)
		}
	}
	return out, nil
}

type countingObserver struct {
	filed   int
	blocked int
}

func (o *countingObserver) ComplaintFiled(enums.ComplaintContext, bool) { o.filed++ }
func (o *countingObserver) MemberBlocked()                              { o.blocked++ }

type fixture struct {
	svc      *Service
	profiles *memory.Collection[model.Profile]
	groups   *memory.Collection[model.Group]
	audit    *memoryAudit
	observer *countingObserver
	now      time.Time
}

func newFixture(t *testing.T, memberCount int) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		profiles: memory.NewCollection[model.Profile]("profiles", model.FieldProfileID),
		groups:   memory.NewCollection[model.Group]("groups", model.FieldGroupID),
		audit:    &memoryAudit{},
		observer: &countingObserver{},
		now:      time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}

	members := make([]model.Member, 0, memberCount)
	for i := 0; i < memberCount; i++ {
		id := fmt.Sprintf("m%d", i)
		p := model.Profile{ProfileID: id, Name: id}
		p.EnsureLedgers()
		if err := f.profiles.InsertOne(ctx, p); err != nil {
			t.Fatalf("insert profile: %v", err)
		}
		members = append(members, model.Member{ProfileID: id, Name: id, Complains: map[string]time.Time{}})
	}
	if err := f.groups.InsertOne(ctx, model.Group{GroupID: "g1", Name: "group", OwnerID: "m0", Members: members}); err != nil {
		t.Fatalf("insert group: %v", err)
	}

	f.svc = NewService(f.profiles, f.groups, Config{
		ProfileWindow: 30 * 24 * time.Hour,
		GroupWindow:   7 * 24 * time.Hour,
		BlockRatio:    0.5,
	}, nil)
	f.svc.AttachAudit(f.audit)
	f.svc.AttachObserver(f.observer)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) member(t *testing.T, id string) model.Member {
	t.Helper()
	g, err := f.groups.FindOne(context.Background(), query.Eq(model.FieldGroupID, "g1"))
	if err != nil {
		t.Fatalf("load group: %v", err)
	}
	return g.Members[g.MemberIndex(id)]
}

func TestGroupMemberBlockedOnThresholdComplaint(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		out, err := f.svc.GroupMemberComplaint(ctx, model.Profile{ProfileID: fmt.Sprintf("m%d", i)}, "g1", "m0")
		if err != nil {
			t.Fatalf("complaint #%d: %v", i, err)
		}
		if i < 5 && out.Blocked {
			t.Fatalf("blocked too early on complaint #%d", i)
		}
		if i == 5 && !out.Blocked {
			t.Fatalf("expected block on the 5th distinct complaint")
		}
	}
	if !f.member(t, "m0").Blocked {
		t.Fatalf("block not persisted")
	}

	out, err := f.svc.GroupMemberComplaint(ctx, model.Profile{ProfileID: "m3"}, "g1", "m0")
	if err != nil {
		t.Fatalf("refresh complaint: %v", err)
	}
	if out.Inserted || out.Active != 5 {
		t.Fatalf("re-filing must refresh, got %+v", out)
	}
	if f.observer.blocked != 1 {
		t.Fatalf("unexpected block count: %d", f.observer.blocked)
	}
	if len(f.audit.events) != 6 || !f.audit.events[4].Blocked {
		t.Fatalf("unexpected audit trail: %+v", f.audit.events)
	}
}

func TestExpiredGroupComplaintsDoNotCount(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	if _, err := f.svc.GroupMemberComplaint(ctx, model.Profile{ProfileID: "m1"}, "g1", "m0"); err != nil {
		t.Fatalf("first complaint: %v", err)
	}
	f.now = f.now.Add(8 * 24 * time.Hour)

	out, err := f.svc.GroupMemberComplaint(ctx, model.Profile{ProfileID: "m2"}, "g1", "m0")
	if err != nil {
		t.Fatalf("second complaint: %v", err)
	}
	if out.Active != 1 || out.Expired != 1 {
		t.Fatalf("stale complaint must expire: %+v", out)
	}
	if out.Blocked {
		t.Fatalf("1 of 4 must not block")
	}
	if _, ok := f.member(t, "m0").Complains["m1"]; ok {
		t.Fatalf("expired complaint still stored")
	}
}

func TestGroupComplaintRequiresMembership(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	_, err := f.svc.GroupMemberComplaint(ctx, model.Profile{ProfileID: "outsider"}, "g1", "m0")
	if !errors.Is(err, errs.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failed, got %v", err)
	}
	_, err = f.svc.GroupMemberComplaint(ctx, model.Profile{ProfileID: "m1"}, "g1", "ghost")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = f.svc.GroupMemberComplaint(ctx, model.Profile{ProfileID: "m1"}, "missing", "m0")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found for missing group, got %v", err)
	}
}

func TestComplaintRejectsSelfAndAdmin(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	if _, err := f.svc.ProfileComplaint(ctx, model.Profile{ProfileID: "m1"}, "m1"); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := f.svc.ProfileComplaint(ctx, model.Profile{ProfileID: "boss", Admin: true}, "m1"); !errors.Is(err, errs.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failed, got %v", err)
	}
}

func TestProfileComplaintRecordsWithoutBlocking(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	out, err := f.svc.ProfileComplaint(ctx, model.Profile{ProfileID: "m1"}, "m0")
	if err != nil {
		t.Fatalf("profile complaint: %v", err)
	}
	if !out.Inserted || out.Blocked || out.Active != 1 {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	active, err := f.svc.ActiveComplaints(ctx, model.Profile{ProfileID: "boss", Admin: true}, "m0")
	if err != nil {
		t.Fatalf("active complaints: %v", err)
	}
	if _, ok := active["m1"]; !ok || len(active) != 1 {
		t.Fatalf("unexpected active complaints: %v", active)
	}
	if _, err := f.svc.ActiveComplaints(ctx, model.Profile{ProfileID: "m1"}, "m0"); !errors.Is(err, errs.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failed for non-admin, got %v", err)
	}
}

func TestAuditFailureDoesNotFailComplaint(t *testing.T) {
	f := newFixture(t, 2)
	f.audit.fail = errors.New("postgres down")

	if _, err := f.svc.ProfileComplaint(context.Background(), model.Profile{ProfileID: "m1"}, "m0"); err != nil {
		t.Fatalf("complaint must succeed without audit: %v", err)
	}
}

func TestUnblockMemberAdminOnly(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	out, err := f.svc.GroupMemberComplaint(ctx, model.Profile{ProfileID: "m1"}, "g1", "m0")
	if err != nil || !out.Blocked {
		t.Fatalf("expected 1 of 2 to block: %+v, %v", out, err)
	}

	if _, err := f.svc.UnblockMember(ctx, model.Profile{ProfileID: "m1"}, "g1", "m0"); !errors.Is(err, errs.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failed, got %v", err)
	}
	changed, err := f.svc.UnblockMember(ctx, model.Profile{ProfileID: "boss", Admin: true}, "g1", "m0")
	if err != nil || !changed {
		t.Fatalf("unblock: changed=%v err=%v", changed, err)
	}
	m := f.member(t, "m0")
	if m.Blocked || len(m.Complains) != 0 {
		t.Fatalf("unexpected member after unblock: %+v", m)
	}
}

func TestStoreFailureSurfaces(t *testing.T) {
	f := newFixture(t, 2)
	f.groups.SetFailure(context.DeadlineExceeded)

	_, err := f.svc.GroupMemberComplaint(context.Background(), model.Profile{ProfileID: "m1"}, "g1", "m0")
	if !errors.Is(err, errs.ErrStoreUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected store unavailable with deadline cause, got %v", err)
	}
}

// interleaved runs hook ahead of the next UpdateOne, standing in for another
// complaint landing between the service's read and its write.
type interleaved[T any] struct {
	docstore.Collection[T]
	hook func()
}

func (c *interleaved[T]) UpdateOne(ctx context.Context, pred query.Predicate, update query.Update) (bool, error) {
	if hook := c.hook; hook != nil {
		c.hook = nil
		hook()
	}
	return c.Collection.UpdateOne(ctx, pred, update)
}

func TestConcurrentGroupComplaintsAreAllKept(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	groups := &interleaved[model.Group]{Collection: f.groups}
	f.svc.groups = groups

	groups.hook = func() {
		if _, err := f.svc.GroupMemberComplaint(ctx, model.Profile{ProfileID: "m2"}, "g1", "m0"); err != nil {
			t.Errorf("interleaved complaint on m0: %v", err)
		}
		if _, err := f.svc.GroupMemberComplaint(ctx, model.Profile{ProfileID: "m2"}, "g1", "m5"); err != nil {
			t.Errorf("interleaved complaint on m5: %v", err)
		}
	}
	if _, err := f.svc.GroupMemberComplaint(ctx, model.Profile{ProfileID: "m1"}, "g1", "m0"); err != nil {
		t.Fatalf("complaint: %v", err)
	}

	m0 := f.member(t, "m0")
	for _, id := range []string{"m1", "m2"} {
		if _, ok := m0.Complains[id]; !ok {
			t.Fatalf("complaint by %s on m0 lost: %v", id, m0.Complains)
		}
	}
	if _, ok := f.member(t, "m5").Complains["m2"]; !ok {
		t.Fatalf("complaint on m5 lost by the write for m0")
	}
}

func TestConcurrentProfileComplaintsAreAllKept(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	profiles := &interleaved[model.Profile]{Collection: f.profiles}
	f.svc.profiles = profiles

	profiles.hook = func() {
		if _, err := f.svc.ProfileComplaint(ctx, model.Profile{ProfileID: "m2"}, "m0"); err != nil {
			t.Errorf("interleaved complaint: %v", err)
		}
	}
	if _, err := f.svc.ProfileComplaint(ctx, model.Profile{ProfileID: "m1"}, "m0"); err != nil {
		t.Fatalf("complaint: %v", err)
	}

	active, err := f.svc.ActiveComplaints(ctx, model.Profile{ProfileID: "boss", Admin: true}, "m0")
	if err != nil {
		t.Fatalf("active complaints: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("both complaints must be stored: %v", active)
	}
}

func TestRefilingAfterExpiryKeepsComplaint(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	complainant := model.Profile{ProfileID: "m1"}

	if _, err := f.svc.ProfileComplaint(ctx, complainant, "m0"); err != nil {
		t.Fatalf("first complaint: %v", err)
	}
	if _, err := f.svc.GroupMemberComplaint(ctx, complainant, "g1", "m0"); err != nil {
		t.Fatalf("first group complaint: %v", err)
	}
	f.now = f.now.Add(31 * 24 * time.Hour)

	out, err := f.svc.ProfileComplaint(ctx, complainant, "m0")
	if err != nil || !out.Inserted || out.Active != 1 {
		t.Fatalf("refile profile complaint: out=%+v err=%v", out, err)
	}
	active, err := f.svc.ActiveComplaints(ctx, model.Profile{ProfileID: "boss", Admin: true}, "m0")
	if err != nil {
		t.Fatalf("active complaints: %v", err)
	}
	if !active["m1"].Equal(f.now) {
		t.Fatalf("refiled complaint must carry the new timestamp: %v", active)
	}

	if _, err := f.svc.GroupMemberComplaint(ctx, complainant, "g1", "m0"); err != nil {
		t.Fatalf("refile group complaint: %v", err)
	}
	if ts, ok := f.member(t, "m0").Complains["m1"]; !ok || !ts.Equal(f.now) {
		t.Fatalf("refiled group complaint missing: %v", f.member(t, "m0").Complains)
	}
}
