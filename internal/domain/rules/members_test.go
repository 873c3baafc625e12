package rules

import (
	"reflect"
	"testing"
	"time"

	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
)

func TestMemberIDsKeepsKnownIDsInRequestOrder(t *testing.T) {
	members := []model.Member{{ProfileID: "a"}, {ProfileID: "b"}, {ProfileID: "c"}}

	got := MemberIDs(members, []string{"c", "missing", "a"})

	if !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Fatalf("unexpected member ids: %v", got)
	}
}

func TestToggleBlockedBuildsComplementaryElementOps(t *testing.T) {
	where := query.In(model.FieldProfileID, "a", "b")

	ops := ToggleBlocked(query.NewUpdate(), model.FieldMembers, where).Ops()

	if len(ops) != 2 {
		t.Fatalf("unexpected op count: got %d want %d", len(ops), 2)
	}
	if ops[0].Value != false || ops[1].Value != true {
		t.Fatalf("unexpected values: %v %v", ops[0].Value, ops[1].Value)
	}
	for _, op := range ops {
		if op.Kind != query.UpdateSetEach || op.Field != model.FieldMembers || op.Path != model.FieldBlocked {
			t.Fatalf("unexpected op: %+v", op)
		}
	}
}

func TestRecordComplaintTouchesOnlyChangedKeys(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	outcome := FileComplaint(map[string]time.Time{
		"old":   now.Add(-48 * time.Hour),
		"fresh": now.Add(-time.Hour),
	}, "c1", now, 24*time.Hour)

	ops := RecordComplaint(query.NewUpdate(), model.FieldMembers, query.Eq(model.FieldProfileID, "m1"), "c1", outcome).Ops()

	if len(ops) != 2 {
		t.Fatalf("unexpected op count: got %d want %d", len(ops), 2)
	}
	if ops[0].Kind != query.UpdateSetEach || ops[0].Path != "complains.c1" || ops[0].Value != now {
		t.Fatalf("unexpected set op: %+v", ops[0])
	}
	if ops[1].Kind != query.UpdateUnsetEach || ops[1].Path != "complains.old" {
		t.Fatalf("unexpected unset op: %+v", ops[1])
	}
}
