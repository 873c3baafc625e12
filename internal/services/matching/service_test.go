package matching

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/repo/memory"
)

var testBase = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, profiles ...model.Profile) *Service {
	t.Helper()
	coll := memory.NewCollection[model.Profile]("profiles", model.FieldProfileID)
	for i, p := range profiles {
		if p.CreatedOn.IsZero() {
			p.CreatedOn = testBase.Add(time.Duration(i) * time.Minute)
		}
		p.EnsureLedgers()
		if err := coll.InsertOne(context.Background(), p); err != nil {
			t.Fatalf("insert %s: %v", p.ProfileID, err)
		}
	}
	return NewService(coll, Config{
		Regions:       map[string]model.Bounds{"eu": euBounds},
		DefaultBounds: euBounds,
		MaxBatchIDs:   3,
	})
}

func woman(id string, seeking ...enums.Gender) model.Profile {
	return model.Profile{ProfileID: id, Name: "W " + id, Age: 30, Region: "eu", Gender: enums.GenderFemale, Seeking: seeking}
}

func man(id string, seeking ...enums.Gender) model.Profile {
	return model.Profile{ProfileID: id, Name: "M " + id, Age: 30, Region: "eu", Gender: enums.GenderMale, Seeking: seeking}
}

// firstPage addresses the window starting at offset 0.
var firstPage = model.ParameterFilter{PageIndex: 0, PageSize: 50}

func TestLatestAppliesMutualVisibility(t *testing.T) {
	requester := man("me", enums.GenderFemale)
	admin := woman("admin", enums.GenderMale)
	admin.Admin = true
	abroad := woman("abroad", enums.GenderMale)
	abroad.Region = "us"

	svc := newTestService(t,
		requester,
		woman("match", enums.GenderMale),
		woman("not-seeking-men", enums.GenderFemale),
		man("wrong-gender", enums.GenderMale),
		admin,
		abroad,
	)

	res, err := svc.Latest(context.Background(), requester, firstPage)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if res.Total != 1 {
		t.Fatalf("unexpected total: got %d want 1", res.Total)
	}
}

func TestEmptySearchMatchesBaseline(t *testing.T) {
	requester := man("me", enums.GenderFemale)
	profiles := []model.Profile{requester}
	for i := 0; i < 7; i++ {
		profiles = append(profiles, woman(fmt.Sprintf("w%d", i), enums.GenderMale))
	}
	profiles = append(profiles, woman("x", enums.GenderFemale))
	svc := newTestService(t, profiles...)
	ctx := context.Background()

	latest, err := svc.Latest(ctx, requester, firstPage)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	search, err := svc.Search(ctx, requester, model.ProfileFilter{}, firstPage)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if latest.Total != 7 || search.Total != latest.Total {
		t.Fatalf("empty filter must accept the baseline set: latest=%d search=%d", latest.Total, search.Total)
	}
}

func TestPageWindowSkipsOnePagePerIndex(t *testing.T) {
	requester := man("me", enums.GenderFemale)
	profiles := []model.Profile{requester}
	for i := 0; i < 5; i++ {
		profiles = append(profiles, woman(fmt.Sprintf("w%d", i), enums.GenderMale))
	}
	svc := newTestService(t, profiles...)

	res, err := svc.Latest(context.Background(), requester, model.ParameterFilter{PageIndex: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if res.Total != 5 {
		t.Fatalf("unexpected total: %d", res.Total)
	}
	if len(res.Items) != 2 || res.Items[0].ProfileID != "w2" || res.Items[1].ProfileID != "w1" {
		t.Fatalf("unexpected window: %+v", ids(res.Items))
	}
}

func TestSearchRejectsMalformedRange(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Search(context.Background(), man("me"), model.ProfileFilter{Age: model.IntRange{Min: 40, Max: 30}}, firstPage)
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestSearchFiltersByAgeInsideBounds(t *testing.T) {
	requester := man("me", enums.GenderFemale)
	young := woman("young", enums.GenderMale)
	young.Age = 22
	old := woman("old", enums.GenderMale)
	old.Age = 50
	svc := newTestService(t, requester, young, old)

	res, err := svc.Search(context.Background(), requester, model.ProfileFilter{Age: model.IntRange{Min: 18, Max: 30}}, firstPage)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Total != 1 || res.Items[0].ProfileID != "young" {
		t.Fatalf("unexpected result: total=%d items=%v", res.Total, ids(res.Items))
	}
}

func TestByIDsValidatesBatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.ByIDs(ctx, man("me"), nil, firstPage); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for empty ids, got %v", err)
	}
	if _, err := svc.ByIDs(ctx, man("me"), []string{"a", "b", "c", "d"}, firstPage); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for oversized batch, got %v", err)
	}
}

func TestByIDsDropsReciprocityButKeepsExclusions(t *testing.T) {
	requester := man("me", enums.GenderFemale)
	admin := man("admin")
	admin.Admin = true
	svc := newTestService(t, requester, man("other"), admin)

	res, err := svc.ByIDs(context.Background(), requester, []string{"me", "other", "admin"}, firstPage)
	if err != nil {
		t.Fatalf("by ids: %v", err)
	}
	if res.Total != 1 || res.Items[0].ProfileID != "other" {
		t.Fatalf("unexpected result: total=%d items=%v", res.Total, ids(res.Items))
	}
}

func TestBookmarkedWithEmptyLedgerIsEmptyPage(t *testing.T) {
	requester := man("me")
	requester.EnsureLedgers()
	svc := newTestService(t, requester, man("other"))

	res, err := svc.Bookmarked(context.Background(), requester, firstPage)
	if err != nil {
		t.Fatalf("bookmarked: %v", err)
	}
	if res.Total != 0 || len(res.Items) != 0 || res.Items == nil {
		t.Fatalf("expected empty non-nil page, got %+v", res)
	}
}

func TestBookmarkedByExcludesBlocked(t *testing.T) {
	requester := man("me")
	requester.Bookmarks = []model.Bookmark{
		{ProfileID: "fan", IsBookmarked: true},
		{ProfileID: "blocked-fan", IsBookmarked: true, Blocked: true},
		{ProfileID: "mine", IsBookmarked: false},
	}
	svc := newTestService(t, requester, man("fan"), man("blocked-fan"), man("mine"))
	ctx := context.Background()

	by, err := svc.BookmarkedBy(ctx, requester, firstPage)
	if err != nil {
		t.Fatalf("bookmarked by: %v", err)
	}
	if by.Total != 1 || by.Items[0].ProfileID != "fan" {
		t.Fatalf("unexpected bookmarked-by: %v", ids(by.Items))
	}

	mine, err := svc.Bookmarked(ctx, requester, firstPage)
	if err != nil {
		t.Fatalf("bookmarked: %v", err)
	}
	if mine.Total != 1 || mine.Items[0].ProfileID != "mine" {
		t.Fatalf("unexpected bookmarked: %v", ids(mine.Items))
	}
}

func TestProjectionDependsOnPrivilege(t *testing.T) {
	requester := man("me")
	target := woman("her", enums.GenderMale)
	target.ExternalID = "ext-her"
	svc := newTestService(t, requester, target)
	ctx := context.Background()

	res, err := svc.ByIDs(ctx, requester, []string{"her"}, firstPage)
	if err != nil {
		t.Fatalf("by ids: %v", err)
	}
	got := res.Items[0]
	if got.Gender != "" || got.ExternalID != "" || len(got.Seeking) != 0 {
		t.Fatalf("public projection leaked fields: %+v", got)
	}

	requester.Admin = true
	res, err = svc.ByIDs(ctx, requester, []string{"her"}, firstPage)
	if err != nil {
		t.Fatalf("by ids as admin: %v", err)
	}
	got = res.Items[0]
	if got.Gender != enums.GenderFemale || got.ExternalID != "" {
		t.Fatalf("unexpected admin projection: %+v", got)
	}
}

func TestByNameOrdersByName(t *testing.T) {
	requester := man("me")
	a := woman("a")
	a.Name = "Anna"
	b := woman("b")
	b.Name = "Annabel"
	c := woman("c")
	c.Name = "Joanna"
	svc := newTestService(t, requester, c, b, a)

	res, err := svc.ByName(context.Background(), requester, "ann", model.ParameterFilter{OrderBy: enums.OrderByName, PageSize: 1})
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if res.Total != 3 || res.Items[0].Name != "Anna" {
		t.Fatalf("unexpected result: total=%d items=%v", res.Total, ids(res.Items))
	}
}

func ids(items []model.Profile) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ProfileID)
	}
	return out
}
