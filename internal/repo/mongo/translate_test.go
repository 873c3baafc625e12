package mongo

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ivankudzin/matchcore/internal/domain/query"
)

func TestFilterMergesDistinctFields(t *testing.T) {
	got, err := Filter(query.And(
		query.Eq("region", "eu"),
		query.Ne("profileId", "me"),
		query.In("gender", "female", "male"),
	))
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	want := bson.D{
		{Key: "region", Value: bson.D{{Key: "$eq", Value: "eu"}}},
		{Key: "profileId", Value: bson.D{{Key: "$ne", Value: "me"}}},
		{Key: "gender", Value: bson.D{{Key: "$in", Value: bson.A{"female", "male"}}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected filter:\n got %v\nwant %v", got, want)
	}
}

func TestFilterUsesAndForRepeatedField(t *testing.T) {
	got, err := Filter(query.And(query.Gte("age", 20), query.Lte("age", 30)))
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 1 || got[0].Key != "$and" {
		t.Fatalf("expected $and, got %v", got)
	}
	parts, ok := got[0].Value.(bson.A)
	if !ok || len(parts) != 2 {
		t.Fatalf("unexpected $and parts: %v", got[0].Value)
	}
}

func TestFilterContainsIsEscapedCaseInsensitiveRegex(t *testing.T) {
	got, err := Filter(query.Contains("name", "a.b"))
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	re, ok := got[0].Value.(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex, got %T", got[0].Value)
	}
	if re.Pattern != `a\.b` || re.Options != "i" {
		t.Fatalf("unexpected regex: %+v", re)
	}
}

func TestFilterNoElemMatch(t *testing.T) {
	got, err := Filter(query.NoElemMatch("bookmarks", query.Eq("profileId", "x")))
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	want := bson.D{{Key: "bookmarks", Value: bson.D{{Key: "$not", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
		{Key: "profileId", Value: bson.D{{Key: "$eq", Value: "x"}}},
	}}}}}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected filter:\n got %v\nwant %v", got, want)
	}
}

func TestFilterTrueIsEmpty(t *testing.T) {
	got, err := Filter(query.True())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty filter, got %v, %v", got, err)
	}
}

func TestUpdateDocGroupsOperators(t *testing.T) {
	u := query.NewUpdate().
		Set("updatedOn", "t").
		Push("likes", "a", "b").
		Set("name", "n").
		Unset("visited.x").
		Pull("bookmarks", query.Eq("profileId", "y"))

	got, filters, err := UpdateDoc(u)
	if err != nil {
		t.Fatalf("update doc: %v", err)
	}
	if len(filters) != 0 {
		t.Fatalf("unexpected array filters: %v", filters)
	}
	want := bson.D{
		{Key: "$set", Value: bson.D{{Key: "updatedOn", Value: "t"}, {Key: "name", Value: "n"}}},
		{Key: "$push", Value: bson.D{{Key: "likes", Value: bson.D{{Key: "$each", Value: bson.A{"a", "b"}}}}}},
		{Key: "$unset", Value: bson.D{{Key: "visited.x", Value: ""}}},
		{Key: "$pull", Value: bson.D{{Key: "bookmarks", Value: bson.D{{Key: "profileId", Value: bson.D{{Key: "$eq", Value: "y"}}}}}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected update:\n got %v\nwant %v", got, want)
	}
}

func TestUpdateDocElementOpsUseArrayFilters(t *testing.T) {
	member := query.Eq("profileId", "m1")
	u := query.NewUpdate().
		SetEach("members", member, "complains.c1", "now").
		UnsetEach("members", member, "complains.c0").
		SetEach("members", query.And(member, query.Eq("blocked", false)), "blocked", true)

	got, filters, err := UpdateDoc(u)
	if err != nil {
		t.Fatalf("update doc: %v", err)
	}
	want := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "members.$[e0].complains.c1", Value: "now"},
			{Key: "members.$[e2].blocked", Value: true},
		}},
		{Key: "$unset", Value: bson.D{{Key: "members.$[e1].complains.c0", Value: ""}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected update:\n got %v\nwant %v", got, want)
	}

	wantFilters := []any{
		bson.D{{Key: "e0.profileId", Value: bson.D{{Key: "$eq", Value: "m1"}}}},
		bson.D{{Key: "e1.profileId", Value: bson.D{{Key: "$eq", Value: "m1"}}}},
		bson.D{
			{Key: "e2.profileId", Value: bson.D{{Key: "$eq", Value: "m1"}}},
			{Key: "e2.blocked", Value: bson.D{{Key: "$eq", Value: false}}},
		},
	}
	if !reflect.DeepEqual(filters, wantFilters) {
		t.Fatalf("unexpected array filters:\n got %v\nwant %v", filters, wantFilters)
	}
}

func TestUpdateDocRejectsUnconditionalElementOp(t *testing.T) {
	if _, _, err := UpdateDoc(query.NewUpdate().SetEach("members", query.True(), "blocked", true)); err == nil {
		t.Fatalf("expected error for element op without a filter")
	}
}

func TestFacetPipelineShape(t *testing.T) {
	pipeline := facetPipeline(bson.D{}, []query.Sort{query.Desc("createdOn")}, query.Excluding("visited"), 20, 10)
	if len(pipeline) != 2 || pipeline[0][0].Key != "$match" || pipeline[1][0].Key != "$facet" {
		t.Fatalf("unexpected pipeline: %v", pipeline)
	}
	facet := pipeline[1][0].Value.(bson.D)
	items := facet[1].Value.(bson.A)
	stages := make([]string, 0, len(items))
	for _, s := range items {
		stages = append(stages, s.(bson.D)[0].Key)
	}
	want := []string{"$sort", "$skip", "$limit", "$project"}
	if !reflect.DeepEqual(stages, want) {
		t.Fatalf("unexpected item stages: got %v want %v", stages, want)
	}
}
