package executor

import (
	"errors"
	"reflect"
	"testing"

	common_models "go-compliance/internal/common/models"
	"go-compliance/internal/features/report"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testCatalog() []common_models.FieldDefinition {
	return []common_models.FieldDefinition{
		{ID: "id", SourcePath: "_id"},
		{ID: "status", SourcePath: "status"},
		{ID: "custom_region", SourcePath: "custom_properties.region", IsCustomProperty: true},
		{ID: "assignee_name", SourcePath: "name", JoinPath: "assignee"},
	}
}

func TestConditionQuery(t *testing.T) {
	tests := []struct {
		name string
		cond report.FilterCondition
		want bson.M
	}{
		{
			name: "Equality",
			cond: report.FilterCondition{Field: "status", Operator: report.OpEq, Value: "NEW"},
			want: bson.M{"status": "NEW"},
		},
		{
			name: "Not Equal",
			cond: report.FilterCondition{Field: "status", Operator: report.OpNeq, Value: "CLOSED"},
			want: bson.M{"status": bson.M{"$ne": "CLOSED"}},
		},
		{
			name: "Greater Than",
			cond: report.FilterCondition{Field: "age_days", Operator: report.OpGt, Value: 30.0},
			want: bson.M{"age_days": bson.M{"$gt": 30.0}},
		},
		{
			name: "Contains",
			cond: report.FilterCondition{Field: "title", Operator: report.OpContains, Value: "fraud"},
			want: bson.M{"title": bson.M{"$regex": "fraud", "$options": "i"}},
		},
		{
			name: "Starts With Escapes Meta",
			cond: report.FilterCondition{Field: "title", Operator: report.OpStartsWith, Value: "a.b"},
			want: bson.M{"title": bson.M{"$regex": `^a\.b`, "$options": "i"}},
		},
		{
			name: "Ends With",
			cond: report.FilterCondition{Field: "title", Operator: report.OpEndsWith, Value: "report"},
			want: bson.M{"title": bson.M{"$regex": "report$", "$options": "i"}},
		},
		{
			name: "In List",
			cond: report.FilterCondition{Field: "status", Operator: report.OpIn, Value: []interface{}{"NEW", "OPEN"}},
			want: bson.M{"status": bson.M{"$in": []interface{}{"NEW", "OPEN"}}},
		},
		{
			name: "In Scalar Becomes List",
			cond: report.FilterCondition{Field: "status", Operator: report.OpIn, Value: "NEW"},
			want: bson.M{"status": bson.M{"$in": []interface{}{"NEW"}}},
		},
		{
			name: "Not In",
			cond: report.FilterCondition{Field: "status", Operator: report.OpNotIn, Value: []interface{}{"CLOSED"}},
			want: bson.M{"status": bson.M{"$nin": []interface{}{"CLOSED"}}},
		},
		{
			name: "Is Null",
			cond: report.FilterCondition{Field: "assignee", Operator: report.OpIsNull},
			want: bson.M{"assignee": bson.M{"$in": []interface{}{nil}}},
		},
		{
			name: "Is Not Null",
			cond: report.FilterCondition{Field: "assignee", Operator: report.OpIsNotNull},
			want: bson.M{"assignee": bson.M{"$nin": []interface{}{nil}}},
		},
		{
			name: "Between",
			cond: report.FilterCondition{Field: "score", Operator: report.OpBetween, Value: 1.0, ValueTo: 5.0},
			want: bson.M{"score": bson.M{"$gte": 1.0, "$lte": 5.0}},
		},
		{
			name: "Unknown Operator Falls Back To Equality",
			cond: report.FilterCondition{Field: "status", Operator: "weird", Value: "X"},
			want: bson.M{"status": "X"},
		},
		{
			name: "Empty Field Skipped",
			cond: report.FilterCondition{Operator: report.OpEq, Value: "X"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conditionQuery(tt.cond)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("conditionQuery() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildMatchTenantPredicateIsObjectID(t *testing.T) {
	orgID := primitive.NewObjectID()
	match, err := buildMatch(orgID, nil, nil)
	if err != nil {
		t.Fatalf("buildMatch() error = %v", err)
	}
	// Documents store organization_id as an ObjectID; matching on the hex
	// string would return zero rows for every tenant.
	got, ok := match["organization_id"].(primitive.ObjectID)
	if !ok {
		t.Fatalf("organization_id predicate is %T, want primitive.ObjectID", match["organization_id"])
	}
	if got != orgID {
		t.Errorf("organization_id = %v, want %v", got, orgID)
	}
}

func TestBuildMatchResolvesFieldPaths(t *testing.T) {
	orgID := primitive.NewObjectID()
	paths := fieldPaths(testCatalog())

	match, err := buildMatch(orgID, []report.FilterCondition{
		{Field: "id", Operator: report.OpEq, Value: "abc"},
		{Field: "custom_region", Operator: report.OpEq, Value: "EMEA"},
	}, paths)
	if err != nil {
		t.Fatalf("buildMatch() error = %v", err)
	}
	if _, ok := match["_id"]; !ok {
		t.Errorf("catalog id %q not resolved to _id: %v", "id", match)
	}
	if got := match["custom_properties.region"]; got != "EMEA" {
		t.Errorf("custom property path not resolved: %v", match)
	}
	if _, leaked := match["custom_region"]; leaked {
		t.Errorf("unresolved catalog id used as document path: %v", match)
	}
}

func TestBuildMatchJoinedFieldRejected(t *testing.T) {
	paths := fieldPaths(testCatalog())
	_, err := buildMatch(primitive.NewObjectID(), []report.FilterCondition{
		{Field: "assignee_name", Operator: report.OpEq, Value: "Dana"},
	}, paths)
	if !errors.Is(err, report.ErrValidation) {
		t.Fatalf("buildMatch() error = %v, want ErrValidation", err)
	}
}

func TestBuildMatchFoldsDuplicateFields(t *testing.T) {
	orgID := primitive.NewObjectID()
	match, err := buildMatch(orgID, []report.FilterCondition{
		{Field: "status", Operator: report.OpNeq, Value: "CLOSED"},
		{Field: "status", Operator: report.OpNeq, Value: "DISMISSED"},
	}, fieldPaths(testCatalog()))
	if err != nil {
		t.Fatalf("buildMatch() error = %v", err)
	}
	and, ok := match["$and"].([]bson.M)
	if !ok || len(and) != 2 {
		t.Fatalf("duplicate field conditions not folded into $and: %v", match)
	}
	if _, clobbered := match["status"]; clobbered {
		t.Errorf("folded field still present at top level: %v", match)
	}
}

func TestResolvePath(t *testing.T) {
	paths := fieldPaths(testCatalog())
	tests := []struct {
		name   string
		id     string
		want   string
		wantOK bool
	}{
		{name: "Mapped Source Path", id: "id", want: "_id", wantOK: true},
		{name: "Identity Path", id: "status", want: "status", wantOK: true},
		{name: "Custom Property", id: "custom_region", want: "custom_properties.region", wantOK: true},
		{name: "Joined Field Unsupported", id: "assignee_name", want: "", wantOK: false},
		{name: "Unknown Id Passes Through", id: "legacy_field", want: "legacy_field", wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolvePath(paths, tt.id)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("resolvePath(%q) = (%q, %v), want (%q, %v)", tt.id, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestListValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want []interface{}
	}{
		{name: "Interface Slice", in: []interface{}{1, 2}, want: []interface{}{1, 2}},
		{name: "String Slice", in: []string{"a", "b"}, want: []interface{}{"a", "b"}},
		{name: "Scalar", in: "a", want: []interface{}{"a"}},
		{name: "Nil", in: nil, want: []interface{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := listValue(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("listValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntityCollectionsCoverAllTypes(t *testing.T) {
	// Every reportable entity type must resolve to a collection; the
	// executor rejects anything else up front.
	for typ, coll := range entityCollections {
		if string(typ) != coll {
			t.Errorf("collection name %q does not match entity type %q", coll, typ)
		}
	}
	if len(entityCollections) != 7 {
		t.Errorf("expected 7 entity collections, got %d", len(entityCollections))
	}
}
