package report

import (
	"reflect"
	"testing"
	"time"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name   string
		groups []FilterGroup
		want   []FilterCondition
	}{
		{
			name:   "Nil Input",
			groups: nil,
			want:   []FilterCondition{},
		},
		{
			name: "Single Condition",
			groups: []FilterGroup{
				{Logic: "AND", Conditions: []FilterNode{
					{Field: "status", Operator: OpEq, Value: "NEW"},
				}},
			},
			want: []FilterCondition{
				{Field: "status", Operator: OpEq, Value: "NEW"},
			},
		},
		{
			name: "Nested Groups Depth First",
			groups: []FilterGroup{
				{Logic: "AND", Conditions: []FilterNode{
					{Field: "severity", Operator: OpGte, Value: 3.0},
					{Logic: "OR", Conditions: []FilterNode{
						{Field: "status", Operator: OpEq, Value: "NEW"},
						{Field: "status", Operator: OpEq, Value: "OPEN"},
					}},
					{Field: "assignee", Operator: OpIsNotNull},
				}},
			},
			// OR grouping collapses into one conjunctive list, order
			// preserved depth first.
			want: []FilterCondition{
				{Field: "severity", Operator: OpGte, Value: 3.0},
				{Field: "status", Operator: OpEq, Value: "NEW"},
				{Field: "status", Operator: OpEq, Value: "OPEN"},
				{Field: "assignee", Operator: OpIsNotNull},
			},
		},
		{
			name: "Multiple Top Level Groups",
			groups: []FilterGroup{
				{Logic: "AND", Conditions: []FilterNode{
					{Field: "a", Operator: OpEq, Value: 1},
				}},
				{Logic: "OR", Conditions: []FilterNode{
					{Field: "b", Operator: OpEq, Value: 2},
				}},
			},
			want: []FilterCondition{
				{Field: "a", Operator: OpEq, Value: 1},
				{Field: "b", Operator: OpEq, Value: 2},
			},
		},
		{
			name: "Malformed Nodes Skipped",
			groups: []FilterGroup{
				{Logic: "AND", Conditions: []FilterNode{
					{},                            // neither shape
					{Field: "orphan"},             // field without operator
					{Operator: OpEq, Value: "x"},  // operator without field
					{Logic: "OR", Conditions: nil}, // empty group
					{Field: "kept", Operator: OpEq, Value: "y"},
				}},
			},
			want: []FilterCondition{
				{Field: "kept", Operator: OpEq, Value: "y"},
			},
		},
		{
			name: "Between Carries ValueTo",
			groups: []FilterGroup{
				{Logic: "AND", Conditions: []FilterNode{
					{Field: "score", Operator: OpBetween, Value: 1.0, ValueTo: 5.0},
				}},
			},
			want: []FilterCondition{
				{Field: "score", Operator: OpBetween, Value: 1.0, ValueTo: 5.0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Flatten(tt.groups)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Flatten() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppendDateRange(t *testing.T) {
	base := []FilterCondition{{Field: "status", Operator: OpEq, Value: "NEW"}}

	t.Run("No Range Is A Noop", func(t *testing.T) {
		got := AppendDateRange(base, "", "")
		if len(got) != 1 {
			t.Fatalf("expected 1 condition, got %d", len(got))
		}
	})

	t.Run("Both Bounds", func(t *testing.T) {
		got := AppendDateRange(base, "2026-01-01", "2026-02-01")
		if len(got) != 2 {
			t.Fatalf("expected 2 conditions, got %d", len(got))
		}
		cond := got[1]
		if cond.Field != "created_at" || cond.Operator != OpBetween {
			t.Fatalf("unexpected condition %+v", cond)
		}
		from := cond.Value.(time.Time)
		to := cond.ValueTo.(time.Time)
		if !from.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("from = %v", from)
		}
		if !to.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("to = %v", to)
		}
	})

	t.Run("Start Only Defaults End To Now", func(t *testing.T) {
		got := AppendDateRange(nil, "2026-01-01", "")
		cond := got[0]
		to := cond.ValueTo.(time.Time)
		if time.Since(to) > time.Minute {
			t.Errorf("expected end near now, got %v", to)
		}
	})

	t.Run("End Only Defaults Start To Epoch", func(t *testing.T) {
		got := AppendDateRange(nil, "", "2026-01-01")
		cond := got[0]
		from := cond.Value.(time.Time)
		if !from.Equal(time.Unix(0, 0).UTC()) {
			t.Errorf("expected epoch start, got %v", from)
		}
	})

	t.Run("RFC3339 Accepted", func(t *testing.T) {
		got := AppendDateRange(nil, "2026-01-01T12:30:00Z", "")
		from := got[0].Value.(time.Time)
		if from.Hour() != 12 || from.Minute() != 30 {
			t.Errorf("expected 12:30, got %v", from)
		}
	})
}

func TestDescribe(t *testing.T) {
	conds := []FilterCondition{
		{Field: "status", Operator: OpEq, Value: "NEW"},
		{Field: "assignee", Operator: OpIsNull},
		{Field: "score", Operator: OpBetween, Value: 1, ValueTo: 5},
	}

	got := Describe(conds)
	want := []string{
		"status eq NEW",
		"assignee isNull",
		"score between 1 and 5",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Describe() = %v, want %v", got, want)
	}
}
