package report

import (
	"fmt"
	"time"
)

// Flatten converts a recursive AND/OR filter tree into the flat ordered
// condition list the executor expects, depth first, left to right.
//
// Grouping semantics are intentionally discarded: OR groups contribute their
// members to one conjunctive list. The executor contract only accepts a flat
// list, so this is the compatible behavior, not an oversight.
//
// Malformed trees (nil input, empty nodes) are tolerated: unrecognized nodes
// are skipped, never an error. Filter trees are user-authored JSON that may
// be stale or hand-edited.
func Flatten(groups []FilterGroup) []FilterCondition {
	out := []FilterCondition{}
	for _, group := range groups {
		flattenNodes(group.Conditions, &out)
	}
	return out
}

func flattenNodes(nodes []FilterNode, out *[]FilterCondition) {
	for _, node := range nodes {
		if node.IsCondition() {
			*out = append(*out, FilterCondition{
				Field:    node.Field,
				Operator: node.Operator,
				Value:    node.Value,
				ValueTo:  node.ValueTo,
			})
			continue
		}
		// Group node: recurse regardless of its logic value. Nodes with
		// neither shape contribute nothing.
		if len(node.Conditions) > 0 {
			flattenNodes(node.Conditions, out)
		}
	}
}

// createdAtField is the fixed field a caller-supplied date range applies to.
const createdAtField = "created_at"

// AppendDateRange appends one between condition on created_at. When only one
// side of the range is supplied the missing bound defaults to the epoch
// start or now.
func AppendDateRange(conds []FilterCondition, start, end string) []FilterCondition {
	if start == "" && end == "" {
		return conds
	}

	from := time.Unix(0, 0).UTC()
	to := time.Now().UTC()
	if start != "" {
		if t, err := parseDate(start); err == nil {
			from = t
		}
	}
	if end != "" {
		if t, err := parseDate(end); err == nil {
			to = t
		}
	}

	return append(conds, FilterCondition{
		Field:    createdAtField,
		Operator: OpBetween,
		Value:    from,
		ValueTo:  to,
	})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// Describe renders conditions as human-readable strings for audit display.
// This is a one-way mapping; it never feeds back into execution.
func Describe(conds []FilterCondition) []string {
	out := make([]string, 0, len(conds))
	for _, c := range conds {
		switch c.Operator {
		case OpIsNull, OpIsNotNull:
			out = append(out, fmt.Sprintf("%s %s", c.Field, c.Operator))
		case OpBetween:
			out = append(out, fmt.Sprintf("%s between %v and %v", c.Field, c.Value, c.ValueTo))
		default:
			out = append(out, fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Value))
		}
	}
	return out
}
