package report

import (
	"context"
	"time"

	common_models "go-compliance/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Visibility string

const (
	VisibilityPrivate  Visibility = "PRIVATE"
	VisibilityTeam     Visibility = "TEAM"
	VisibilityEveryone Visibility = "EVERYONE"
)

type Visualization string

const (
	VisualizationTable      Visualization = "table"
	VisualizationBar        Visualization = "bar"
	VisualizationLine       Visualization = "line"
	VisualizationPie        Visualization = "pie"
	VisualizationKPI        Visualization = "kpi"
	VisualizationFunnel     Visualization = "funnel"
	VisualizationStackedBar Visualization = "stacked_bar"
)

// Filter operators accepted on conditions. "between" requires ValueTo.
const (
	OpEq         = "eq"
	OpNeq        = "neq"
	OpGt         = "gt"
	OpGte        = "gte"
	OpLt         = "lt"
	OpLte        = "lte"
	OpContains   = "contains"
	OpStartsWith = "startsWith"
	OpEndsWith   = "endsWith"
	OpIn         = "in"
	OpNotIn      = "notIn"
	OpIsNull     = "isNull"
	OpIsNotNull  = "isNotNull"
	OpBetween    = "between"
)

// FilterCondition is a leaf of the filter tree.
type FilterCondition struct {
	Field    string      `json:"field" bson:"field"`
	Operator string      `json:"operator" bson:"operator"`
	Value    interface{} `json:"value,omitempty" bson:"value,omitempty"`
	ValueTo  interface{} `json:"value_to,omitempty" bson:"value_to,omitempty"`
}

// FilterNode is either a condition or a nested group. The two shapes share
// one struct so user-authored trees decode from JSON/BSON without a type
// tag; IsCondition discriminates by structure.
type FilterNode struct {
	// Condition shape
	Field    string      `json:"field,omitempty" bson:"field,omitempty"`
	Operator string      `json:"operator,omitempty" bson:"operator,omitempty"`
	Value    interface{} `json:"value,omitempty" bson:"value,omitempty"`
	ValueTo  interface{} `json:"value_to,omitempty" bson:"value_to,omitempty"`

	// Group shape
	Logic      string       `json:"logic,omitempty" bson:"logic,omitempty"` // AND | OR
	Conditions []FilterNode `json:"conditions,omitempty" bson:"conditions,omitempty"`
}

// IsCondition reports whether the node is a leaf. A node is a condition iff
// it carries both field and operator; everything else is treated as a group.
func (n FilterNode) IsCondition() bool {
	return n.Field != "" && n.Operator != ""
}

// FilterGroup is a top-level filter tree node. Top-level groups are
// implicitly ANDed together.
type FilterGroup struct {
	Logic      string       `json:"logic" bson:"logic"`
	Conditions []FilterNode `json:"conditions" bson:"conditions"`
}

type AggregationSpec struct {
	Field    string `json:"field" bson:"field"`
	Function string `json:"function" bson:"function"` // count, sum, avg, min, max
	Alias    string `json:"alias,omitempty" bson:"alias,omitempty"`
}

// ReportDefinition is the persisted saved report, tenant scoped.
type ReportDefinition struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `json:"organization_id" bson:"organization_id"`
	CreatedByID    primitive.ObjectID `json:"created_by_id" bson:"created_by_id"`
	CreatedByName  string             `json:"created_by_name,omitempty" bson:"-"`

	Name          string                   `json:"name" bson:"name"`
	Description   string                   `json:"description,omitempty" bson:"description,omitempty"`
	EntityType    common_models.EntityType `json:"entity_type" bson:"entity_type"`
	Columns       []string                 `json:"columns" bson:"columns"`
	Filters       []FilterGroup            `json:"filters" bson:"filters"`
	GroupBy       []string                 `json:"group_by,omitempty" bson:"group_by,omitempty"`
	Aggregation   []AggregationSpec        `json:"aggregation,omitempty" bson:"aggregation,omitempty"`
	Visualization Visualization            `json:"visualization" bson:"visualization"`
	ChartConfig   map[string]interface{}   `json:"chart_config,omitempty" bson:"chart_config,omitempty"`
	SortBy        string                   `json:"sort_by,omitempty" bson:"sort_by,omitempty"`
	SortOrder     string                   `json:"sort_order,omitempty" bson:"sort_order,omitempty"` // asc | desc

	IsTemplate       bool       `json:"is_template" bson:"is_template"`
	TemplateCategory string     `json:"template_category,omitempty" bson:"template_category,omitempty"`
	Visibility       Visibility `json:"visibility" bson:"visibility"`
	IsFavorite       bool       `json:"is_favorite" bson:"is_favorite"`

	LastRunAt       *time.Time `json:"last_run_at,omitempty" bson:"last_run_at,omitempty"`
	LastRunDuration *int64     `json:"last_run_duration,omitempty" bson:"last_run_duration,omitempty"` // ms
	LastRunRowCount *int64     `json:"last_run_row_count,omitempty" bson:"last_run_row_count,omitempty"`

	ScheduledExportID *primitive.ObjectID `json:"scheduled_export_id,omitempty" bson:"scheduled_export_id,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ReportConfig is the ephemeral, execution-ready shape handed to the
// executor. Produced fresh on every run; never stored.
type ReportConfig struct {
	EntityType  common_models.EntityType `json:"entity_type"`
	Columns     []string                 `json:"columns"`
	Filters     []FilterCondition        `json:"filters"`
	GroupBy     []string                 `json:"group_by,omitempty"`
	Aggregation *AggregationSpec         `json:"aggregation,omitempty"`
	SortBy      string                   `json:"sort_by,omitempty"`
	SortOrder   string                   `json:"sort_order,omitempty"`
	Limit       int64                    `json:"limit"`
	Offset      int64                    `json:"offset"`
}

// ReportResult is what the executor returns for a run.
type ReportResult struct {
	Rows       []map[string]interface{} `json:"rows"`
	TotalCount int64                    `json:"total_count"`
	TookMs     int64                    `json:"took_ms"`
}

// Executor runs a ReportConfig against live tenant data.
type Executor interface {
	Execute(ctx context.Context, cfg ReportConfig, organizationID string) (*ReportResult, error)
}

// UpdateReportRequest carries partial-update semantics: only non-nil fields
// are applied.
type UpdateReportRequest struct {
	Name             *string                   `json:"name,omitempty"`
	Description      *string                   `json:"description,omitempty"`
	EntityType       *common_models.EntityType `json:"entity_type,omitempty"`
	Columns          *[]string                 `json:"columns,omitempty"`
	Filters          *[]FilterGroup            `json:"filters,omitempty"`
	GroupBy          *[]string                 `json:"group_by,omitempty"`
	Aggregation      *[]AggregationSpec        `json:"aggregation,omitempty"`
	Visualization    *Visualization            `json:"visualization,omitempty"`
	ChartConfig      *map[string]interface{}   `json:"chart_config,omitempty"`
	SortBy           *string                   `json:"sort_by,omitempty"`
	SortOrder        *string                   `json:"sort_order,omitempty"`
	IsTemplate       *bool                     `json:"is_template,omitempty"`
	TemplateCategory *string                   `json:"template_category,omitempty"`
	Visibility       *Visibility               `json:"visibility,omitempty"`
}

// ListOptions controls pagination and filtering of the report listing.
type ListOptions struct {
	Page       int64      `json:"page"`
	PageSize   int64      `json:"page_size"`
	Visibility Visibility `json:"visibility,omitempty"`
	IsTemplate *bool      `json:"is_template,omitempty"`
	Search     string     `json:"search,omitempty"`
}

// RunOptions are the caller's runtime overrides for a single execution.
type RunOptions struct {
	OverrideFilters []FilterGroup `json:"override_filters,omitempty"`
	Limit           *int64        `json:"limit,omitempty"`
	Offset          *int64        `json:"offset,omitempty"`
	DateRangeStart  string        `json:"date_range_start,omitempty"`
	DateRangeEnd    string        `json:"date_range_end,omitempty"`
}

// ListResult is the paginated listing envelope.
type ListResult struct {
	Data     []ReportDefinition `json:"data"`
	Total    int64              `json:"total"`
	Page     int64              `json:"page"`
	PageSize int64              `json:"page_size"`
}
