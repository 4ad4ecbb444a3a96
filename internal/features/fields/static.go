package fields

import (
	common_models "go-compliance/internal/common/models"
)

// Group names used across the static catalog. The details group is entity
// specific and always sorts first.
const (
	GroupClassification   = "Classification"
	GroupAssignment       = "Assignment"
	GroupDates            = "Dates"
	GroupOutcome          = "Outcome"
	GroupSource           = "Source"
	GroupMetrics          = "Metrics"
	GroupCustomProperties = "Custom Properties"
)

// detailsGroup maps an entity type to its leading presentation group.
var detailsGroup = map[common_models.EntityType]string{
	common_models.EntityTypeCases:          "Case Details",
	common_models.EntityTypeRIUs:           "RIU Details",
	common_models.EntityTypePersons:        "Person Details",
	common_models.EntityTypeCampaigns:      "Campaign Details",
	common_models.EntityTypePolicies:       "Policy Details",
	common_models.EntityTypeDisclosures:    "Disclosure Details",
	common_models.EntityTypeInvestigations: "Investigation Details",
}

// groupPriority is the fixed presentation order after the details group.
// Groups not listed here (including Custom Properties) are appended
// alphabetically at the end.
var groupPriority = []string{
	GroupClassification,
	GroupAssignment,
	GroupDates,
	GroupOutcome,
	GroupSource,
	GroupMetrics,
}

// staticCatalog is the compiled-in field table, one ordered list per entity
// type. Built once at init; never mutated at runtime.
var staticCatalog = map[common_models.EntityType][]common_models.FieldDefinition{
	common_models.EntityTypeCases: {
		{ID: "id", Label: "Case ID", Type: common_models.FieldUUID, Group: "Case Details", SourcePath: "_id", Filterable: true, Sortable: true},
		{ID: "case_number", Label: "Case Number", Type: common_models.FieldString, Group: "Case Details", SourcePath: "case_number", Filterable: true, Sortable: true},
		{ID: "title", Label: "Title", Type: common_models.FieldString, Group: "Case Details", SourcePath: "title", Filterable: true, Sortable: true},
		{ID: "description", Label: "Description", Type: common_models.FieldString, Group: "Case Details", SourcePath: "description", Filterable: true},
		{ID: "status", Label: "Status", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "status", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"NEW", "OPEN", "IN_REVIEW", "PENDING_CLOSURE", "CLOSED"}},
		{ID: "priority", Label: "Priority", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "priority", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}},
		{ID: "severity", Label: "Severity", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "severity", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"MINOR", "MODERATE", "MAJOR", "SEVERE"}},
		{ID: "case_type", Label: "Case Type", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "case_type", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"HR", "FRAUD", "COMPLIANCE", "SAFETY", "OTHER"}},
		{ID: "assignee_name", Label: "Assignee", Type: common_models.FieldString, Group: GroupAssignment, SourcePath: "name", JoinPath: "assignee", Filterable: true, Sortable: true, Groupable: true},
		{ID: "assignee_email", Label: "Assignee Email", Type: common_models.FieldString, Group: GroupAssignment, SourcePath: "email", JoinPath: "assignee", Filterable: true, Sortable: true},
		{ID: "team", Label: "Team", Type: common_models.FieldString, Group: GroupAssignment, SourcePath: "team", Filterable: true, Sortable: true, Groupable: true},
		{ID: "created_at", Label: "Created At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "created_at", Filterable: true, Sortable: true},
		{ID: "updated_at", Label: "Updated At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "updated_at", Filterable: true, Sortable: true},
		{ID: "due_at", Label: "Due Date", Type: common_models.FieldDate, Group: GroupDates, SourcePath: "due_at", Filterable: true, Sortable: true},
		{ID: "closed_at", Label: "Closed At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "closed_at", Filterable: true, Sortable: true},
		{ID: "outcome", Label: "Outcome", Type: common_models.FieldEnum, Group: GroupOutcome, SourcePath: "outcome", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"SUBSTANTIATED", "UNSUBSTANTIATED", "INCONCLUSIVE", "WITHDRAWN"}},
		{ID: "resolution_summary", Label: "Resolution Summary", Type: common_models.FieldString, Group: GroupOutcome, SourcePath: "resolution_summary", Filterable: true},
		{ID: "days_open", Label: "Days Open", Type: common_models.FieldNumber, Group: GroupMetrics, SourcePath: "days_open", Filterable: true, Sortable: true, Aggregatable: true, IsComputed: true},
		{ID: "source_channel", Label: "Source Channel", Type: common_models.FieldEnum, Group: GroupSource, SourcePath: "source_channel", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"HOTLINE", "WEB_FORM", "EMAIL", "WALK_IN", "MANUAL"}},
		{ID: "reporter_anonymous", Label: "Anonymous Reporter", Type: common_models.FieldBoolean, Group: GroupSource, SourcePath: "reporter_anonymous", Filterable: true, Groupable: true},
	},
	common_models.EntityTypeRIUs: {
		{ID: "id", Label: "RIU ID", Type: common_models.FieldUUID, Group: "RIU Details", SourcePath: "_id", Filterable: true, Sortable: true},
		{ID: "reference", Label: "Reference", Type: common_models.FieldString, Group: "RIU Details", SourcePath: "reference", Filterable: true, Sortable: true},
		{ID: "summary", Label: "Summary", Type: common_models.FieldString, Group: "RIU Details", SourcePath: "summary", Filterable: true},
		{ID: "status", Label: "Status", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "status", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"RECEIVED", "TRIAGED", "ESCALATED", "DISMISSED"}},
		{ID: "risk_score", Label: "Risk Score", Type: common_models.FieldNumber, Group: GroupMetrics, SourcePath: "risk_score", Filterable: true, Sortable: true, Aggregatable: true},
		{ID: "anonymous", Label: "Anonymous", Type: common_models.FieldBoolean, Group: GroupSource, SourcePath: "anonymous", Filterable: true, Groupable: true},
		{ID: "channel", Label: "Channel", Type: common_models.FieldEnum, Group: GroupSource, SourcePath: "channel", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"HOTLINE", "WEB_FORM", "EMAIL", "API"}},
		{ID: "created_at", Label: "Created At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "created_at", Filterable: true, Sortable: true},
		{ID: "triaged_at", Label: "Triaged At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "triaged_at", Filterable: true, Sortable: true},
		{ID: "triaged_by_name", Label: "Triaged By", Type: common_models.FieldString, Group: GroupAssignment, SourcePath: "name", JoinPath: "triaged_by", Filterable: true, Sortable: true, Groupable: true},
	},
	common_models.EntityTypePersons: {
		{ID: "id", Label: "Person ID", Type: common_models.FieldUUID, Group: "Person Details", SourcePath: "_id", Filterable: true, Sortable: true},
		{ID: "full_name", Label: "Full Name", Type: common_models.FieldString, Group: "Person Details", SourcePath: "full_name", Filterable: true, Sortable: true},
		{ID: "email", Label: "Email", Type: common_models.FieldString, Group: "Person Details", SourcePath: "email", Filterable: true, Sortable: true},
		{ID: "department", Label: "Department", Type: common_models.FieldString, Group: "Person Details", SourcePath: "department", Filterable: true, Sortable: true, Groupable: true},
		{ID: "job_title", Label: "Job Title", Type: common_models.FieldString, Group: "Person Details", SourcePath: "job_title", Filterable: true, Sortable: true},
		{ID: "location", Label: "Location", Type: common_models.FieldString, Group: "Person Details", SourcePath: "location", Filterable: true, Sortable: true, Groupable: true},
		{ID: "person_type", Label: "Person Type", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "person_type", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"EMPLOYEE", "CONTRACTOR", "THIRD_PARTY"}},
		{ID: "risk_level", Label: "Risk Level", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "risk_level", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"LOW", "MEDIUM", "HIGH"}},
		{ID: "open_case_count", Label: "Open Cases", Type: common_models.FieldNumber, Group: GroupMetrics, SourcePath: "open_case_count", Filterable: true, Sortable: true, Aggregatable: true, IsComputed: true},
		{ID: "created_at", Label: "Created At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "created_at", Filterable: true, Sortable: true},
		{ID: "updated_at", Label: "Updated At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "updated_at", Filterable: true, Sortable: true},
	},
	common_models.EntityTypeCampaigns: {
		{ID: "id", Label: "Campaign ID", Type: common_models.FieldUUID, Group: "Campaign Details", SourcePath: "_id", Filterable: true, Sortable: true},
		{ID: "name", Label: "Name", Type: common_models.FieldString, Group: "Campaign Details", SourcePath: "name", Filterable: true, Sortable: true},
		{ID: "campaign_type", Label: "Campaign Type", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "campaign_type", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"DISCLOSURE", "ATTESTATION", "TRAINING", "SURVEY"}},
		{ID: "status", Label: "Status", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "status", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"DRAFT", "ACTIVE", "PAUSED", "COMPLETED"}},
		{ID: "owner_name", Label: "Owner", Type: common_models.FieldString, Group: GroupAssignment, SourcePath: "name", JoinPath: "owner", Filterable: true, Sortable: true, Groupable: true},
		{ID: "total_recipients", Label: "Total Recipients", Type: common_models.FieldNumber, Group: GroupMetrics, SourcePath: "total_recipients", Filterable: true, Sortable: true, Aggregatable: true},
		{ID: "completed_count", Label: "Completed", Type: common_models.FieldNumber, Group: GroupMetrics, SourcePath: "completed_count", Filterable: true, Sortable: true, Aggregatable: true},
		{ID: "completion_rate", Label: "Completion Rate", Type: common_models.FieldNumber, Group: GroupMetrics, SourcePath: "completion_rate", Filterable: true, Sortable: true, Aggregatable: true, IsComputed: true},
		{ID: "start_date", Label: "Start Date", Type: common_models.FieldDate, Group: GroupDates, SourcePath: "start_date", Filterable: true, Sortable: true},
		{ID: "end_date", Label: "End Date", Type: common_models.FieldDate, Group: GroupDates, SourcePath: "end_date", Filterable: true, Sortable: true},
		{ID: "created_at", Label: "Created At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "created_at", Filterable: true, Sortable: true},
	},
	common_models.EntityTypePolicies: {
		{ID: "id", Label: "Policy ID", Type: common_models.FieldUUID, Group: "Policy Details", SourcePath: "_id", Filterable: true, Sortable: true},
		{ID: "title", Label: "Title", Type: common_models.FieldString, Group: "Policy Details", SourcePath: "title", Filterable: true, Sortable: true},
		{ID: "version", Label: "Version", Type: common_models.FieldString, Group: "Policy Details", SourcePath: "version", Filterable: true, Sortable: true},
		{ID: "status", Label: "Status", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "status", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"DRAFT", "PUBLISHED", "ARCHIVED"}},
		{ID: "owner_name", Label: "Owner", Type: common_models.FieldString, Group: GroupAssignment, SourcePath: "name", JoinPath: "owner", Filterable: true, Sortable: true, Groupable: true},
		{ID: "acknowledgement_rate", Label: "Acknowledgement Rate", Type: common_models.FieldNumber, Group: GroupMetrics, SourcePath: "acknowledgement_rate", Filterable: true, Sortable: true, Aggregatable: true, IsComputed: true},
		{ID: "effective_at", Label: "Effective Date", Type: common_models.FieldDate, Group: GroupDates, SourcePath: "effective_at", Filterable: true, Sortable: true},
		{ID: "review_due_at", Label: "Review Due", Type: common_models.FieldDate, Group: GroupDates, SourcePath: "review_due_at", Filterable: true, Sortable: true},
		{ID: "created_at", Label: "Created At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "created_at", Filterable: true, Sortable: true},
	},
	common_models.EntityTypeDisclosures: {
		{ID: "id", Label: "Disclosure ID", Type: common_models.FieldUUID, Group: "Disclosure Details", SourcePath: "_id", Filterable: true, Sortable: true},
		{ID: "disclosure_type", Label: "Disclosure Type", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "disclosure_type", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"GIFT", "CONFLICT_OF_INTEREST", "OUTSIDE_ACTIVITY", "POLITICAL_CONTRIBUTION"}},
		{ID: "status", Label: "Status", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "status", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"SUBMITTED", "UNDER_REVIEW", "APPROVED", "DENIED"}},
		{ID: "summary", Label: "Summary", Type: common_models.FieldString, Group: "Disclosure Details", SourcePath: "summary", Filterable: true},
		{ID: "value_amount", Label: "Value Amount", Type: common_models.FieldNumber, Group: "Disclosure Details", SourcePath: "value_amount", Filterable: true, Sortable: true, Aggregatable: true},
		{ID: "reviewer_name", Label: "Reviewer", Type: common_models.FieldString, Group: GroupAssignment, SourcePath: "name", JoinPath: "reviewer", Filterable: true, Sortable: true, Groupable: true},
		{ID: "decision", Label: "Decision", Type: common_models.FieldEnum, Group: GroupOutcome, SourcePath: "decision", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"APPROVED", "APPROVED_WITH_CONDITIONS", "DENIED"}},
		{ID: "submitted_at", Label: "Submitted At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "submitted_at", Filterable: true, Sortable: true},
		{ID: "decided_at", Label: "Decided At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "decided_at", Filterable: true, Sortable: true},
		{ID: "created_at", Label: "Created At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "created_at", Filterable: true, Sortable: true},
	},
	common_models.EntityTypeInvestigations: {
		{ID: "id", Label: "Investigation ID", Type: common_models.FieldUUID, Group: "Investigation Details", SourcePath: "_id", Filterable: true, Sortable: true},
		{ID: "case_id", Label: "Case ID", Type: common_models.FieldUUID, Group: "Investigation Details", SourcePath: "case_id", Filterable: true, Sortable: true},
		{ID: "findings", Label: "Findings", Type: common_models.FieldString, Group: "Investigation Details", SourcePath: "findings", Filterable: true},
		{ID: "status", Label: "Status", Type: common_models.FieldEnum, Group: GroupClassification, SourcePath: "status", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"OPEN", "ACTIVE", "ON_HOLD", "CLOSED"}},
		{ID: "investigator_name", Label: "Investigator", Type: common_models.FieldString, Group: GroupAssignment, SourcePath: "name", JoinPath: "investigator", Filterable: true, Sortable: true, Groupable: true},
		{ID: "outcome", Label: "Outcome", Type: common_models.FieldEnum, Group: GroupOutcome, SourcePath: "outcome", Filterable: true, Sortable: true, Groupable: true, EnumValues: []string{"SUBSTANTIATED", "UNSUBSTANTIATED", "INCONCLUSIVE"}},
		{ID: "substantiated", Label: "Substantiated", Type: common_models.FieldBoolean, Group: GroupOutcome, SourcePath: "substantiated", Filterable: true, Groupable: true},
		{ID: "hours_spent", Label: "Hours Spent", Type: common_models.FieldNumber, Group: GroupMetrics, SourcePath: "hours_spent", Filterable: true, Sortable: true, Aggregatable: true},
		{ID: "opened_at", Label: "Opened At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "opened_at", Filterable: true, Sortable: true},
		{ID: "closed_at", Label: "Closed At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "closed_at", Filterable: true, Sortable: true},
		{ID: "created_at", Label: "Created At", Type: common_models.FieldDateTime, Group: GroupDates, SourcePath: "created_at", Filterable: true, Sortable: true},
	},
}
