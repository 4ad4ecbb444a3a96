package models

// EntityType is the closed set of reportable record kinds.
type EntityType string

const (
	EntityTypeCases          EntityType = "cases"
	EntityTypeRIUs           EntityType = "rius"
	EntityTypePersons        EntityType = "persons"
	EntityTypeCampaigns      EntityType = "campaigns"
	EntityTypePolicies       EntityType = "policies"
	EntityTypeDisclosures    EntityType = "disclosures"
	EntityTypeInvestigations EntityType = "investigations"
)

var AllEntityTypes = []EntityType{
	EntityTypeCases,
	EntityTypeRIUs,
	EntityTypePersons,
	EntityTypeCampaigns,
	EntityTypePolicies,
	EntityTypeDisclosures,
	EntityTypeInvestigations,
}

// Valid reports whether e is one of the fixed entity types.
func (e EntityType) Valid() bool {
	for _, t := range AllEntityTypes {
		if e == t {
			return true
		}
	}
	return false
}

// FieldDataType is the value type of a reportable field.
type FieldDataType string

const (
	FieldString   FieldDataType = "string"
	FieldNumber   FieldDataType = "number"
	FieldDate     FieldDataType = "date"
	FieldDateTime FieldDataType = "datetime"
	FieldBoolean  FieldDataType = "boolean"
	FieldEnum     FieldDataType = "enum"
	FieldUUID     FieldDataType = "uuid"
)

// FieldDefinition describes one reportable attribute of an entity type.
type FieldDefinition struct {
	ID               string        `json:"id" bson:"id"`
	Label            string        `json:"label" bson:"label"`
	Type             FieldDataType `json:"type" bson:"type"`
	Group            string        `json:"group" bson:"group"`
	SourcePath       string        `json:"source_path" bson:"source_path"` // dotted path into the record
	Filterable       bool          `json:"filterable" bson:"filterable"`
	Sortable         bool          `json:"sortable" bson:"sortable"`
	Groupable        bool          `json:"groupable" bson:"groupable"`
	Aggregatable     bool          `json:"aggregatable" bson:"aggregatable"`
	EnumValues       []string      `json:"enum_values,omitempty" bson:"enum_values,omitempty"`
	IsComputed       bool          `json:"is_computed,omitempty" bson:"is_computed,omitempty"`
	IsCustomProperty bool          `json:"is_custom_property,omitempty" bson:"is_custom_property,omitempty"`
	JoinPath         string        `json:"join_path,omitempty" bson:"join_path,omitempty"` // relation to traverse for SourcePath
}

// FieldGroup is a presentation bucket of fields for the report designer.
type FieldGroup struct {
	GroupName string            `json:"group_name"`
	Fields    []FieldDefinition `json:"fields"`
}
