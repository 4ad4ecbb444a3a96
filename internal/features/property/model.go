package property

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DataType string

const (
	DataTypeText        DataType = "text"
	DataTypeNumber      DataType = "number"
	DataTypeDate        DataType = "date"
	DataTypeBoolean     DataType = "boolean"
	DataTypeSelect      DataType = "select"
	DataTypeMultiSelect DataType = "multiselect"
)

// PropertyDefinition is a tenant-configured custom attribute on a domain
// entity (case, person, ...). Values live on the records themselves under
// customProperties.<key>; this is only the schema.
type PropertyDefinition struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `json:"organization_id" bson:"organization_id"`
	EntityKey      string             `json:"entity_key" bson:"entity_key"` // domain entity the property hangs off
	Key            string             `json:"key" bson:"key"`
	Name           string             `json:"name" bson:"name"`
	DataType       DataType           `json:"data_type" bson:"data_type"`
	GroupName      string             `json:"group_name,omitempty" bson:"group_name,omitempty"`
	DisplayOrder   int                `json:"display_order" bson:"display_order"`
	Options        []string           `json:"options,omitempty" bson:"options,omitempty"` // select/multiselect choices
	IsActive       bool               `json:"is_active" bson:"is_active"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}
