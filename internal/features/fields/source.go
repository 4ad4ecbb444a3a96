package fields

import (
	"context"

	common_models "go-compliance/internal/common/models"
	"go-compliance/internal/features/property"

	"go.uber.org/zap"
)

// FieldSource supplies field definitions for one origin (static schema,
// tenant custom properties). The registry concatenates sources.
type FieldSource interface {
	ListFields(ctx context.Context, entityType common_models.EntityType, organizationID string) ([]common_models.FieldDefinition, error)
}

// StaticFieldSource serves the compiled-in catalog. Unknown entity types
// yield an empty list; the registry is advisory metadata, not a security
// boundary.
type StaticFieldSource struct{}

func NewStaticFieldSource() *StaticFieldSource {
	return &StaticFieldSource{}
}

func (s *StaticFieldSource) ListFields(_ context.Context, entityType common_models.EntityType, _ string) ([]common_models.FieldDefinition, error) {
	defs, ok := staticCatalog[entityType]
	if !ok {
		return nil, nil
	}
	// Copy so callers can't mutate the shared table.
	out := make([]common_models.FieldDefinition, len(defs))
	copy(out, defs)
	return out, nil
}

// propertyEntityKey maps a reportable entity type to the custom-property
// domain's own type key. Entity types absent here do not support tenant
// custom properties.
var propertyEntityKey = map[common_models.EntityType]string{
	common_models.EntityTypeCases:          "case",
	common_models.EntityTypeRIUs:           "riu",
	common_models.EntityTypePersons:        "person",
	common_models.EntityTypeDisclosures:    "disclosure",
	common_models.EntityTypeInvestigations: "investigation",
}

// CustomPropertySource derives field definitions from the tenant's active
// custom-property definitions on every call. A fetch failure degrades to an
// empty list; a missing or partial tenant customization must never fail the
// whole catalog.
type CustomPropertySource struct {
	Properties property.PropertyRepository
	Logger     *zap.Logger
}

func NewCustomPropertySource(properties property.PropertyRepository, logger *zap.Logger) *CustomPropertySource {
	return &CustomPropertySource{
		Properties: properties,
		Logger:     logger,
	}
}

func (s *CustomPropertySource) ListFields(ctx context.Context, entityType common_models.EntityType, organizationID string) ([]common_models.FieldDefinition, error) {
	entityKey, ok := propertyEntityKey[entityType]
	if !ok {
		return nil, nil
	}

	defs, err := s.Properties.FindActiveDefinitions(ctx, organizationID, entityKey)
	if err != nil {
		s.Logger.Warn("custom property fetch failed, serving static fields only",
			zap.String("entity_type", string(entityType)),
			zap.String("organization_id", organizationID),
			zap.Error(err))
		return nil, nil
	}

	out := make([]common_models.FieldDefinition, 0, len(defs))
	for _, def := range defs {
		out = append(out, convertProperty(def))
	}
	return out, nil
}

func convertProperty(def property.PropertyDefinition) common_models.FieldDefinition {
	field := common_models.FieldDefinition{
		ID:               "custom_" + def.Key,
		Label:            def.Name,
		Group:            GroupCustomProperties,
		SourcePath:       "custom_properties." + def.Key,
		Filterable:       true,
		Sortable:         def.DataType != property.DataTypeMultiSelect,
		IsCustomProperty: true,
	}

	switch def.DataType {
	case property.DataTypeNumber:
		field.Type = common_models.FieldNumber
		field.Aggregatable = true
	case property.DataTypeDate:
		field.Type = common_models.FieldDate
	case property.DataTypeBoolean:
		field.Type = common_models.FieldBoolean
		field.Groupable = true
	case property.DataTypeSelect:
		field.Type = common_models.FieldEnum
		field.Groupable = true
		field.EnumValues = def.Options
	case property.DataTypeMultiSelect:
		field.Type = common_models.FieldEnum
		field.EnumValues = def.Options
	default:
		field.Type = common_models.FieldString
	}

	return field
}
