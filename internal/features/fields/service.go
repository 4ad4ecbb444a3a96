package fields

import (
	"context"
	"sort"

	common_models "go-compliance/internal/common/models"
	"go-compliance/internal/features/property"

	"go.uber.org/zap"
)

type ValidationResult struct {
	Valid         bool     `json:"valid"`
	InvalidFields []string `json:"invalid_fields,omitempty"`
}

type FieldRegistryService interface {
	GetFields(ctx context.Context, entityType common_models.EntityType, organizationID string) ([]common_models.FieldDefinition, error)
	GetFieldGroups(ctx context.Context, entityType common_models.EntityType, organizationID string) ([]common_models.FieldGroup, error)
	ValidateFields(ctx context.Context, entityType common_models.EntityType, organizationID string, fieldIDs []string) (*ValidationResult, error)
}

type FieldRegistryServiceImpl struct {
	Sources []FieldSource
	Logger  *zap.Logger
}

func NewFieldRegistryService(properties property.PropertyRepository, logger *zap.Logger) FieldRegistryService {
	return &FieldRegistryServiceImpl{
		Sources: []FieldSource{
			NewStaticFieldSource(),
			NewCustomPropertySource(properties, logger),
		},
		Logger: logger,
	}
}

func (s *FieldRegistryServiceImpl) GetFields(ctx context.Context, entityType common_models.EntityType, organizationID string) ([]common_models.FieldDefinition, error) {
	var all []common_models.FieldDefinition
	for _, source := range s.Sources {
		defs, err := source.ListFields(ctx, entityType, organizationID)
		if err != nil {
			return nil, err
		}
		all = append(all, defs...)
	}

	if len(all) == 0 {
		s.Logger.Warn("no fields for entity type", zap.String("entity_type", string(entityType)))
	}
	return all, nil
}

func (s *FieldRegistryServiceImpl) GetFieldGroups(ctx context.Context, entityType common_models.EntityType, organizationID string) ([]common_models.FieldGroup, error) {
	defs, err := s.GetFields(ctx, entityType, organizationID)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string][]common_models.FieldDefinition)
	for _, def := range defs {
		buckets[def.Group] = append(buckets[def.Group], def)
	}

	var groups []common_models.FieldGroup
	seen := make(map[string]bool)

	appendGroup := func(name string) {
		if fields, ok := buckets[name]; ok && !seen[name] {
			seen[name] = true
			groups = append(groups, common_models.FieldGroup{GroupName: name, Fields: fields})
		}
	}

	// Entity-specific details group first, then the fixed priority list.
	if details, ok := detailsGroup[entityType]; ok {
		appendGroup(details)
	}
	for _, name := range groupPriority {
		appendGroup(name)
	}

	// Custom Properties and unrecognized groups go last, alphabetically.
	var rest []string
	for name := range buckets {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		appendGroup(name)
	}

	return groups, nil
}

func (s *FieldRegistryServiceImpl) ValidateFields(ctx context.Context, entityType common_models.EntityType, organizationID string, fieldIDs []string) (*ValidationResult, error) {
	defs, err := s.GetFields(ctx, entityType, organizationID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(defs))
	for _, def := range defs {
		known[def.ID] = true
	}

	var invalid []string
	for _, id := range fieldIDs {
		if !known[id] {
			invalid = append(invalid, id)
		}
	}

	return &ValidationResult{Valid: len(invalid) == 0, InvalidFields: invalid}, nil
}
