package property

import (
	"context"

	"go-compliance/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PropertyRepository interface {
	FindActiveDefinitions(ctx context.Context, organizationID string, entityKey string) ([]PropertyDefinition, error)
}

type PropertyRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewPropertyRepository(db *database.MongodbDB) PropertyRepository {
	return &PropertyRepositoryImpl{
		Collection: db.DB.Collection("property_definitions"),
	}
}

func (r *PropertyRepositoryImpl) FindActiveDefinitions(ctx context.Context, organizationID string, entityKey string) ([]PropertyDefinition, error) {
	orgID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return nil, err
	}

	query := bson.M{
		"organization_id": orgID,
		"entity_key":      entityKey,
		"is_active":       true,
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "group_name", Value: 1},
		{Key: "display_order", Value: 1},
	})

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var defs []PropertyDefinition
	if err := cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}
