package schedule

import (
	"context"
	"errors"
	"time"

	"go-compliance/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("schedule not found")

type ScheduleRepository interface {
	Create(ctx context.Context, rec *ScheduleRecord) error
	Get(ctx context.Context, organizationID, id string) (*ScheduleRecord, error)
	Replace(ctx context.Context, organizationID, id string, rec *ScheduleRecord) error
	Delete(ctx context.Context, organizationID, id string) error
	ListActive(ctx context.Context) ([]ScheduleRecord, error)
}

type ScheduleRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewScheduleRepository(db *database.MongodbDB) ScheduleRepository {
	return &ScheduleRepositoryImpl{
		Collection: db.DB.Collection("scheduled_exports"),
	}
}

func scheduleQuery(organizationID, id string) (bson.M, error) {
	orgID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return nil, ErrNotFound
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return bson.M{"_id": oid, "organization_id": orgID}, nil
}

func (r *ScheduleRepositoryImpl) Create(ctx context.Context, rec *ScheduleRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	_, err := r.Collection.InsertOne(ctx, rec)
	return err
}

func (r *ScheduleRepositoryImpl) Get(ctx context.Context, organizationID, id string) (*ScheduleRecord, error) {
	query, err := scheduleQuery(organizationID, id)
	if err != nil {
		return nil, err
	}

	var rec ScheduleRecord
	if err := r.Collection.FindOne(ctx, query).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *ScheduleRepositoryImpl) Replace(ctx context.Context, organizationID, id string, rec *ScheduleRecord) error {
	query, err := scheduleQuery(organizationID, id)
	if err != nil {
		return err
	}

	rec.UpdatedAt = time.Now()
	res, err := r.Collection.ReplaceOne(ctx, query, rec)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ScheduleRepositoryImpl) Delete(ctx context.Context, organizationID, id string) error {
	query, err := scheduleQuery(organizationID, id)
	if err != nil {
		return err
	}

	res, err := r.Collection.DeleteOne(ctx, query)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ScheduleRepositoryImpl) ListActive(ctx context.Context) ([]ScheduleRecord, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recs []ScheduleRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
