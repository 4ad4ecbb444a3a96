package report

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go-compliance/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportRepository owns durable access to report definitions. Every method
// takes the organization id as a hard filter predicate; a definition is never
// visible outside its owning tenant.
type ReportRepository interface {
	Create(ctx context.Context, def *ReportDefinition) error
	Get(ctx context.Context, organizationID, id string) (*ReportDefinition, error)
	List(ctx context.Context, organizationID, callerID string, opts ListOptions) ([]ReportDefinition, int64, error)
	Replace(ctx context.Context, organizationID, id string, def *ReportDefinition) error
	Delete(ctx context.Context, organizationID, id string) error
	Templates(ctx context.Context, organizationID string) ([]ReportDefinition, error)
	UpdateRunStats(ctx context.Context, organizationID, id string, runAt time.Time, durationMs, rowCount int64) error
	SetFavorite(ctx context.Context, organizationID, id string, favorite bool) error
	LinkSchedule(ctx context.Context, organizationID, id string, scheduleID *primitive.ObjectID) error
}

type ReportRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewReportRepository(db *database.MongodbDB) ReportRepository {
	return &ReportRepositoryImpl{
		Collection: db.DB.Collection("report_definitions"),
	}
}

func tenantQuery(organizationID, id string) (bson.M, error) {
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

func (r *ReportRepositoryImpl) Create(ctx context.Context, def *ReportDefinition) error {
	if def.ID.IsZero() {
		def.ID = primitive.NewObjectID()
	}
	def.CreatedAt = time.Now()
	def.UpdatedAt = def.CreatedAt
	_, err := r.Collection.InsertOne(ctx, def)
	return err
}

func (r *ReportRepositoryImpl) Get(ctx context.Context, organizationID, id string) (*ReportDefinition, error) {
	query, err := tenantQuery(organizationID, id)
	if err != nil {
		return nil, err
	}

	var def ReportDefinition
	if err := r.Collection.FindOne(ctx, query).Decode(&def); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &def, nil
}

// buildListQuery translates the listing options into a Mongo predicate.
// Visibility semantics:
//   - no visibility requested: own definitions OR anything TEAM/EVERYONE,
//     with search terms ORed into that list (search broadens, inherited
//     reference behavior);
//   - PRIVATE: only the caller's own private definitions;
//   - TEAM/EVERYONE: all definitions with that visibility in the tenant.
func buildListQuery(orgID, callerID primitive.ObjectID, opts ListOptions) bson.M {
	query := bson.M{"organization_id": orgID}

	var searchOr []bson.M
	if opts.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(opts.Search), Options: "i"}
		searchOr = []bson.M{
			{"name": bson.M{"$regex": pattern}},
			{"description": bson.M{"$regex": pattern}},
		}
	}

	switch opts.Visibility {
	case "":
		or := []bson.M{
			{"created_by_id": callerID},
			{"visibility": bson.M{"$in": []Visibility{VisibilityTeam, VisibilityEveryone}}},
		}
		or = append(or, searchOr...)
		query["$or"] = or
	case VisibilityPrivate:
		query["created_by_id"] = callerID
		query["visibility"] = VisibilityPrivate
		if len(searchOr) > 0 {
			query["$or"] = searchOr
		}
	default:
		query["visibility"] = opts.Visibility
		if len(searchOr) > 0 {
			query["$or"] = searchOr
		}
	}

	if opts.IsTemplate != nil {
		query["is_template"] = *opts.IsTemplate
	}

	return query
}

func (r *ReportRepositoryImpl) List(ctx context.Context, organizationID, callerID string, opts ListOptions) ([]ReportDefinition, int64, error) {
	orgID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return nil, 0, ErrNotFound
	}
	caller, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, 0, ErrNotFound
	}

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}

	query := buildListQuery(orgID, caller, opts)

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip((opts.Page - 1) * opts.PageSize).
		SetLimit(opts.PageSize)

	cursor, err := r.Collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var defs []ReportDefinition
	if err := cursor.All(ctx, &defs); err != nil {
		return nil, 0, err
	}
	return defs, total, nil
}

func (r *ReportRepositoryImpl) Replace(ctx context.Context, organizationID, id string, def *ReportDefinition) error {
	query, err := tenantQuery(organizationID, id)
	if err != nil {
		return err
	}

	def.UpdatedAt = time.Now()
	res, err := r.Collection.ReplaceOne(ctx, query, def)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReportRepositoryImpl) Delete(ctx context.Context, organizationID, id string) error {
	query, err := tenantQuery(organizationID, id)
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

func (r *ReportRepositoryImpl) Templates(ctx context.Context, organizationID string) ([]ReportDefinition, error) {
	orgID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return nil, ErrNotFound
	}

	query := bson.M{"organization_id": orgID, "is_template": true}
	opts := options.Find().SetSort(bson.D{
		{Key: "template_category", Value: 1},
		{Key: "name", Value: 1},
	})

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var defs []ReportDefinition
	if err := cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *ReportRepositoryImpl) UpdateRunStats(ctx context.Context, organizationID, id string, runAt time.Time, durationMs, rowCount int64) error {
	query, err := tenantQuery(organizationID, id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"last_run_at":        runAt,
		"last_run_duration":  durationMs,
		"last_run_row_count": rowCount,
	}}
	_, err = r.Collection.UpdateOne(ctx, query, update)
	return err
}

func (r *ReportRepositoryImpl) SetFavorite(ctx context.Context, organizationID, id string, favorite bool) error {
	query, err := tenantQuery(organizationID, id)
	if err != nil {
		return err
	}

	res, err := r.Collection.UpdateOne(ctx, query, bson.M{"$set": bson.M{"is_favorite": favorite}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReportRepositoryImpl) LinkSchedule(ctx context.Context, organizationID, id string, scheduleID *primitive.ObjectID) error {
	query, err := tenantQuery(organizationID, id)
	if err != nil {
		return err
	}

	var update bson.M
	if scheduleID == nil {
		update = bson.M{"$unset": bson.M{"scheduled_export_id": ""}}
	} else {
		update = bson.M{"$set": bson.M{"scheduled_export_id": *scheduleID}}
	}

	res, err := r.Collection.UpdateOne(ctx, query, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
