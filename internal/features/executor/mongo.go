package executor

import (
	"context"
	"fmt"
	"regexp"
	"time"

	common_models "go-compliance/internal/common/models"
	"go-compliance/internal/database"
	"go-compliance/internal/features/fields"
	"go-compliance/internal/features/report"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// entityCollections maps each reportable entity type to its backing
// collection.
var entityCollections = map[common_models.EntityType]string{
	common_models.EntityTypeCases:          "cases",
	common_models.EntityTypeRIUs:           "rius",
	common_models.EntityTypePersons:        "persons",
	common_models.EntityTypeCampaigns:      "campaigns",
	common_models.EntityTypePolicies:       "policies",
	common_models.EntityTypeDisclosures:    "disclosures",
	common_models.EntityTypeInvestigations: "investigations",
}

// MongoExecutor runs report configs directly against the tenant's entity
// collections. Catalog field ids are resolved to their document paths
// through the field registry before any query is built.
type MongoExecutor struct {
	DB       *mongo.Database
	Registry fields.FieldRegistryService
	Logger   *zap.Logger
}

func NewMongoExecutor(db *database.MongodbDB, registry fields.FieldRegistryService, logger *zap.Logger) report.Executor {
	return &MongoExecutor{DB: db.DB, Registry: registry, Logger: logger}
}

func (e *MongoExecutor) Execute(ctx context.Context, cfg report.ReportConfig, organizationID string) (*report.ReportResult, error) {
	collName, ok := entityCollections[cfg.EntityType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity type %q", report.ErrValidation, cfg.EntityType)
	}
	coll := e.DB.Collection(collName)

	// Documents store organization_id as an ObjectID like every other
	// collection in this service; the raw hex string would never match.
	orgID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid organization id", report.ErrValidation)
	}

	catalog, err := e.Registry.GetFields(ctx, cfg.EntityType, organizationID)
	if err != nil {
		// The registry degrades internally; a hard failure here still must
		// not kill the run. Field ids fall through as literal paths.
		e.Logger.Warn("field catalog unavailable, using field ids as paths",
			zap.String("entity_type", string(cfg.EntityType)),
			zap.Error(err))
	}
	paths := fieldPaths(catalog)

	match, err := buildMatch(orgID, cfg.Filters, paths)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	var result *report.ReportResult
	if cfg.Aggregation != nil || len(cfg.GroupBy) > 0 {
		result, err = e.runAggregation(ctx, coll, cfg, match, paths)
	} else {
		result, err = e.runFind(ctx, coll, cfg, match, paths)
	}
	if err != nil {
		return nil, err
	}

	result.TookMs = time.Since(start).Milliseconds()
	e.Logger.Debug("report executed",
		zap.String("collection", collName),
		zap.Int64("rows", int64(len(result.Rows))),
		zap.Int64("took_ms", result.TookMs))
	return result, nil
}

func (e *MongoExecutor) runFind(ctx context.Context, coll *mongo.Collection, cfg report.ReportConfig, match bson.M, paths map[string]string) (*report.ReportResult, error) {
	total, err := coll.CountDocuments(ctx, match)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSkip(cfg.Offset).SetLimit(cfg.Limit)
	if len(cfg.Columns) > 0 {
		projection := bson.M{}
		for _, col := range cfg.Columns {
			// Joined columns live in other collections and are simply
			// omitted from the projection.
			if path, ok := resolvePath(paths, col); ok {
				projection[path] = 1
			}
		}
		if len(projection) > 0 {
			opts.SetProjection(projection)
		}
	}
	if cfg.SortBy != "" {
		path, ok := resolvePath(paths, cfg.SortBy)
		if !ok {
			return nil, joinedFieldError(cfg.SortBy, "sorted on")
		}
		opts.SetSort(bson.D{{Key: path, Value: sortOrder(cfg.SortOrder)}})
	}

	cursor, err := coll.Find(ctx, match, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []map[string]interface{}{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	return &report.ReportResult{Rows: rows, TotalCount: total}, nil
}

// runAggregation builds a $match + $group pipeline. Group keys come back
// flattened onto each row under their catalog ids alongside the aggregate
// value.
func (e *MongoExecutor) runAggregation(ctx context.Context, coll *mongo.Collection, cfg report.ReportConfig, match bson.M, paths map[string]string) (*report.ReportResult, error) {
	groupID := bson.M{}
	for _, field := range cfg.GroupBy {
		path, ok := resolvePath(paths, field)
		if !ok {
			return nil, joinedFieldError(field, "grouped by")
		}
		groupID[field] = "$" + path
	}

	agg := cfg.Aggregation
	if agg == nil {
		agg = &report.AggregationSpec{Function: "count"}
	}
	alias := agg.Alias
	if alias == "" {
		alias = "value"
	}
	aggPath := ""
	if agg.Field != "" {
		path, ok := resolvePath(paths, agg.Field)
		if !ok {
			return nil, joinedFieldError(agg.Field, "aggregated over")
		}
		aggPath = path
	}

	group := bson.M{"_id": groupID}
	switch agg.Function {
	case "count":
		group[alias] = bson.M{"$sum": 1}
	case "sum":
		group[alias] = bson.M{"$sum": "$" + aggPath}
	case "avg":
		group[alias] = bson.M{"$avg": "$" + aggPath}
	case "min":
		group[alias] = bson.M{"$min": "$" + aggPath}
	case "max":
		group[alias] = bson.M{"$max": "$" + aggPath}
	default:
		return nil, fmt.Errorf("%w: unsupported aggregation function %q", report.ErrValidation, agg.Function)
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$group": group},
	}
	if cfg.SortBy != "" {
		sortKey := cfg.SortBy
		if sortKey == agg.Field || sortKey == alias {
			sortKey = alias
		} else {
			sortKey = "_id." + sortKey
		}
		pipeline = append(pipeline, bson.M{"$sort": bson.D{{Key: sortKey, Value: sortOrder(cfg.SortOrder)}}})
	}
	if cfg.Limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": cfg.Limit})
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, err
	}

	rows := make([]map[string]interface{}, 0, len(raw))
	for _, doc := range raw {
		row := map[string]interface{}{}
		if id, ok := doc["_id"].(bson.M); ok {
			for k, v := range id {
				row[k] = v
			}
		}
		for k, v := range doc {
			if k == "_id" {
				continue
			}
			row[k] = v
		}
		rows = append(rows, row)
	}

	return &report.ReportResult{Rows: rows, TotalCount: int64(len(rows))}, nil
}

// fieldPaths maps catalog field ids to document paths. Joined fields have no
// path in the entity's own collection and map to the empty string so
// resolvePath can report them as unsupported.
func fieldPaths(catalog []common_models.FieldDefinition) map[string]string {
	paths := make(map[string]string, len(catalog))
	for _, f := range catalog {
		if f.JoinPath != "" {
			paths[f.ID] = ""
			continue
		}
		path := f.SourcePath
		if path == "" {
			path = f.ID
		}
		paths[f.ID] = path
	}
	return paths
}

// resolvePath translates a catalog field id to its Mongo path. Ids the
// catalog does not know pass through unchanged; joined fields resolve to
// ok=false.
func resolvePath(paths map[string]string, id string) (string, bool) {
	path, known := paths[id]
	if !known {
		return id, true
	}
	if path == "" {
		return "", false
	}
	return path, true
}

func joinedFieldError(id, usage string) error {
	return fmt.Errorf("%w: field %q is resolved from a joined record and cannot be %s here", report.ErrValidation, id, usage)
}

// buildMatch assembles the tenant-scoped filter document. Condition fields
// are resolved to their document paths; a filter on a joined field is a
// validation error rather than a silently empty clause.
func buildMatch(orgID primitive.ObjectID, filters []report.FilterCondition, paths map[string]string) (bson.M, error) {
	match := bson.M{"organization_id": orgID}
	for _, cond := range filters {
		if cond.Field == "" {
			continue
		}
		path, ok := resolvePath(paths, cond.Field)
		if !ok {
			return nil, joinedFieldError(cond.Field, "filtered on")
		}
		resolved := cond
		resolved.Field = path
		q := conditionQuery(resolved)
		if q == nil {
			continue
		}
		for k, v := range q {
			if existing, dup := match[k]; dup {
				// Two conditions on the same field; fold into $and so
				// neither clobbers the other.
				and, _ := match["$and"].([]bson.M)
				match["$and"] = append(and, bson.M{k: existing}, bson.M{k: v})
				delete(match, k)
				continue
			}
			match[k] = v
		}
	}
	return match, nil
}

func sortOrder(order string) int {
	if order == "desc" {
		return -1
	}
	return 1
}

// conditionQuery translates a single flattened condition to its Mongo
// clause. Unknown operators degrade to equality.
func conditionQuery(cond report.FilterCondition) bson.M {
	if cond.Field == "" {
		return nil
	}

	switch cond.Operator {
	case report.OpEq:
		return bson.M{cond.Field: cond.Value}
	case report.OpNeq:
		return bson.M{cond.Field: bson.M{"$ne": cond.Value}}
	case report.OpGt:
		return bson.M{cond.Field: bson.M{"$gt": cond.Value}}
	case report.OpGte:
		return bson.M{cond.Field: bson.M{"$gte": cond.Value}}
	case report.OpLt:
		return bson.M{cond.Field: bson.M{"$lt": cond.Value}}
	case report.OpLte:
		return bson.M{cond.Field: bson.M{"$lte": cond.Value}}
	case report.OpContains:
		return bson.M{cond.Field: bson.M{"$regex": stringValue(cond.Value), "$options": "i"}}
	case report.OpStartsWith:
		return bson.M{cond.Field: bson.M{"$regex": "^" + regexp.QuoteMeta(stringValue(cond.Value)), "$options": "i"}}
	case report.OpEndsWith:
		return bson.M{cond.Field: bson.M{"$regex": regexp.QuoteMeta(stringValue(cond.Value)) + "$", "$options": "i"}}
	case report.OpIn:
		return bson.M{cond.Field: bson.M{"$in": listValue(cond.Value)}}
	case report.OpNotIn:
		return bson.M{cond.Field: bson.M{"$nin": listValue(cond.Value)}}
	case report.OpIsNull:
		return bson.M{cond.Field: bson.M{"$in": []interface{}{nil}}}
	case report.OpIsNotNull:
		return bson.M{cond.Field: bson.M{"$nin": []interface{}{nil}}}
	case report.OpBetween:
		return bson.M{cond.Field: bson.M{"$gte": cond.Value, "$lte": cond.ValueTo}}
	default:
		return bson.M{cond.Field: cond.Value}
	}
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// listValue normalizes in/notIn operands: a scalar behaves like a
// one-element list.
func listValue(v interface{}) []interface{} {
	switch vv := v.(type) {
	case []interface{}:
		return vv
	case []string:
		out := make([]interface{}, len(vv))
		for i, s := range vv {
			out[i] = s
		}
		return out
	case nil:
		return []interface{}{}
	default:
		return []interface{}{v}
	}
}
