package report

import (
	"context"
	"fmt"
	"reflect"

	common_models "go-compliance/internal/common/models"
	"go-compliance/internal/features/fields"
	"go-compliance/internal/features/user"
	"go-compliance/pkg/utils"

	deepcopy "github.com/tiendc/go-deepcopy"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// aggregation functions accepted on a definition. count is legal on any
// field; the rest require an aggregatable (numeric) field.
var aggregationFunctions = map[string]bool{
	"count": true,
	"sum":   true,
	"avg":   true,
	"min":   true,
	"max":   true,
}

type ReportService interface {
	CreateReport(ctx context.Context, actor *utils.UserClaims, def *ReportDefinition) (*ReportDefinition, error)
	ListReports(ctx context.Context, actor *utils.UserClaims, opts ListOptions) (*ListResult, error)
	GetReport(ctx context.Context, actor *utils.UserClaims, id string) (*ReportDefinition, error)
	UpdateReport(ctx context.Context, actor *utils.UserClaims, id string, req *UpdateReportRequest) (*ReportDefinition, error)
	DeleteReport(ctx context.Context, actor *utils.UserClaims, id string) error
	DuplicateReport(ctx context.Context, actor *utils.UserClaims, id string) (*ReportDefinition, error)
	ToggleFavorite(ctx context.Context, actor *utils.UserClaims, id string) (bool, error)
	ListTemplates(ctx context.Context, actor *utils.UserClaims) ([]ReportDefinition, error)
}

type ReportServiceImpl struct {
	Repo         ReportRepository
	Registry     fields.FieldRegistryService
	AuditService AuditLogger
	UserRepo     user.UserRepository
}

// AuditLogger is the slice of the audit service this package needs.
type AuditLogger interface {
	LogChange(ctx context.Context, action common_models.AuditAction, entity string, recordID string, changes map[string]common_models.Change) error
}

func NewReportService(repo ReportRepository, registry fields.FieldRegistryService, auditService AuditLogger, userRepo user.UserRepository) ReportService {
	return &ReportServiceImpl{
		Repo:         repo,
		Registry:     registry,
		AuditService: auditService,
		UserRepo:     userRepo,
	}
}

func (s *ReportServiceImpl) CreateReport(ctx context.Context, actor *utils.UserClaims, def *ReportDefinition) (*ReportDefinition, error) {
	orgID, err := primitive.ObjectIDFromHex(actor.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid organization id", ErrValidation)
	}
	creatorID, err := primitive.ObjectIDFromHex(actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
	}

	def.ID = primitive.NilObjectID
	def.OrganizationID = orgID
	def.CreatedByID = creatorID
	if def.Visibility == "" {
		def.Visibility = VisibilityPrivate
	}
	if def.Visualization == "" {
		def.Visualization = VisualizationTable
	}
	def.LastRunAt = nil
	def.LastRunDuration = nil
	def.LastRunRowCount = nil
	def.ScheduledExportID = nil

	if err := s.validateDefinition(ctx, actor.OrganizationID, def); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, def); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionReportCreated, "report_definitions", def.ID.Hex(), map[string]common_models.Change{
		"report": {New: def.Name},
	})

	s.populateCreatorName(ctx, def)
	return def, nil
}

func (s *ReportServiceImpl) ListReports(ctx context.Context, actor *utils.UserClaims, opts ListOptions) (*ListResult, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}

	defs, total, err := s.Repo.List(ctx, actor.OrganizationID, actor.UserID, opts)
	if err != nil {
		return nil, err
	}

	s.populateCreatorNames(ctx, defs)

	return &ListResult{
		Data:     defs,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.PageSize,
	}, nil
}

func (s *ReportServiceImpl) GetReport(ctx context.Context, actor *utils.UserClaims, id string) (*ReportDefinition, error) {
	def, err := s.Repo.Get(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	s.populateCreatorName(ctx, def)
	return def, nil
}

func (s *ReportServiceImpl) UpdateReport(ctx context.Context, actor *utils.UserClaims, id string, req *UpdateReportRequest) (*ReportDefinition, error) {
	def, err := s.Repo.Get(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}

	if !canModify(actor, def) {
		return nil, ErrPermissionDenied
	}

	changes := applyUpdate(def, req)

	if err := s.validateDefinition(ctx, actor.OrganizationID, def); err != nil {
		return nil, err
	}

	if err := s.Repo.Replace(ctx, actor.OrganizationID, id, def); err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionReportUpdated, "report_definitions", id, changes)
	}

	s.populateCreatorName(ctx, def)
	return def, nil
}

func (s *ReportServiceImpl) DeleteReport(ctx context.Context, actor *utils.UserClaims, id string) error {
	def, err := s.Repo.Get(ctx, actor.OrganizationID, id)
	if err != nil {
		return err
	}

	if !canModify(actor, def) {
		return ErrPermissionDenied
	}

	// No schedule handling here: unlinking any bound schedule is the
	// caller's responsibility before delete.
	if err := s.Repo.Delete(ctx, actor.OrganizationID, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionReportDeleted, "report_definitions", id, map[string]common_models.Change{
		"report": {Old: def.Name, New: "DELETED"},
	})
	return nil
}

func (s *ReportServiceImpl) DuplicateReport(ctx context.Context, actor *utils.UserClaims, id string) (*ReportDefinition, error) {
	src, err := s.Repo.Get(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}

	creatorID, err := primitive.ObjectIDFromHex(actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
	}

	copyDef := &ReportDefinition{
		OrganizationID: src.OrganizationID,
		CreatedByID:    creatorID,
		Name:           src.Name + " (Copy)",
		Description:    src.Description,
		EntityType:     src.EntityType,
		Visualization:  src.Visualization,
		SortBy:         src.SortBy,
		SortOrder:      src.SortOrder,
		Visibility:     VisibilityPrivate,
	}

	// Deep copy config so the duplicate shares no structure with the source.
	if err := deepcopy.Copy(&copyDef.Columns, &src.Columns); err != nil {
		return nil, err
	}
	if err := deepcopy.Copy(&copyDef.Filters, &src.Filters); err != nil {
		return nil, err
	}
	if err := deepcopy.Copy(&copyDef.GroupBy, &src.GroupBy); err != nil {
		return nil, err
	}
	if err := deepcopy.Copy(&copyDef.Aggregation, &src.Aggregation); err != nil {
		return nil, err
	}
	if err := deepcopy.Copy(&copyDef.ChartConfig, &src.ChartConfig); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, copyDef); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionReportDuplicated, "report_definitions", copyDef.ID.Hex(), map[string]common_models.Change{
		"duplicated_from": {Old: src.ID.Hex(), New: copyDef.ID.Hex()},
	})

	s.populateCreatorName(ctx, copyDef)
	return copyDef, nil
}

func (s *ReportServiceImpl) ToggleFavorite(ctx context.Context, actor *utils.UserClaims, id string) (bool, error) {
	def, err := s.Repo.Get(ctx, actor.OrganizationID, id)
	if err != nil {
		return false, err
	}

	// Read-modify-write without a version check; concurrent toggles are
	// last-writer-wins, acceptable for a favorite flag.
	next := !def.IsFavorite
	if err := s.Repo.SetFavorite(ctx, actor.OrganizationID, id, next); err != nil {
		return false, err
	}
	return next, nil
}

func (s *ReportServiceImpl) ListTemplates(ctx context.Context, actor *utils.UserClaims) ([]ReportDefinition, error) {
	defs, err := s.Repo.Templates(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	s.populateCreatorNames(ctx, defs)
	return defs, nil
}

func canModify(actor *utils.UserClaims, def *ReportDefinition) bool {
	return def.CreatedByID.Hex() == actor.UserID || actor.IsAdmin()
}

// validateDefinition enforces the entity type enumeration, field-catalog
// membership for every referenced field id, and aggregation sanity.
func (s *ReportServiceImpl) validateDefinition(ctx context.Context, organizationID string, def *ReportDefinition) error {
	if !def.EntityType.Valid() {
		return fmt.Errorf("%w: unknown entity type %q", ErrValidation, def.EntityType)
	}
	if def.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}

	var fieldIDs []string
	fieldIDs = append(fieldIDs, def.Columns...)
	fieldIDs = append(fieldIDs, def.GroupBy...)
	for _, cond := range Flatten(def.Filters) {
		fieldIDs = append(fieldIDs, cond.Field)
	}
	if def.SortBy != "" {
		fieldIDs = append(fieldIDs, def.SortBy)
	}
	for _, agg := range def.Aggregation {
		if agg.Field != "" {
			fieldIDs = append(fieldIDs, agg.Field)
		}
	}

	result, err := s.Registry.ValidateFields(ctx, def.EntityType, organizationID, fieldIDs)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("%w: unknown fields %v", ErrValidation, result.InvalidFields)
	}

	if len(def.Aggregation) > 0 {
		catalog, err := s.Registry.GetFields(ctx, def.EntityType, organizationID)
		if err != nil {
			return err
		}
		byID := make(map[string]common_models.FieldDefinition, len(catalog))
		for _, f := range catalog {
			byID[f.ID] = f
		}
		for _, agg := range def.Aggregation {
			if !aggregationFunctions[agg.Function] {
				return fmt.Errorf("%w: unknown aggregation function %q", ErrValidation, agg.Function)
			}
			if agg.Function == "count" {
				continue
			}
			f, ok := byID[agg.Field]
			if !ok || !f.Aggregatable {
				return fmt.Errorf("%w: field %q is not aggregatable", ErrValidation, agg.Field)
			}
		}
	}

	return nil
}

// applyUpdate copies the fields present in req onto def and returns the
// per-field old/new diff for the audit trail.
func applyUpdate(def *ReportDefinition, req *UpdateReportRequest) map[string]common_models.Change {
	changes := make(map[string]common_models.Change)

	set := func(name string, old, new interface{}, apply func()) {
		changes[name] = common_models.Change{Old: old, New: new}
		apply()
	}

	if req.Name != nil && *req.Name != def.Name {
		set("name", def.Name, *req.Name, func() { def.Name = *req.Name })
	}
	if req.Description != nil && *req.Description != def.Description {
		set("description", def.Description, *req.Description, func() { def.Description = *req.Description })
	}
	if req.EntityType != nil && *req.EntityType != def.EntityType {
		set("entity_type", def.EntityType, *req.EntityType, func() { def.EntityType = *req.EntityType })
	}
	if req.Columns != nil && !reflect.DeepEqual(*req.Columns, def.Columns) {
		set("columns", def.Columns, *req.Columns, func() { def.Columns = *req.Columns })
	}
	if req.Filters != nil && !reflect.DeepEqual(*req.Filters, def.Filters) {
		set("filters", def.Filters, *req.Filters, func() { def.Filters = *req.Filters })
	}
	if req.GroupBy != nil && !reflect.DeepEqual(*req.GroupBy, def.GroupBy) {
		set("group_by", def.GroupBy, *req.GroupBy, func() { def.GroupBy = *req.GroupBy })
	}
	if req.Aggregation != nil && !reflect.DeepEqual(*req.Aggregation, def.Aggregation) {
		set("aggregation", def.Aggregation, *req.Aggregation, func() { def.Aggregation = *req.Aggregation })
	}
	if req.Visualization != nil && *req.Visualization != def.Visualization {
		set("visualization", def.Visualization, *req.Visualization, func() { def.Visualization = *req.Visualization })
	}
	if req.ChartConfig != nil && !reflect.DeepEqual(*req.ChartConfig, def.ChartConfig) {
		set("chart_config", def.ChartConfig, *req.ChartConfig, func() { def.ChartConfig = *req.ChartConfig })
	}
	if req.SortBy != nil && *req.SortBy != def.SortBy {
		set("sort_by", def.SortBy, *req.SortBy, func() { def.SortBy = *req.SortBy })
	}
	if req.SortOrder != nil && *req.SortOrder != def.SortOrder {
		set("sort_order", def.SortOrder, *req.SortOrder, func() { def.SortOrder = *req.SortOrder })
	}
	if req.IsTemplate != nil && *req.IsTemplate != def.IsTemplate {
		set("is_template", def.IsTemplate, *req.IsTemplate, func() { def.IsTemplate = *req.IsTemplate })
	}
	if req.TemplateCategory != nil && *req.TemplateCategory != def.TemplateCategory {
		set("template_category", def.TemplateCategory, *req.TemplateCategory, func() { def.TemplateCategory = *req.TemplateCategory })
	}
	if req.Visibility != nil && *req.Visibility != def.Visibility {
		set("visibility", def.Visibility, *req.Visibility, func() { def.Visibility = *req.Visibility })
	}

	return changes
}

func (s *ReportServiceImpl) populateCreatorName(ctx context.Context, def *ReportDefinition) {
	if def == nil || s.UserRepo == nil {
		return
	}
	if u, err := s.UserRepo.FindByID(ctx, def.CreatedByID.Hex()); err == nil {
		def.CreatedByName = u.Name
	}
}

func (s *ReportServiceImpl) populateCreatorNames(ctx context.Context, defs []ReportDefinition) {
	if len(defs) == 0 || s.UserRepo == nil {
		return
	}

	unique := make(map[string]bool)
	var ids []string
	for _, def := range defs {
		id := def.CreatedByID.Hex()
		if !unique[id] {
			unique[id] = true
			ids = append(ids, id)
		}
	}

	users, err := s.UserRepo.FindByIDs(ctx, ids)
	if err != nil {
		return
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID.Hex()] = u.Name
	}
	for i := range defs {
		defs[i].CreatedByName = names[defs[i].CreatedByID.Hex()]
	}
}
