package report

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	common_models "go-compliance/internal/common/models"
	"go-compliance/internal/features/fields"
	"go-compliance/internal/features/schedule"
	"go-compliance/internal/features/user"
	"go-compliance/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeReportRepo is an in-memory ReportRepository with the same tenant and
// not-found semantics as the Mongo implementation.
type fakeReportRepo struct {
	mu   sync.Mutex
	defs map[string]*ReportDefinition
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{defs: map[string]*ReportDefinition{}}
}

func (r *fakeReportRepo) Create(_ context.Context, def *ReportDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if def.ID.IsZero() {
		def.ID = primitive.NewObjectID()
	}
	def.CreatedAt = time.Now()
	def.UpdatedAt = def.CreatedAt
	clone := *def
	r.defs[def.ID.Hex()] = &clone
	return nil
}

func (r *fakeReportRepo) Get(_ context.Context, organizationID, id string) (*ReportDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.defs[id]
	if !ok || def.OrganizationID.Hex() != organizationID {
		return nil, ErrNotFound
	}
	clone := *def
	return &clone, nil
}

func (r *fakeReportRepo) List(_ context.Context, organizationID, callerID string, opts ListOptions) ([]ReportDefinition, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ReportDefinition
	for _, def := range r.defs {
		if def.OrganizationID.Hex() != organizationID {
			continue
		}
		switch opts.Visibility {
		case "":
			if def.CreatedByID.Hex() != callerID && def.Visibility == VisibilityPrivate {
				continue
			}
		case VisibilityPrivate:
			if def.CreatedByID.Hex() != callerID || def.Visibility != VisibilityPrivate {
				continue
			}
		default:
			if def.Visibility != opts.Visibility {
				continue
			}
		}
		if opts.IsTemplate != nil && def.IsTemplate != *opts.IsTemplate {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(def.Name), strings.ToLower(opts.Search)) {
			continue
		}
		out = append(out, *def)
	}
	return out, int64(len(out)), nil
}

func (r *fakeReportRepo) Replace(_ context.Context, organizationID, id string, def *ReportDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.defs[id]
	if !ok || existing.OrganizationID.Hex() != organizationID {
		return ErrNotFound
	}
	def.UpdatedAt = time.Now()
	clone := *def
	r.defs[id] = &clone
	return nil
}

func (r *fakeReportRepo) Delete(_ context.Context, organizationID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.defs[id]
	if !ok || existing.OrganizationID.Hex() != organizationID {
		return ErrNotFound
	}
	delete(r.defs, id)
	return nil
}

func (r *fakeReportRepo) Templates(_ context.Context, organizationID string) ([]ReportDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ReportDefinition
	for _, def := range r.defs {
		if def.OrganizationID.Hex() == organizationID && def.IsTemplate {
			out = append(out, *def)
		}
	}
	return out, nil
}

func (r *fakeReportRepo) UpdateRunStats(_ context.Context, organizationID, id string, runAt time.Time, durationMs, rowCount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.defs[id]
	if !ok || def.OrganizationID.Hex() != organizationID {
		return ErrNotFound
	}
	def.LastRunAt = &runAt
	def.LastRunDuration = &durationMs
	def.LastRunRowCount = &rowCount
	return nil
}

func (r *fakeReportRepo) SetFavorite(_ context.Context, organizationID, id string, favorite bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.defs[id]
	if !ok || def.OrganizationID.Hex() != organizationID {
		return ErrNotFound
	}
	def.IsFavorite = favorite
	return nil
}

func (r *fakeReportRepo) LinkSchedule(_ context.Context, organizationID, id string, scheduleID *primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.defs[id]
	if !ok || def.OrganizationID.Hex() != organizationID {
		return ErrNotFound
	}
	def.ScheduledExportID = scheduleID
	return nil
}

// fakeRegistry validates against a fixed field set.
type fakeRegistry struct {
	fields map[string]common_models.FieldDefinition
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{fields: map[string]common_models.FieldDefinition{
		"status":     {ID: "status", Type: common_models.FieldEnum, Groupable: true},
		"priority":   {ID: "priority", Type: common_models.FieldEnum, Groupable: true},
		"title":      {ID: "title", Type: common_models.FieldString},
		"created_at": {ID: "created_at", Type: common_models.FieldDateTime},
		"age_days":   {ID: "age_days", Type: common_models.FieldNumber, Aggregatable: true},
	}}
}

func (f *fakeRegistry) GetFields(_ context.Context, _ common_models.EntityType, _ string) ([]common_models.FieldDefinition, error) {
	out := make([]common_models.FieldDefinition, 0, len(f.fields))
	for _, def := range f.fields {
		out = append(out, def)
	}
	return out, nil
}

func (f *fakeRegistry) GetFieldGroups(_ context.Context, _ common_models.EntityType, _ string) ([]common_models.FieldGroup, error) {
	return nil, nil
}

func (f *fakeRegistry) ValidateFields(_ context.Context, _ common_models.EntityType, _ string, fieldIDs []string) (*fields.ValidationResult, error) {
	var invalid []string
	for _, id := range fieldIDs {
		if _, ok := f.fields[id]; !ok {
			invalid = append(invalid, id)
		}
	}
	return &fields.ValidationResult{Valid: len(invalid) == 0, InvalidFields: invalid}, nil
}

// recordingAudit captures audit actions for assertions.
type recordingAudit struct {
	mu      sync.Mutex
	actions []common_models.AuditAction
}

func (a *recordingAudit) LogChange(_ context.Context, action common_models.AuditAction, _ string, _ string, _ map[string]common_models.Change) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
	return nil
}

func (a *recordingAudit) has(action common_models.AuditAction) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, got := range a.actions {
		if got == action {
			return true
		}
	}
	return false
}

// fakeUserRepo resolves ids to canned names.
type fakeUserRepo struct {
	names map[string]string
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*user.User, error) {
	name, ok := f.names[id]
	if !ok {
		return nil, ErrNotFound
	}
	oid, _ := primitive.ObjectIDFromHex(id)
	return &user.User{ID: oid, Name: name}, nil
}

func (f *fakeUserRepo) FindByIDs(_ context.Context, ids []string) ([]user.User, error) {
	var out []user.User
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			oid, _ := primitive.ObjectIDFromHex(id)
			out = append(out, user.User{ID: oid, Name: name})
		}
	}
	return out, nil
}

// fakeExecutor returns a fixed result and remembers what it was asked to
// run.
type fakeExecutor struct {
	mu      sync.Mutex
	lastCfg ReportConfig
	lastOrg string
	result  *ReportResult
	err     error
}

func (e *fakeExecutor) Execute(_ context.Context, cfg ReportConfig, organizationID string) (*ReportResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastCfg = cfg
	e.lastOrg = organizationID
	if e.err != nil {
		return nil, e.err
	}
	if e.result != nil {
		return e.result, nil
	}
	return &ReportResult{Rows: []map[string]interface{}{}, TotalCount: 0}, nil
}

// fakeScheduler is an in-memory schedule.SchedulerService.
type fakeScheduler struct {
	mu        sync.Mutex
	records   map[string]*schedule.ScheduleRecord
	createErr error
	runs      int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{records: map[string]*schedule.ScheduleRecord{}}
}

func (s *fakeScheduler) Create(_ context.Context, organizationID string, rec *schedule.ScheduleRecord) (*schedule.ScheduleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	rec.IsActive = true
	clone := *rec
	s.records[rec.ID.Hex()] = &clone
	return rec, nil
}

func (s *fakeScheduler) Get(_ context.Context, organizationID, id string) (*schedule.ScheduleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (s *fakeScheduler) Update(_ context.Context, organizationID, id string, rec *schedule.ScheduleRecord) (*schedule.ScheduleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return nil, schedule.ErrNotFound
	}
	clone := *rec
	s.records[id] = &clone
	return rec, nil
}

func (s *fakeScheduler) Delete(_ context.Context, organizationID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *fakeScheduler) Pause(ctx context.Context, organizationID, id string) (*schedule.ScheduleRecord, error) {
	return s.setActive(id, false)
}

func (s *fakeScheduler) Resume(ctx context.Context, organizationID, id string) (*schedule.ScheduleRecord, error) {
	return s.setActive(id, true)
}

func (s *fakeScheduler) setActive(id string, active bool) (*schedule.ScheduleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	rec.IsActive = active
	clone := *rec
	return &clone, nil
}

func (s *fakeScheduler) RunNow(_ context.Context, organizationID, id string) (*schedule.ScheduleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	s.runs++
	now := time.Now()
	rec.LastRunAt = &now
	clone := *rec
	return &clone, nil
}

func (s *fakeScheduler) InitializeScheduler(_ context.Context) error { return nil }
func (s *fakeScheduler) StopScheduler() error                        { return nil }

func mustObjectID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		t.Fatalf("bad object id %q: %v", hex, err)
	}
	return oid
}

func testActor() *utils.UserClaims {
	return &utils.UserClaims{
		UserID:         primitive.NewObjectID().Hex(),
		OrganizationID: primitive.NewObjectID().Hex(),
		Role:           utils.RoleEmployee,
		Name:           "Dana Investigator",
	}
}

func sameOrgActor(other *utils.UserClaims, role string) *utils.UserClaims {
	return &utils.UserClaims{
		UserID:         primitive.NewObjectID().Hex(),
		OrganizationID: other.OrganizationID,
		Role:           role,
		Name:           "Second User",
	}
}
