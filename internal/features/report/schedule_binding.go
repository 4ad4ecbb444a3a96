package report

import (
	"context"
	"fmt"
	"time"

	common_models "go-compliance/internal/common/models"
	"go-compliance/internal/features/schedule"
	"go-compliance/pkg/utils"
)

// Report-facing export formats. The scheduler has its own enumeration; this
// package owns the two-way mapping.
const (
	FormatExcel = "EXCEL"
	FormatCSV   = "CSV"
	FormatPDF   = "PDF"
)

func toSchedulerFormat(format string) schedule.Format {
	switch format {
	case FormatCSV:
		return schedule.FormatCSV
	case FormatPDF:
		return schedule.FormatPDF
	case FormatExcel:
		return schedule.FormatXLSX
	default:
		// Unrecognized formats fall back to the EXCEL equivalent.
		return schedule.FormatXLSX
	}
}

func fromSchedulerFormat(format schedule.Format) string {
	switch format {
	case schedule.FormatCSV:
		return FormatCSV
	case schedule.FormatPDF:
		return FormatPDF
	default:
		return FormatExcel
	}
}

// ScheduleRequest is the report-facing shape for creating or updating a
// recurring export.
type ScheduleRequest struct {
	Name           string                  `json:"name,omitempty"`
	ScheduleType   schedule.ScheduleType   `json:"schedule_type"`
	ScheduleConfig schedule.ScheduleConfig `json:"schedule_config"`
	Timezone       string                  `json:"timezone,omitempty"`
	Format         string                  `json:"format,omitempty"` // EXCEL | CSV | PDF
	Recipients     []string                `json:"recipients,omitempty"`
}

// ScheduleView is the report-facing projection of a schedule record.
type ScheduleView struct {
	ID             string                  `json:"id"`
	ReportID       string                  `json:"report_id"`
	Name           string                  `json:"name"`
	ScheduleType   schedule.ScheduleType   `json:"schedule_type"`
	ScheduleConfig schedule.ScheduleConfig `json:"schedule_config"`
	Timezone       string                  `json:"timezone,omitempty"`
	Format         string                  `json:"format"`
	Recipients     []string                `json:"recipients"`
	IsActive       bool                    `json:"is_active"`
	LastRunAt      *time.Time              `json:"last_run_at,omitempty"`
	NextRunAt      *time.Time              `json:"next_run_at,omitempty"`
}

func toScheduleView(rec *schedule.ScheduleRecord) *ScheduleView {
	return &ScheduleView{
		ID:             rec.ID.Hex(),
		ReportID:       rec.ReportID.Hex(),
		Name:           rec.Name,
		ScheduleType:   rec.ScheduleType,
		ScheduleConfig: rec.ScheduleConfig,
		Timezone:       rec.Timezone,
		Format:         fromSchedulerFormat(rec.Format),
		Recipients:     rec.Recipients,
		IsActive:       rec.IsActive,
		LastRunAt:      rec.LastRunAt,
		NextRunAt:      rec.NextRunAt,
	}
}

// ScheduleBindingService associates a saved report with its recurring-export
// definition in the external scheduler. A report has at most one schedule.
type ScheduleBindingService interface {
	CreateSchedule(ctx context.Context, actor *utils.UserClaims, reportID string, req *ScheduleRequest) (*ScheduleView, error)
	GetSchedule(ctx context.Context, actor *utils.UserClaims, reportID string) (*ScheduleView, error)
	UpdateSchedule(ctx context.Context, actor *utils.UserClaims, reportID string, req *ScheduleRequest) (*ScheduleView, error)
	DeleteSchedule(ctx context.Context, actor *utils.UserClaims, reportID string) error
	PauseSchedule(ctx context.Context, actor *utils.UserClaims, reportID string) (*ScheduleView, error)
	ResumeSchedule(ctx context.Context, actor *utils.UserClaims, reportID string) (*ScheduleView, error)
	RunScheduleNow(ctx context.Context, actor *utils.UserClaims, reportID string) (*ScheduleView, error)
}

type ScheduleBindingServiceImpl struct {
	Repo         ReportRepository
	Scheduler    schedule.SchedulerService
	AuditService AuditLogger
}

func NewScheduleBindingService(repo ReportRepository, scheduler schedule.SchedulerService, auditService AuditLogger) ScheduleBindingService {
	return &ScheduleBindingServiceImpl{
		Repo:         repo,
		Scheduler:    scheduler,
		AuditService: auditService,
	}
}

func (s *ScheduleBindingServiceImpl) CreateSchedule(ctx context.Context, actor *utils.UserClaims, reportID string, req *ScheduleRequest) (*ScheduleView, error) {
	def, err := s.Repo.Get(ctx, actor.OrganizationID, reportID)
	if err != nil {
		return nil, err
	}
	if def.ScheduledExportID != nil {
		return nil, ErrScheduleExists
	}

	name := req.Name
	if name == "" {
		name = def.Name + " export"
	}

	rec := &schedule.ScheduleRecord{
		OrganizationID: def.OrganizationID,
		ReportID:       def.ID,
		Name:           name,
		ScheduleType:   req.ScheduleType,
		ScheduleConfig: req.ScheduleConfig,
		Timezone:       req.Timezone,
		Format:         toSchedulerFormat(req.Format),
		Recipients:     req.Recipients,
	}

	created, err := s.Scheduler.Create(ctx, actor.OrganizationID, rec)
	if err != nil {
		return nil, err
	}

	// The external schedule exists from here on. A failed link-back must be
	// surfaced distinctly so the caller can reconcile the orphan.
	if err := s.Repo.LinkSchedule(ctx, actor.OrganizationID, reportID, &created.ID); err != nil {
		return nil, fmt.Errorf("%w: external schedule %s", ErrScheduleLinkFailed, created.ID.Hex())
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionScheduleCreated, "report_definitions", reportID, map[string]common_models.Change{
		"scheduled_export_id": {New: created.ID.Hex()},
	})

	return toScheduleView(created), nil
}

func (s *ScheduleBindingServiceImpl) GetSchedule(ctx context.Context, actor *utils.UserClaims, reportID string) (*ScheduleView, error) {
	rec, err := s.boundSchedule(ctx, actor, reportID)
	if err != nil {
		return nil, err
	}
	return toScheduleView(rec), nil
}

func (s *ScheduleBindingServiceImpl) UpdateSchedule(ctx context.Context, actor *utils.UserClaims, reportID string, req *ScheduleRequest) (*ScheduleView, error) {
	rec, err := s.boundSchedule(ctx, actor, reportID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		rec.Name = req.Name
	}
	if req.ScheduleType != "" {
		rec.ScheduleType = req.ScheduleType
	}
	if req.ScheduleConfig.Time != "" {
		rec.ScheduleConfig = req.ScheduleConfig
	}
	if req.Timezone != "" {
		rec.Timezone = req.Timezone
	}
	if req.Format != "" {
		rec.Format = toSchedulerFormat(req.Format)
	}
	if req.Recipients != nil {
		rec.Recipients = req.Recipients
	}

	updated, err := s.Scheduler.Update(ctx, actor.OrganizationID, rec.ID.Hex(), rec)
	if err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionScheduleUpdated, "report_definitions", reportID, map[string]common_models.Change{
		"scheduled_export_id": {Old: updated.ID.Hex(), New: updated.ID.Hex()},
	})

	return toScheduleView(updated), nil
}

// DeleteSchedule deletes the external schedule and unlinks it from the
// report as one logical operation.
func (s *ScheduleBindingServiceImpl) DeleteSchedule(ctx context.Context, actor *utils.UserClaims, reportID string) error {
	rec, err := s.boundSchedule(ctx, actor, reportID)
	if err != nil {
		return err
	}

	if err := s.Scheduler.Delete(ctx, actor.OrganizationID, rec.ID.Hex()); err != nil {
		return err
	}

	if err := s.Repo.LinkSchedule(ctx, actor.OrganizationID, reportID, nil); err != nil {
		return fmt.Errorf("%w: schedule %s deleted externally", ErrScheduleLinkFailed, rec.ID.Hex())
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionScheduleDeleted, "report_definitions", reportID, map[string]common_models.Change{
		"scheduled_export_id": {Old: rec.ID.Hex()},
	})
	return nil
}

func (s *ScheduleBindingServiceImpl) PauseSchedule(ctx context.Context, actor *utils.UserClaims, reportID string) (*ScheduleView, error) {
	rec, err := s.boundSchedule(ctx, actor, reportID)
	if err != nil {
		return nil, err
	}
	paused, err := s.Scheduler.Pause(ctx, actor.OrganizationID, rec.ID.Hex())
	if err != nil {
		return nil, err
	}
	return toScheduleView(paused), nil
}

func (s *ScheduleBindingServiceImpl) ResumeSchedule(ctx context.Context, actor *utils.UserClaims, reportID string) (*ScheduleView, error) {
	rec, err := s.boundSchedule(ctx, actor, reportID)
	if err != nil {
		return nil, err
	}
	resumed, err := s.Scheduler.Resume(ctx, actor.OrganizationID, rec.ID.Hex())
	if err != nil {
		return nil, err
	}
	return toScheduleView(resumed), nil
}

func (s *ScheduleBindingServiceImpl) RunScheduleNow(ctx context.Context, actor *utils.UserClaims, reportID string) (*ScheduleView, error) {
	rec, err := s.boundSchedule(ctx, actor, reportID)
	if err != nil {
		return nil, err
	}
	run, err := s.Scheduler.RunNow(ctx, actor.OrganizationID, rec.ID.Hex())
	if err != nil {
		return nil, err
	}
	return toScheduleView(run), nil
}

// boundSchedule resolves the report and its bound schedule; a report with no
// binding behaves like a missing schedule.
func (s *ScheduleBindingServiceImpl) boundSchedule(ctx context.Context, actor *utils.UserClaims, reportID string) (*schedule.ScheduleRecord, error) {
	def, err := s.Repo.Get(ctx, actor.OrganizationID, reportID)
	if err != nil {
		return nil, err
	}
	if def.ScheduledExportID == nil {
		return nil, schedule.ErrNotFound
	}
	return s.Scheduler.Get(ctx, actor.OrganizationID, def.ScheduledExportID.Hex())
}
