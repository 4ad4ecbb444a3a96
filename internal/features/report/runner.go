package report

import (
	"context"
	"time"

	common_models "go-compliance/internal/common/models"
	"go-compliance/pkg/utils"

	"go.uber.org/zap"
)

const (
	defaultRunLimit = int64(1000)
)

// RunnerService assembles a ReportConfig from a stored definition plus
// runtime overrides, delegates to the executor, and records run statistics.
type RunnerService interface {
	Run(ctx context.Context, actor *utils.UserClaims, reportID string, opts RunOptions) (*ReportResult, error)
	RunForOrganization(ctx context.Context, organizationID, reportID string) (*ReportResult, error)
}

type RunnerServiceImpl struct {
	Repo         ReportRepository
	Executor     Executor
	AuditService AuditLogger
	Logger       *zap.Logger
}

func NewRunnerService(repo ReportRepository, executor Executor, auditService AuditLogger, logger *zap.Logger) RunnerService {
	return &RunnerServiceImpl{
		Repo:         repo,
		Executor:     executor,
		AuditService: auditService,
		Logger:       logger,
	}
}

func (s *RunnerServiceImpl) Run(ctx context.Context, actor *utils.UserClaims, reportID string, opts RunOptions) (*ReportResult, error) {
	return s.run(ctx, actor.OrganizationID, reportID, opts)
}

// RunForOrganization executes a stored report with no overrides on behalf of
// a background caller (the scheduled-export runner).
func (s *RunnerServiceImpl) RunForOrganization(ctx context.Context, organizationID, reportID string) (*ReportResult, error) {
	return s.run(ctx, organizationID, reportID, RunOptions{})
}

func (s *RunnerServiceImpl) run(ctx context.Context, organizationID, reportID string, opts RunOptions) (*ReportResult, error) {
	def, err := s.Repo.Get(ctx, organizationID, reportID)
	if err != nil {
		return nil, err
	}

	cfg := BuildConfig(def, opts)

	started := time.Now()
	result, err := s.Executor.Execute(ctx, cfg, organizationID)
	if err != nil {
		// Execution failure (including cancellation/timeout): propagate
		// unchanged, leave run statistics untouched.
		return nil, err
	}
	elapsed := time.Since(started).Milliseconds()

	// Success path only; a stats write failure never fails the run.
	if err := s.Repo.UpdateRunStats(ctx, organizationID, reportID, time.Now(), elapsed, result.TotalCount); err != nil {
		s.Logger.Warn("failed to update run statistics",
			zap.String("report_id", reportID),
			zap.Error(err))
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionReportRun, "report_definitions", reportID, map[string]common_models.Change{
		"row_count": {New: result.TotalCount},
	})

	return result, nil
}

// BuildConfig derives the execution-ready config from a definition and the
// caller's overrides. Override filters, when supplied, replace the stored
// tree entirely; the optional date range is appended after flattening.
func BuildConfig(def *ReportDefinition, opts RunOptions) ReportConfig {
	cfg := ReportConfig{
		EntityType: def.EntityType,
		Columns:    def.Columns,
		GroupBy:    def.GroupBy,
		SortBy:     def.SortBy,
		SortOrder:  def.SortOrder,
		Limit:      defaultRunLimit,
		Offset:     0,
	}

	// Multi-aggregation configurations are accepted for storage but only
	// the first entry is executed.
	if len(def.Aggregation) > 0 {
		agg := def.Aggregation[0]
		cfg.Aggregation = &agg
	}

	tree := def.Filters
	if opts.OverrideFilters != nil {
		tree = opts.OverrideFilters
	}
	cfg.Filters = Flatten(tree)
	cfg.Filters = AppendDateRange(cfg.Filters, opts.DateRangeStart, opts.DateRangeEnd)

	if opts.Limit != nil && *opts.Limit > 0 {
		cfg.Limit = *opts.Limit
	}
	if opts.Offset != nil && *opts.Offset >= 0 {
		cfg.Offset = *opts.Offset
	}

	return cfg
}
