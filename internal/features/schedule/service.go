package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReportRunner executes a saved report on behalf of the scheduler. Defined
// here so this package stays independent of the report feature.
type ReportRunner interface {
	RunForOrganization(ctx context.Context, organizationID, reportID string) (rowCount int64, err error)
}

type SchedulerService interface {
	Create(ctx context.Context, organizationID string, rec *ScheduleRecord) (*ScheduleRecord, error)
	Get(ctx context.Context, organizationID, id string) (*ScheduleRecord, error)
	Update(ctx context.Context, organizationID, id string, rec *ScheduleRecord) (*ScheduleRecord, error)
	Delete(ctx context.Context, organizationID, id string) error
	Pause(ctx context.Context, organizationID, id string) (*ScheduleRecord, error)
	Resume(ctx context.Context, organizationID, id string) (*ScheduleRecord, error)
	RunNow(ctx context.Context, organizationID, id string) (*ScheduleRecord, error)
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
}

type SchedulerServiceImpl struct {
	Repo   ScheduleRepository
	Runner ReportRunner
	Logger *zap.Logger

	scheduler  *cron.Cron
	jobEntries map[string]cron.EntryID
	mu         sync.RWMutex
}

func NewSchedulerService(repo ScheduleRepository, runner ReportRunner, logger *zap.Logger) SchedulerService {
	return &SchedulerServiceImpl{
		Repo:       repo,
		Runner:     runner,
		Logger:     logger,
		jobEntries: make(map[string]cron.EntryID),
	}
}

// cronExpression builds a standard 5-field cron spec from the schedule
// shape. Time is a 24h "15:04" clock value.
func cronExpression(rec *ScheduleRecord) (string, error) {
	t, err := time.Parse("15:04", rec.ScheduleConfig.Time)
	if err != nil {
		return "", fmt.Errorf("invalid schedule time %q: %w", rec.ScheduleConfig.Time, err)
	}

	switch rec.ScheduleType {
	case ScheduleDaily:
		return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
	case ScheduleWeekly:
		dow := rec.ScheduleConfig.DayOfWeek
		if dow < 0 || dow > 6 {
			return "", fmt.Errorf("invalid day of week %d", dow)
		}
		return fmt.Sprintf("%d %d * * %d", t.Minute(), t.Hour(), dow), nil
	case ScheduleMonthly:
		dom := rec.ScheduleConfig.DayOfMonth
		if dom < 1 || dom > 31 {
			return "", fmt.Errorf("invalid day of month %d", dom)
		}
		return fmt.Sprintf("%d %d %d * *", t.Minute(), t.Hour(), dom), nil
	default:
		return "", fmt.Errorf("unknown schedule type %q", rec.ScheduleType)
	}
}

func (s *SchedulerServiceImpl) computeNextRun(rec *ScheduleRecord) (*time.Time, error) {
	expr, err := cronExpression(rec)
	if err != nil {
		return nil, err
	}
	spec, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, err
	}

	loc := time.UTC
	if rec.Timezone != "" {
		if l, err := time.LoadLocation(rec.Timezone); err == nil {
			loc = l
		}
	}
	next := spec.Next(time.Now().In(loc))
	return &next, nil
}

func (s *SchedulerServiceImpl) Create(ctx context.Context, organizationID string, rec *ScheduleRecord) (*ScheduleRecord, error) {
	next, err := s.computeNextRun(rec)
	if err != nil {
		return nil, err
	}
	rec.NextRunAt = next
	rec.IsActive = true

	if err := s.Repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	if err := s.registerJob(rec); err != nil {
		s.Logger.Warn("failed to register schedule", zap.String("schedule_id", rec.ID.Hex()), zap.Error(err))
	}
	return rec, nil
}

func (s *SchedulerServiceImpl) Get(ctx context.Context, organizationID, id string) (*ScheduleRecord, error) {
	return s.Repo.Get(ctx, organizationID, id)
}

func (s *SchedulerServiceImpl) Update(ctx context.Context, organizationID, id string, rec *ScheduleRecord) (*ScheduleRecord, error) {
	existing, err := s.Repo.Get(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	// Identity and bookkeeping fields are not caller controlled.
	rec.ID = existing.ID
	rec.OrganizationID = existing.OrganizationID
	rec.ReportID = existing.ReportID
	rec.CreatedAt = existing.CreatedAt
	rec.LastRunAt = existing.LastRunAt
	rec.IsActive = existing.IsActive

	next, err := s.computeNextRun(rec)
	if err != nil {
		return nil, err
	}
	rec.NextRunAt = next

	if err := s.Repo.Replace(ctx, organizationID, id, rec); err != nil {
		return nil, err
	}

	s.unregisterJob(id)
	if rec.IsActive {
		if err := s.registerJob(rec); err != nil {
			s.Logger.Warn("failed to re-register schedule", zap.String("schedule_id", id), zap.Error(err))
		}
	}
	return rec, nil
}

func (s *SchedulerServiceImpl) Delete(ctx context.Context, organizationID, id string) error {
	if err := s.Repo.Delete(ctx, organizationID, id); err != nil {
		return err
	}
	s.unregisterJob(id)
	return nil
}

func (s *SchedulerServiceImpl) Pause(ctx context.Context, organizationID, id string) (*ScheduleRecord, error) {
	return s.setActive(ctx, organizationID, id, false)
}

func (s *SchedulerServiceImpl) Resume(ctx context.Context, organizationID, id string) (*ScheduleRecord, error) {
	return s.setActive(ctx, organizationID, id, true)
}

func (s *SchedulerServiceImpl) setActive(ctx context.Context, organizationID, id string, active bool) (*ScheduleRecord, error) {
	rec, err := s.Repo.Get(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	rec.IsActive = active
	if active {
		next, err := s.computeNextRun(rec)
		if err != nil {
			return nil, err
		}
		rec.NextRunAt = next
	} else {
		rec.NextRunAt = nil
	}

	if err := s.Repo.Replace(ctx, organizationID, id, rec); err != nil {
		return nil, err
	}

	if active {
		if err := s.registerJob(rec); err != nil {
			s.Logger.Warn("failed to register schedule", zap.String("schedule_id", id), zap.Error(err))
		}
	} else {
		s.unregisterJob(id)
	}
	return rec, nil
}

func (s *SchedulerServiceImpl) RunNow(ctx context.Context, organizationID, id string) (*ScheduleRecord, error) {
	rec, err := s.Repo.Get(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	if err := s.execute(ctx, rec); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, organizationID, id)
}

// execute runs the bound report and stamps the run bookkeeping. Delivery
// (file rendering, email) is owned by a downstream service; the row count is
// logged here for traceability.
func (s *SchedulerServiceImpl) execute(ctx context.Context, rec *ScheduleRecord) error {
	rows, err := s.Runner.RunForOrganization(ctx, rec.OrganizationID.Hex(), rec.ReportID.Hex())
	if err != nil {
		s.Logger.Error("scheduled export run failed",
			zap.String("schedule_id", rec.ID.Hex()),
			zap.String("report_id", rec.ReportID.Hex()),
			zap.Error(err))
		return err
	}

	s.Logger.Info("scheduled export run complete",
		zap.String("schedule_id", rec.ID.Hex()),
		zap.String("format", string(rec.Format)),
		zap.Int("recipients", len(rec.Recipients)),
		zap.Int64("rows", rows))

	now := time.Now()
	rec.LastRunAt = &now
	if next, err := s.computeNextRun(rec); err == nil {
		rec.NextRunAt = next
	}
	return s.Repo.Replace(ctx, rec.OrganizationID.Hex(), rec.ID.Hex(), rec)
}

func (s *SchedulerServiceImpl) registerJob(rec *ScheduleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return nil // scheduler not started yet; InitializeScheduler picks it up
	}

	expr, err := cronExpression(rec)
	if err != nil {
		return err
	}

	id := rec.ID.Hex()
	record := *rec
	entryID, err := s.scheduler.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.execute(ctx, &record); err != nil {
			s.Logger.Error("scheduled run failed", zap.String("schedule_id", id), zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.jobEntries[id] = entryID
	return nil
}

func (s *SchedulerServiceImpl) unregisterJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.jobEntries[id]; ok && s.scheduler != nil {
		s.scheduler.Remove(entryID)
	}
	delete(s.jobEntries, id)
}

func (s *SchedulerServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.mu.Lock()
	s.scheduler = cron.New()
	s.mu.Unlock()

	recs, err := s.Repo.ListActive(ctx)
	if err != nil {
		return err
	}
	for i := range recs {
		if err := s.registerJob(&recs[i]); err != nil {
			s.Logger.Warn("skipping schedule with invalid spec",
				zap.String("schedule_id", recs[i].ID.Hex()),
				zap.Error(err))
		}
	}

	s.scheduler.Start()
	s.Logger.Info("export scheduler started", zap.Int("schedules", len(recs)))
	return nil
}

func (s *SchedulerServiceImpl) StopScheduler() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	return nil
}
