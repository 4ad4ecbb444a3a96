package report

import (
	"context"
	"errors"
	"testing"
	"time"

	common_models "go-compliance/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRunner(executor Executor) (RunnerService, *fakeReportRepo, *recordingAudit) {
	repo := newFakeReportRepo()
	auditLog := &recordingAudit{}
	return NewRunnerService(repo, executor, auditLog, zap.NewNop()), repo, auditLog
}

func seedDefinition(t *testing.T, repo *fakeReportRepo, def *ReportDefinition) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), def))
}

func TestRunReportEndToEnd(t *testing.T) {
	exec := &fakeExecutor{result: &ReportResult{
		Rows:       []map[string]interface{}{{"title": "Case A"}, {"title": "Case B"}},
		TotalCount: 2,
	}}
	runner, repo, auditLog := newTestRunner(exec)
	actor := testActor()
	ctx := context.Background()

	def := validDefinition()
	def.Filters = []FilterGroup{
		{Logic: "AND", Conditions: []FilterNode{
			{Field: "status", Operator: OpEq, Value: "NEW"},
		}},
	}
	orgID := mustObjectID(t, actor.OrganizationID)
	def.OrganizationID = orgID
	seedDefinition(t, repo, def)

	result, err := runner.Run(ctx, actor, def.ID.Hex(), RunOptions{
		DateRangeStart: "2026-01-01",
		DateRangeEnd:   "2026-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.TotalCount)

	// The executor received the flattened stored filter plus the appended
	// created_at range.
	require.Len(t, exec.lastCfg.Filters, 2)
	assert.Equal(t, FilterCondition{Field: "status", Operator: OpEq, Value: "NEW"}, exec.lastCfg.Filters[0])
	rangeCond := exec.lastCfg.Filters[1]
	assert.Equal(t, "created_at", rangeCond.Field)
	assert.Equal(t, OpBetween, rangeCond.Operator)
	assert.Equal(t, actor.OrganizationID, exec.lastOrg)
	assert.Equal(t, common_models.EntityTypeCases, exec.lastCfg.EntityType)
	assert.Equal(t, defaultRunLimit, exec.lastCfg.Limit)

	// Run statistics were recorded on the definition.
	stored, err := repo.Get(ctx, actor.OrganizationID, def.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, stored.LastRunAt)
	require.NotNil(t, stored.LastRunRowCount)
	assert.Equal(t, int64(2), *stored.LastRunRowCount)
	assert.WithinDuration(t, time.Now(), *stored.LastRunAt, time.Minute)
	assert.True(t, auditLog.has(common_models.AuditActionReportRun))
}

func TestRunReportExecutorFailureLeavesStatsUntouched(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("query timeout")}
	runner, repo, auditLog := newTestRunner(exec)
	actor := testActor()
	ctx := context.Background()

	def := validDefinition()
	def.OrganizationID = mustObjectID(t, actor.OrganizationID)
	seedDefinition(t, repo, def)

	_, err := runner.Run(ctx, actor, def.ID.Hex(), RunOptions{})
	require.Error(t, err)

	stored, err := repo.Get(ctx, actor.OrganizationID, def.ID.Hex())
	require.NoError(t, err)
	assert.Nil(t, stored.LastRunAt)
	assert.Nil(t, stored.LastRunRowCount)
	assert.False(t, auditLog.has(common_models.AuditActionReportRun), "failed runs are not audited as runs")
}

func TestRunReportOverrides(t *testing.T) {
	exec := &fakeExecutor{}
	runner, repo, _ := newTestRunner(exec)
	actor := testActor()
	ctx := context.Background()

	def := validDefinition()
	def.OrganizationID = mustObjectID(t, actor.OrganizationID)
	seedDefinition(t, repo, def)

	limit := int64(50)
	offset := int64(100)
	_, err := runner.Run(ctx, actor, def.ID.Hex(), RunOptions{
		OverrideFilters: []FilterGroup{
			{Logic: "AND", Conditions: []FilterNode{
				{Field: "priority", Operator: OpEq, Value: "HIGH"},
			}},
		},
		Limit:  &limit,
		Offset: &offset,
	})
	require.NoError(t, err)

	// Overrides replace the stored tree entirely.
	require.Len(t, exec.lastCfg.Filters, 1)
	assert.Equal(t, "priority", exec.lastCfg.Filters[0].Field)
	assert.Equal(t, int64(50), exec.lastCfg.Limit)
	assert.Equal(t, int64(100), exec.lastCfg.Offset)
}

func TestRunReportUnknownDefinition(t *testing.T) {
	runner, _, _ := newTestRunner(&fakeExecutor{})
	actor := testActor()

	_, err := runner.Run(context.Background(), actor, "0123456789abcdef01234567", RunOptions{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildConfigFirstAggregationOnly(t *testing.T) {
	def := validDefinition()
	def.Aggregation = []AggregationSpec{
		{Field: "age_days", Function: "avg", Alias: "avg_age"},
		{Field: "age_days", Function: "max"},
	}

	cfg := BuildConfig(def, RunOptions{})
	require.NotNil(t, cfg.Aggregation)
	assert.Equal(t, "avg", cfg.Aggregation.Function)
	assert.Equal(t, "avg_age", cfg.Aggregation.Alias)
}
