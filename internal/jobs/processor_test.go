package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"fjacquet/budget-analytics/internal/logging"
	"fjacquet/budget-analytics/internal/models"
	"fjacquet/budget-analytics/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v string) *string { return &v }

// fakeLineStore keeps lines in memory and pages them by id.
type fakeLineStore struct {
	mu        sync.Mutex
	lines     map[string]models.TransactionLine
	results   map[string]models.RuleMatchResult
	pages     int
	listErr   error
	assignErr error
}

func newFakeLineStore(lines ...models.TransactionLine) *fakeLineStore {
	f := &fakeLineStore{
		lines:   make(map[string]models.TransactionLine),
		results: make(map[string]models.RuleMatchResult),
	}
	for _, line := range lines {
		f.lines[line.ID] = line
	}
	return f
}

func (f *fakeLineStore) ListUnassigned(_ context.Context, afterID string, limit int) ([]models.TransactionLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages++
	if f.listErr != nil {
		return nil, f.listErr
	}

	var ids []string
	for id, line := range f.lines {
		if line.AnalyticalAccountID == nil && id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	page := make([]models.TransactionLine, 0, len(ids))
	for _, id := range ids {
		page = append(page, f.lines[id])
	}
	return page, nil
}

func (f *fakeLineStore) AssignAnalyticalAccount(_ context.Context, lineID string, result models.RuleMatchResult) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return false, f.assignErr
	}
	line := f.lines[lineID]
	if line.AnalyticalAccountID != nil {
		return false, nil
	}
	line.AnalyticalAccountID = result.AnalyticalAccountID
	f.lines[lineID] = line
	f.results[lineID] = result
	return true, nil
}

func sampleRules() []models.Rule {
	return []models.Rule{
		{ID: "R1", Name: "Marketing", Status: models.RuleStatusConfirmed, AnalyticalAccountID: "CC-MKT", PartnerTagID: ptr("marketing")},
		{ID: "R2", Name: "Draft", Status: models.RuleStatusDraft, AnalyticalAccountID: "CC-DRAFT", ProductID: ptr("X")},
	}
}

func sampleLines() []models.TransactionLine {
	return []models.TransactionLine{
		{ID: "L1", Context: models.TransactionLineContext{PartnerTags: []string{"marketing"}}},
		{ID: "L2", Context: models.TransactionLineContext{ProductID: ptr("X")}},
		{ID: "L3", Context: models.TransactionLineContext{ProductID: ptr("X"), ProductDefaultAnalyticalAccountID: ptr("CC-DEF")}},
		{ID: "L4", Context: models.TransactionLineContext{ManualAnalyticalAccountID: ptr("CC-MAN")}},
		{ID: "L5", AnalyticalAccountID: ptr("CC-OLD")},
	}
}

func TestProcessor_ProcessUnassigned(t *testing.T) {
	lines := newFakeLineStore(sampleLines()...)
	rules := &store.MockRuleSource{Rules: sampleRules()}
	logger := logging.NewMockLogger()
	processor := NewProcessor(rules, lines, 2, logger)

	summary, err := processor.ProcessUnassigned(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Updated)
	assert.Equal(t, models.ResolutionStats{Total: 4, Manual: 1, AutoRule: 1, ProductDefault: 1, Unassigned: 1}, summary.Stats)
	assert.Equal(t, 1, rules.CallCount(), "rules are loaded once per run")
	assert.Equal(t, 3, lines.pages)

	assert.Equal(t, models.SourceAutoRule, lines.results["L1"].Source)
	assert.Equal(t, "R1", lines.results["L1"].RuleID)
	assert.NotContains(t, lines.results, "L2", "NONE results are not stamped")
	assert.Equal(t, "CC-DEF", models.StringValue(lines.results["L3"].AnalyticalAccountID))
	assert.Equal(t, models.SourceManual, lines.results["L4"].Source)
	assert.Equal(t, "CC-OLD", models.StringValue(lines.lines["L5"].AnalyticalAccountID))

	assert.True(t, logger.HasEntry("INFO", "Reclassification run completed"))
}

func TestProcessor_SecondRunOnlyRetriesUnresolved(t *testing.T) {
	lines := newFakeLineStore(sampleLines()...)
	processor := NewProcessor(&store.MockRuleSource{Rules: sampleRules()}, lines, 10, nil)

	_, err := processor.ProcessUnassigned(context.Background())
	require.NoError(t, err)

	summary, err := processor.ProcessUnassigned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 1, summary.Stats.Total)
	assert.Equal(t, 1, summary.Stats.Unassigned)
}

func TestProcessor_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("rules", func(t *testing.T) {
		processor := NewProcessor(&store.MockRuleSource{Err: boom}, newFakeLineStore(), 0, nil)
		_, err := processor.ProcessUnassigned(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("list", func(t *testing.T) {
		lines := newFakeLineStore()
		lines.listErr = boom
		processor := NewProcessor(&store.MockRuleSource{}, lines, 0, nil)
		_, err := processor.ProcessUnassigned(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("assign", func(t *testing.T) {
		lines := newFakeLineStore(sampleLines()...)
		lines.assignErr = boom
		processor := NewProcessor(&store.MockRuleSource{Rules: sampleRules()}, lines, 0, nil)
		_, err := processor.ProcessUnassigned(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		processor := NewProcessor(&store.MockRuleSource{}, newFakeLineStore(sampleLines()...), 0, nil)
		_, err := processor.ProcessUnassigned(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewProcessor_DefaultBatchSize(t *testing.T) {
	processor := NewProcessor(&store.MockRuleSource{}, newFakeLineStore(), -1, nil)
	assert.Equal(t, DefaultBatchSize, processor.batchSize)
}
