package jobs

import (
	"testing"

	"fjacquet/budget-analytics/internal/logging"
	"fjacquet/budget-analytics/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	processor := NewProcessor(&store.MockRuleSource{}, newFakeLineStore(), 10, nil)
	logger := logging.NewMockLogger()

	scheduler, err := NewScheduler(SchedulerConfig{Schedule: "*/5 * * * *", TimeZone: "Europe/Zurich"}, processor, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, scheduler.Entries())
	assert.True(t, logger.HasEntry("INFO", "Reclassification scheduler configured"))

	scheduler.Start()
	scheduler.Stop()
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	processor := NewProcessor(&store.MockRuleSource{}, newFakeLineStore(), 10, nil)

	_, err := NewScheduler(SchedulerConfig{Schedule: "every day"}, processor, nil)
	assert.Error(t, err)
}

func TestNewScheduler_InvalidTimeZoneFallsBack(t *testing.T) {
	processor := NewProcessor(&store.MockRuleSource{}, newFakeLineStore(), 10, nil)
	logger := logging.NewMockLogger()

	scheduler, err := NewScheduler(SchedulerConfig{TimeZone: "Mars/Olympus"}, processor, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, scheduler.Entries())
	assert.Len(t, logger.GetEntriesByLevel("WARN"), 1)
}

func TestScheduler_RunLogsFailure(t *testing.T) {
	processor := NewProcessor(&store.MockRuleSource{Err: assert.AnError}, newFakeLineStore(), 10, nil)
	logger := logging.NewMockLogger()

	scheduler, err := NewScheduler(SchedulerConfig{}, processor, logger)
	require.NoError(t, err)

	scheduler.run()
	assert.True(t, logger.HasEntry("ERROR", "Reclassification job failed"))
}
