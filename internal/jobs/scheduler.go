package jobs

import (
	"context"
	"fmt"
	"time"

	"fjacquet/budget-analytics/internal/logging"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the job every day at 18:00.
const DefaultSchedule = "0 18 * * *"

// SchedulerConfig holds the cron settings of the reclassification job.
type SchedulerConfig struct {
	Schedule string
	TimeZone string
	Timeout  time.Duration
}

// Scheduler triggers a Processor on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	processor *Processor
	timeout   time.Duration
	logger    logging.Logger
}

// NewScheduler registers processor on the configured schedule. An invalid
// time zone falls back to UTC with a warning.
func NewScheduler(cfg SchedulerConfig, processor *Processor, logger logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Hour
	}

	loc := time.UTC
	if cfg.TimeZone != "" {
		parsed, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			logger.WithError(err).Warn(fmt.Sprintf("Invalid timezone %s, falling back to UTC", cfg.TimeZone))
		} else {
			loc = parsed
		}
	}

	s := &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		processor: processor,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
	if _, err := s.cron.AddFunc(cfg.Schedule, s.run); err != nil {
		return nil, fmt.Errorf("unable to schedule reclassification job: %w", err)
	}

	logger.WithFields(
		logging.Field{Key: "schedule", Value: cfg.Schedule},
		logging.Field{Key: "time_zone", Value: loc.String()},
	).Info("Reclassification scheduler configured")
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Info("Starting reclassification job")
	if _, err := s.processor.ProcessUnassigned(ctx); err != nil {
		s.logger.WithError(err).Error("Reclassification job failed")
	}
}

// Start begins firing the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
