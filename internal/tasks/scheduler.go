package tasks

import (
	"fmt"
	"time"

	"emberfront/internal/stepup"
	"emberfront/internal/utils/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler handles periodic maintenance jobs
type Scheduler struct {
	cron   *cron.Cron
	grants *stepup.Registry
	logger *logger.Logger
}

// NewScheduler creates a new task scheduler
func NewScheduler(grants *stepup.Registry, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		grants: grants,
		logger: log,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if err := s.registerTasks(); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	s.logger.Info("starting task scheduler")
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("task scheduler stopped")
}

// registerTasks registers all periodic tasks
func (s *Scheduler) registerTasks() error {
	// Expired corporate grants pile up if nobody polls their status
	// again, so sweep them out every minute.
	if _, err := s.cron.AddFunc("* * * * *", func() {
		if swept := s.grants.Sweep(time.Now()); swept > 0 {
			s.logger.Info("swept %d expired corporate grants", swept)
		}
	}); err != nil {
		return fmt.Errorf("failed to register sweep task: %w", err)
	}

	s.logger.Info("registered all periodic tasks")
	return nil
}
