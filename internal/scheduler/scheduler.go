package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"membership-portal-backend/internal/jobs"
	"membership-portal-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner. An
// invalid cron spec in the config is returned as an error.
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	schedule := []struct {
		name string
		spec string
		run  func() error
	}{
		{"lapse-notices", cfg.LapseNotices, s.jobs.SendLapseNotices},
		{"expiry-reminders", cfg.SendExpiryReminders, s.jobs.SendExpiryReminders},
		{"pending-payment-digest", cfg.PendingPaymentDigest, s.jobs.SendPendingPaymentDigest},
	}

	for _, job := range schedule {
		run := job.run
		// Failures are already logged and counted by the runner
		if _, err := s.cron.AddFunc(job.spec, func() { _ = run() }); err != nil {
			return fmt.Errorf("failed to register %s job with spec %q: %w", job.name, job.spec, err)
		}
		logger.Info("Registered cron job", "job", job.name, "spec", job.spec)
	}

	logger.Info("All cron jobs registered successfully")
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Entries reports the next run time of every registered job
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}
