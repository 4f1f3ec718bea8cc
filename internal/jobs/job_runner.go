package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"membership-portal-backend/internal/config"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/metrics"
	"membership-portal-backend/internal/repository"
	"membership-portal-backend/internal/service"
)

const jobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	users    repository.UserRepository
	payments repository.PaymentRepository
	email    service.EmailService
	config   *config.Config
	now      func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(
	users repository.UserRepository,
	payments repository.PaymentRepository,
	email service.EmailService,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		users:    users,
		payments: payments,
		email:    email,
		config:   cfg,
		now:      time.Now,
	}
}

// Config exposes the schedule the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery, a deadline, and
// the job run counter
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	ctx = logger.NewContext(ctx, logger.Get().With("job", jobName))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		result := "success"
		if err != nil {
			result = "failure"
		}
		metrics.JobRunsTotal.WithLabelValues(jobName, result).Inc()
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	if err = jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return err
	}
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
	return nil
}

// Jobs maps job names to their entry points
func (jr *JobRunner) Jobs() map[string]func() error {
	return map[string]func() error{
		"lapse-notices":          jr.SendLapseNotices,
		"expiry-reminders":       jr.SendExpiryReminders,
		"pending-payment-digest": jr.SendPendingPaymentDigest,
	}
}

// JobNames lists the registered job names in a stable order
func (jr *JobRunner) JobNames() []string {
	names := make([]string, 0, 3)
	for name := range jr.Jobs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunJob runs a single job by name (for manual execution)
func (jr *JobRunner) RunJob(name string) error {
	job, ok := jr.Jobs()[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return job()
}

// RunAllDailyJobs runs all daily jobs (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() error {
	var failed []string
	for _, name := range []string{"lapse-notices", "expiry-reminders", "pending-payment-digest"} {
		if err := jr.RunJob(name); err != nil {
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("jobs failed: %v", failed)
	}
	return nil
}
