// Package scheduler runs periodic background jobs such as expiring overdue quotations.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/salescrm/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// JobFunc performs one run of a job. The returned count is logged as the number
// of items processed.
type JobFunc func(ctx context.Context) (int, error)

// Job is a function run on a fixed interval
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	// RunOnStart runs the job immediately instead of waiting a full interval
	RunOnStart bool
	Run        JobFunc
}

func (j Job) validate() error {
	if j.Name == "" || j.Interval <= 0 || j.Run == nil {
		return fmt.Errorf("%w: %q", ErrInvalidJob, j.Name)
	}
	return nil
}

// RunStats records the outcome of the latest run of a job
type RunStats struct {
	Runs      int
	Failures  int
	LastRunAt time.Time
	LastCount int
	LastError string
}

// Scheduler runs registered jobs in their own goroutines until stopped
type Scheduler struct {
	logger *zap.Logger
	jobs   map[string]Job
	stats  map[string]RunStats

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// New creates an empty scheduler
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		jobs:   make(map[string]Job),
		stats:  make(map[string]RunStats),
	}
}

// Register adds a job. Jobs registered after Start run from the next Start.
func (s *Scheduler) Register(job Job) error {
	if err := job.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = job
	return nil
}

// Start launches every registered job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels the jobs and waits for in-flight runs or ctx expiry
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Trigger runs a job once, synchronously
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	running := s.isRunning
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if !running {
		return ErrSchedulerNotRunning
	}
	return s.execute(ctx, job)
}

// Stats returns the run statistics of a job
func (s *Scheduler) Stats(name string) (RunStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[name]
	return st, ok
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	if job.RunOnStart {
		_ = s.execute(ctx, job)
	}
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.logger.Info("Job scheduled", zap.String("job", job.Name), zap.Duration("interval", job.Interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Job loop stopping", zap.String("job", job.Name))
			return
		case <-ticker.C:
			_ = s.execute(ctx, job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) error {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}
	ctx, span := telemetry.StartSpan(ctx, "job."+job.Name, "job", job.Name)
	defer span.End()

	start := time.Now()
	count, err := job.Run(ctx)
	duration := time.Since(start)

	s.mu.Lock()
	st := s.stats[job.Name]
	st.Runs++
	st.LastRunAt = start
	st.LastCount = count
	st.LastError = ""
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
	}
	s.stats[job.Name] = st
	s.mu.Unlock()

	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Job failed",
			zap.String("job", job.Name),
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}
	s.logger.Info("Job completed",
		zap.String("job", job.Name),
		zap.Duration("duration", duration),
		zap.Int("processed", count))
	return nil
}
