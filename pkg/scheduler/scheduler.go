// Package scheduler runs periodic background jobs until their context is cancelled.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"rss-digest/pkg/logging"
)

// Job is a periodic background task.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs on their intervals.
type Scheduler struct {
	jobs   []Job
	logger *zap.Logger
	wg     sync.WaitGroup
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logging.OrNop(logger)}
}

// Add registers j. Jobs with a non-positive interval are ignored.
func (s *Scheduler) Add(j Job) {
	if j.Interval <= 0 {
		return
	}
	s.jobs = append(s.jobs, j)
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.jobs)
}

// Start launches every job in its own goroutine. Each job runs once right
// away and then on every tick until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.run(ctx, j)
	}
}

// Wait blocks until every job goroutine has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, j Job) {
	defer s.wg.Done()

	s.execute(ctx, j)

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("job stopping", zap.String("job", j.Name))
			return
		case <-ticker.C:
			s.execute(ctx, j)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, j Job) {
	if ctx.Err() != nil {
		return
	}

	jobCtx := ctx
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := j.Fn(jobCtx); err != nil {
		s.logger.Error("job failed", zap.String("job", j.Name), zap.Error(err))
		return
	}
	s.logger.Debug("job finished", zap.String("job", j.Name), zap.Duration("duration", time.Since(start)))
}
