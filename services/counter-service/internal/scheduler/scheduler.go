package scheduler

import (
	"context"
	"time"

	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/utils"
)

// Job runs once per firing of the scheduler.
type Job interface {
	Name() string
	Run(ctx context.Context, now time.Time) error
}

// Scheduler fires its jobs every day at 00:00 UTC.
type Scheduler struct {
	jobs     []Job
	now      func() time.Time
	timeout  time.Duration
	logger   *logger.Logger
	stopChan chan struct{}
	done     chan struct{}
}

func NewScheduler(logger *logger.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		now:      func() time.Time { return time.Now().UTC() },
		timeout:  10 * time.Minute,
		logger:   logger.With("component", "scheduler"),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start blocks until Stop is called.
func (s *Scheduler) Start() {
	defer close(s.done)

	next := utils.NextMidnight(s.now())
	s.logger.Info("Next maintenance run scheduled", "at", next.Format(time.RFC3339), "in", next.Sub(s.now()).String())

	timer := time.NewTimer(next.Sub(s.now()))

	for {
		select {
		case <-timer.C:
			now := s.now()
			s.RunOnce(now)

			next = utils.NextMidnight(now)
			timer.Reset(next.Sub(s.now()))

		case <-s.stopChan:
			timer.Stop()
			s.logger.Info("Maintenance scheduler stopped")
			return
		}
	}
}

// RunOnce executes every job in order. A failing job does not stop the rest.
func (s *Scheduler) RunOnce(now time.Time) {
	for _, job := range s.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		start := time.Now()

		if err := job.Run(ctx, now); err != nil {
			s.logger.Error("Maintenance job failed", "job", job.Name(), "error", err)
		} else {
			s.logger.Info("Maintenance job completed", "job", job.Name(), "duration", time.Since(start))
		}

		cancel()
	}
}

func (s *Scheduler) Stop() {
	close(s.stopChan)
	<-s.done
}
