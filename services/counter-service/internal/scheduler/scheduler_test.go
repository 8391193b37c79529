package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/devayla/base-counter/common/logger"
)

type recordingJob struct {
	name string
	err  error
	runs []time.Time
}

func (j *recordingJob) Name() string { return j.name }

func (j *recordingJob) Run(ctx context.Context, now time.Time) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("job context has no deadline")
	}
	j.runs = append(j.runs, now)
	return j.err
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	failing := &recordingJob{name: "failing", err: errors.New("table unavailable")}
	healthy := &recordingJob{name: "healthy"}
	s := NewScheduler(logger.Nop(), failing, healthy)

	at := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	s.RunOnce(at)

	assert.Equal(t, []time.Time{at}, failing.runs)
	assert.Equal(t, []time.Time{at}, healthy.runs)
}

func TestStopEndsStart(t *testing.T) {
	s := NewScheduler(logger.Nop())
	go s.Start()

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
