package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"astro-digest/shared/config"
	"astro-digest/shared/monitoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testMetrics string

func (m testMetrics) GetSummary() string { return string(m) }

type fakeAgent struct {
	initErr    error
	runErr     error
	partialErr error
	runs       int
}

func (f *fakeAgent) Name() string { return "Fake Agent" }

func (f *fakeAgent) Initialize() error { return f.initErr }

func (f *fakeAgent) RunOnce(_ context.Context, events *AgentEvents) error {
	f.runs++
	if f.runErr != nil {
		return f.runErr
	}
	if f.partialErr != nil {
		events.OnPartialFailure(f.partialErr, time.Millisecond)
	}
	events.OnSuccess(testMetrics("fetched 3 papers"), time.Millisecond)
	return nil
}

func newTestScheduler(agent Agent, schedule string) (*Scheduler, *monitoring.Monitor) {
	cfg := config.Default()
	cfg.Schedule = schedule
	cfg.Monitoring.HealthPort = -1
	monitor := monitoring.NewMonitor(zap.NewNop())
	return New(&cfg, agent, monitor, zap.NewNop()), monitor
}

func TestRunOnceSuccess(t *testing.T) {
	agent := &fakeAgent{partialErr: errors.New("email not delivered")}
	s, monitor := newTestScheduler(agent, "0 0 9 * * *")

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, agent.runs)
	assert.True(t, monitor.IsHealthy())
	assert.Contains(t, monitor.GetStatusSummary(), "fetched 3 papers")
}

func TestRunOnceFailure(t *testing.T) {
	runErr := errors.New("arXiv unreachable")
	agent := &fakeAgent{runErr: runErr}
	s, monitor := newTestScheduler(agent, "0 0 9 * * *")

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, runErr)
	assert.Contains(t, err.Error(), "Fake Agent run failed")
	assert.False(t, monitor.IsHealthy())
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s, _ := newTestScheduler(&fakeAgent{}, "every morning")

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add cron job")
}

func TestStartFailsWhenInitializeFails(t *testing.T) {
	s, _ := newTestScheduler(&fakeAgent{initErr: errors.New("missing key")}, "0 0 9 * * *")

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize agent")
}

func TestStartRunsOnScheduleUntilCancelled(t *testing.T) {
	agent := &fakeAgent{}
	s, _ := newTestScheduler(agent, "* * * * * *")

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	err := s.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, agent.runs, 1)
}
