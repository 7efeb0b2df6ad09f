package monitoring

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Monitor remembers the outcome of the latest run
type Monitor struct {
	mu             sync.RWMutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
	logger         *zap.Logger
}

func NewMonitor(logger *zap.Logger) *Monitor {
	return &Monitor{logger: logger.Named("monitor")}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.mu.Unlock()

	m.logger.Info("Run completed successfully", zap.String("summary", summary), zap.Duration("duration", duration))
}

// RecordPartialFailure logs a degraded run without changing health status
func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	m.logger.Warn("Partial failure", zap.Error(err), zap.Duration("duration", duration))
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastSummary = err.Error()
	m.mu.Unlock()

	m.logger.Error("Critical failure", zap.Error(err), zap.Duration("duration", duration))
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return true // No runs yet
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}

	if m.lastRunSuccess {
		return fmt.Sprintf("Last run: %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
	}
	return fmt.Sprintf("Last run failed: %s (%s)", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
}
