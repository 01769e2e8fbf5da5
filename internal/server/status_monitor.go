package server

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/budgetopt/internal/events"
)

// HealthChecker is satisfied by *database.DB.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	Name() string
}

// StatusMonitor periodically checks database health and emits an event
// whenever it changes
type StatusMonitor struct {
	eventManager *events.Manager
	db           HealthChecker
	log          zerolog.Logger

	mu          sync.Mutex
	lastHealthy *bool
	stop        chan struct{}
	done        chan struct{}
}

// NewStatusMonitor creates a new status monitor
func NewStatusMonitor(eventManager *events.Manager, db HealthChecker, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		eventManager: eventManager,
		db:           db,
		log:          log.With().Str("component", "status_monitor").Logger(),
	}
}

// Start begins periodic status monitoring
func (m *StatusMonitor) Start(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.monitor(interval, m.stop, m.done)
}

// Stop ends monitoring and waits for the loop to exit
func (m *StatusMonitor) Stop() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// monitor runs the periodic monitoring loop
func (m *StatusMonitor) monitor(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Do initial check
	m.CheckStatus()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.CheckStatus()
		}
	}
}

// CheckStatus runs one health check and emits SystemStatusChanged on the
// first check and on every change.
func (m *StatusMonitor) CheckStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := m.db.HealthCheck(ctx)
	healthy := err == nil

	m.mu.Lock()
	changed := m.lastHealthy == nil || *m.lastHealthy != healthy
	m.lastHealthy = &healthy
	m.mu.Unlock()

	if !changed {
		return
	}

	data := &events.SystemStatusData{Healthy: healthy, Database: m.db.Name()}
	if err != nil {
		data.Error = err.Error()
		m.log.Error().Err(err).Msg("Database became unhealthy")
	} else {
		m.log.Info().Msg("Database healthy")
	}

	if m.eventManager != nil {
		m.eventManager.EmitTyped("status_monitor", data)
	}
}
