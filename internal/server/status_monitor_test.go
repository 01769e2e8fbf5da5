package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/budgetopt/internal/events"
)

type fakeChecker struct {
	mu  sync.Mutex
	err error
}

func (f *fakeChecker) HealthCheck(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeChecker) Name() string { return "config" }

func (f *fakeChecker) set(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func TestStatusMonitor_EmitsOnChange(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	var received []*events.Event
	bus.Subscribe(events.SystemStatusChanged, func(e *events.Event) {
		received = append(received, e)
	})

	checker := &fakeChecker{}
	m := NewStatusMonitor(events.NewManager(bus, zerolog.Nop()), checker, zerolog.Nop())

	m.CheckStatus()
	m.CheckStatus()
	require.Len(t, received, 1)
	assert.Equal(t, true, received[0].Data["healthy"])
	assert.Equal(t, "config", received[0].Data["database"])

	checker.set(errors.New("disk I/O error"))
	m.CheckStatus()
	m.CheckStatus()
	require.Len(t, received, 2)
	assert.Equal(t, false, received[1].Data["healthy"])
	assert.Equal(t, "disk I/O error", received[1].Data["error"])

	checker.set(nil)
	m.CheckStatus()
	assert.Len(t, received, 3)
}

func TestStatusMonitor_StartStop(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	checked := make(chan struct{}, 1)
	bus.Subscribe(events.SystemStatusChanged, func(*events.Event) {
		select {
		case checked <- struct{}{}:
		default:
		}
	})

	m := NewStatusMonitor(events.NewManager(bus, zerolog.Nop()), &fakeChecker{}, zerolog.Nop())
	m.Start(time.Hour)
	m.Start(time.Hour)

	select {
	case <-checked:
	case <-time.After(5 * time.Second):
		t.Fatal("initial check did not run")
	}

	m.Stop()
	m.Stop()
}
