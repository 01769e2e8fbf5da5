package events

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Manager emits events on the bus and logs them.
type Manager struct {
	bus *Bus
	log zerolog.Logger
}

// NewManager creates a manager emitting on bus.
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("component", "events").Logger(),
	}
}

// Bus returns the underlying bus.
func (m *Manager) Bus() *Bus {
	return m.bus
}

// Emit logs and publishes an event with a free-form payload.
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}

	logEvent := m.log.Info().
		Str("event_type", string(eventType)).
		Str("module", module)
	if raw, err := json.Marshal(data); err == nil {
		logEvent = logEvent.RawJSON("data", raw)
	}
	logEvent.Msg("Event emitted")

	m.bus.Emit(eventType, module, data)
}

// EmitTyped publishes a typed payload under its own event type.
func (m *Manager) EmitTyped(module string, data EventData) {
	payload, err := toMap(data)
	if err != nil {
		m.log.Error().
			Err(err).
			Str("event_type", string(data.EventType())).
			Msg("Failed to encode event data")
		return
	}
	m.Emit(data.EventType(), module, payload)
}

// EmitError publishes an ErrorOccurred event.
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	m.EmitTyped(module, &ErrorEventData{
		Error:   err.Error(),
		Context: context,
	})
}
