package events

import (
	"encoding/json"
	"time"
)

// EventData is implemented by every typed payload.
type EventData interface {
	EventType() EventType
}

// BudgetOptimizedData describes a run that produced an allocation.
type BudgetOptimizedData struct {
	RunID      string           `json:"run_id"`
	Status     string           `json:"status"`
	Income     int64            `json:"income"`
	Loss       int64            `json:"loss"`
	Allocation map[string]int64 `json:"allocation"`
	Nodes      int64            `json:"nodes"`
	DurationMS float64          `json:"duration_ms"`
}

// EventType returns BudgetOptimized.
func (d *BudgetOptimizedData) EventType() EventType {
	return BudgetOptimized
}

// BudgetInfeasibleData describes a run that ended without an allocation.
// StopReason tells why the search ended before exhausting the tree.
type BudgetInfeasibleData struct {
	RunID      string  `json:"run_id"`
	Status     string  `json:"status"`
	Income     int64   `json:"income"`
	StopReason string  `json:"stop_reason,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// EventType returns BudgetInfeasible.
func (d *BudgetInfeasibleData) EventType() EventType {
	return BudgetInfeasible
}

// SettingsChangedData contains data for SettingsChanged events
type SettingsChangedData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// EventType returns SettingsChanged.
func (d *SettingsChangedData) EventType() EventType {
	return SettingsChanged
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns ErrorOccurred.
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// SystemStatusData reports the health of the settings database.
type SystemStatusData struct {
	Healthy  bool   `json:"healthy"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// EventType returns SystemStatusChanged.
func (d *SystemStatusData) EventType() EventType {
	return SystemStatusChanged
}

// GenericEventData carries payloads of types without a struct.
type GenericEventData struct {
	Type EventType              `json:"-"`
	Data map[string]interface{} `json:"-"`
}

// EventType returns the stored type.
func (d *GenericEventData) EventType() EventType {
	return d.Type
}

// MarshalJSON encodes only the payload map.
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// UnmarshalJSON decodes into the payload map.
func (d *GenericEventData) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Data)
}

// EventWithData is an event whose payload keeps its concrete type. It is
// what the stream decoder in clients works with.
type EventWithData struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

// MarshalJSON customizes JSON serialization for EventWithData
func (e *EventWithData) MarshalJSON() ([]byte, error) {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if e.Data != nil {
		dataBytes, err := json.Marshal(e.Data)
		if err != nil {
			return nil, err
		}
		aux.Data = dataBytes
	}

	return json.Marshal(aux)
}

// UnmarshalJSON picks the payload struct from the event type.
func (e *EventWithData) UnmarshalJSON(data []byte) error {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if len(aux.Data) == 0 || string(aux.Data) == "null" {
		e.Data = nil
		return nil
	}

	eventData := newEventData(aux.Type)
	if err := json.Unmarshal(aux.Data, eventData); err != nil {
		return err
	}
	e.Data = eventData
	return nil
}

func newEventData(t EventType) EventData {
	switch t {
	case BudgetOptimized:
		return &BudgetOptimizedData{}
	case BudgetInfeasible:
		return &BudgetInfeasibleData{}
	case SettingsChanged:
		return &SettingsChangedData{}
	case ErrorOccurred:
		return &ErrorEventData{}
	case SystemStatusChanged:
		return &SystemStatusData{}
	default:
		return &GenericEventData{Type: t}
	}
}

// toMap flattens a typed payload into the map form the bus carries.
func toMap(data EventData) (map[string]interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
