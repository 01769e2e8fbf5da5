// Package events provides the in-process event bus and the typed payloads
// emitted by the budget service.
package events

import "time"

// EventType names a kind of event.
type EventType string

const (
	// BudgetOptimized is emitted when a run produced an allocation.
	BudgetOptimized EventType = "BUDGET_OPTIMIZED"
	// BudgetInfeasible is emitted when a run ended without an allocation.
	BudgetInfeasible EventType = "BUDGET_INFEASIBLE"
	// SettingsChanged is emitted after a setting was persisted.
	SettingsChanged EventType = "SETTINGS_CHANGED"
	// ErrorOccurred is emitted when a run failed with an error.
	ErrorOccurred EventType = "ERROR_OCCURRED"
	// SystemStatusChanged is emitted when the database health flips.
	SystemStatusChanged EventType = "SYSTEM_STATUS_CHANGED"
)

// AllTypes lists every event type in emission-independent order.
func AllTypes() []EventType {
	return []EventType{BudgetOptimized, BudgetInfeasible, SettingsChanged, ErrorOccurred, SystemStatusChanged}
}

// Event is what subscribers receive.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}
