// Package mqtt publishes switch state changes with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// Topic is the MQTT topic for switch state-change events.
const Topic = "sensors/switch/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "sensors/switch/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a state-change event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Event is one debounced state change reported by the engine.
type Event struct {
	Timestamp time.Time
	Switch    string // configured switch name
	State     string // label of the new output state
	Previous  string // label of the prior output state
	Value     uint8  // numeric output state
	Mapped    uint8  // mapping-table value for the new state
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Switch SwitchPayload `json:"switch"`
}

// SwitchPayload contains the state-change details.
type SwitchPayload struct {
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
	State     string `json:"state"`
	Previous  string `json:"previous"`
	Value     uint8  `json:"value"`
	Mapped    uint8  `json:"mapped"`
}

// FormatPayload creates the JSON payload for a state-change event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Switch: SwitchPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Name:      event.Switch,
			State:     event.State,
			Previous:  event.Previous,
			Value:     event.Value,
			Mapped:    event.Mapped,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
