// Package mqtt provides MQTT publishing and remote command delivery with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/rs/xid"

	"github.com/sweeney/room-controller/internal/logic"
)

// Topic is the MQTT topic for controller events.
const Topic = "home/room/controller/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/room/controller/system"

// TopicCommand is the MQTT topic remote commands are received on. Each byte of
// a payload is one command character, as on the serial line.
const TopicCommand = "home/room/controller/command"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a controller event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(at time.Time, event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandSource delivers remote command bytes.
type CommandSource interface {
	// SubscribeCommands calls handler for each command byte received.
	SubscribeCommands(handler func(byte)) error
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
	Room RoomPayload `json:"room"`
}

// RoomPayload contains the controller event details.
type RoomPayload struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Tick        uint32 `json:"tick_ms"`
	Event       string `json:"event"`
	Source      string `json:"source,omitempty"`
	Command     string `json:"command,omitempty"`
	Door        string `json:"door"`
	LampPercent uint8  `json:"lamp_percent"`
}

// DoorString returns the wire representation of the door state.
func DoorString(open bool) string {
	if open {
		return "OPEN"
	}
	return "CLOSED"
}

// FormatPayload creates the JSON payload for a controller event. Each
// payload carries a fresh id so consumers can drop replays of buffered messages.
func FormatPayload(at time.Time, event logic.Event) ([]byte, error) {
	p := RoomPayload{
		ID:          xid.NewWithTime(at).String(),
		Timestamp:   at.UTC().Format(time.RFC3339),
		Tick:        uint32(event.Tick),
		Event:       string(event.Type),
		Source:      string(event.Source),
		Door:        DoorString(event.DoorOpen),
		LampPercent: event.Duty,
	}
	if event.Command != logic.CmdUnknown || event.Type == logic.EventUnknownCommand {
		p.Command = event.Command.String()
	}
	return json.Marshal(Payload{Room: p})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
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
