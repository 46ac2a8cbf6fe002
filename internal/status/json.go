package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Door          string       `json:"door"`
	LampPercent   uint8        `json:"lamp_percent"`
	Baseline      uint8        `json:"baseline_percent"`
	Ramp          RampJSON     `json:"ramp"`
	Restore       RestoreJSON  `json:"restore"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// RampJSON reports the brightness ramp.
type RampJSON struct {
	Active      bool  `json:"active"`
	NextPercent uint8 `json:"next_percent,omitempty"`
}

// RestoreJSON reports a pending lamp restoration.
type RestoreJSON struct {
	Pending bool   `json:"pending"`
	FromMs  uint32 `json:"from_tick_ms,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Opens         int `json:"opens"`
	Closes        int `json:"closes"`
	AutoCloses    int `json:"auto_closes"`
	Restorations  int `json:"restorations"`
	Ramps         int `json:"ramps"`
	BouncesDenied int `json:"bounces_denied"`
	Unknown       int `json:"unknown_commands"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs      int64  `json:"tick_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	SerialPort  string `json:"serial_port"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

// DoorString returns the wire form of the door state, or UNKNOWN before
// the controller has started.
func DoorString(snap Snapshot) string {
	switch {
	case !snap.Ready:
		return "UNKNOWN"
	case snap.Room.DoorOpen:
		return "OPEN"
	}
	return "CLOSED"
}

func buildInner(snap Snapshot) StatusInner {
	room := snap.Room
	inner := StatusInner{
		Door:          DoorString(snap),
		LampPercent:   room.Duty,
		Baseline:      room.Baseline,
		Ramp:          RampJSON{Active: room.RampActive},
		Restore:       RestoreJSON{Pending: room.RestorePending},
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Opens:         room.Counts.Opens,
			Closes:        room.Counts.Closes,
			AutoCloses:    room.Counts.AutoCloses,
			Restorations:  room.Counts.Restorations,
			Ramps:         room.Counts.Ramps,
			BouncesDenied: room.Counts.BouncesDenied,
			Unknown:       room.Counts.Unknown,
		},
		Config: ConfigJSON{
			TickMs:      snap.Config.TickMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			SerialPort:  snap.Config.SerialPort,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	if room.RampActive {
		inner.Ramp.NextPercent = room.RampNext
	}
	if room.RestorePending {
		inner.Restore.FromMs = uint32(room.RestoreFrom)
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
