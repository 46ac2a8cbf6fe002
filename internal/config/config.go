// Package config loads the room-controller daemon configuration.
// It covers hardware and transport wiring only; controller timing is fixed.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/room-controller/internal/gpio"
	"github.com/sweeney/room-controller/internal/mqtt"
	"github.com/sweeney/room-controller/internal/serial"
)

// Config represents the daemon configuration.
type Config struct {
	Log       LogConfig    `yaml:"log"`
	GPIO      GPIOConfig   `yaml:"gpio"`
	Serial    SerialConfig `yaml:"serial"`
	MQTT      MQTTConfig   `yaml:"mqtt"`
	HTTP      HTTPConfig   `yaml:"http"`
	Tick      Duration     `yaml:"tick"`      // controller tick interval
	Heartbeat Duration     `yaml:"heartbeat"` // 0 disables
	Network   string       `yaml:"network_env"`

	// FrozenBaseline keeps the restoration baseline at its boot value
	// instead of following level commands.
	FrozenBaseline bool `yaml:"frozen_baseline"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string `yaml:"level"`
	UseJSON bool   `yaml:"json"`
	Colors  bool   `yaml:"colors"`
}

// GetLevel returns the level with default.
func (c *LogConfig) GetLevel() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

// GPIOConfig contains pin assignments.
type GPIOConfig struct {
	Chip      string `yaml:"chip"`
	DoorPin   int    `yaml:"door_pin"`
	ButtonPin int    `yaml:"button_pin"`
	LampPin   int    `yaml:"lamp_pin"`
	PWMFreqHz int    `yaml:"pwm_freq_hz"`
}

// SerialConfig contains the text channel settings. An empty port disables
// the serial channel and console lines go to stdout.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// MQTTConfig contains broker settings. An empty broker disables MQTT.
type MQTTConfig struct {
	Broker     string `yaml:"broker"`
	ClientID   string `yaml:"client_id"`
	OutboxSize int    `yaml:"outbox_size"`
}

// HTTPConfig contains status server settings. An empty address disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Duration is a wrapper around time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Defaults.
const (
	DefaultChip       = gpio.DefaultChip
	DefaultDoorPin    = gpio.DefaultPinDoor
	DefaultButtonPin  = gpio.DefaultPinButton
	DefaultLampPin    = gpio.DefaultPinLamp
	DefaultPWMFreqHz  = gpio.DefaultPWMFreq
	DefaultBaud       = serial.DefaultBaud
	DefaultBroker     = "tcp://192.168.1.200:1883"
	DefaultClientID   = mqtt.DefaultClientID
	DefaultOutboxSize = mqtt.DefaultOutboxSize
	DefaultHTTPAddr   = ":80"
	DefaultTick       = 10 * time.Millisecond
	DefaultHeartbeat  = 15 * time.Minute
	DefaultNetworkEnv = "/run/pi-helper.env"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.MQTT.Broker = DefaultBroker
	cfg.HTTP.Addr = DefaultHTTPAddr
	cfg.Heartbeat = Duration(DefaultHeartbeat)
	applyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the configuration file. Unset fields take defaults.
// An explicitly empty mqtt.broker or http.addr disables that surface.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration after expanding ${VAR} and ${VAR:default}.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.GPIO.Chip == "" {
		cfg.GPIO.Chip = DefaultChip
	}
	if cfg.GPIO.DoorPin == 0 {
		cfg.GPIO.DoorPin = DefaultDoorPin
	}
	if cfg.GPIO.ButtonPin == 0 {
		cfg.GPIO.ButtonPin = DefaultButtonPin
	}
	if cfg.GPIO.LampPin == 0 {
		cfg.GPIO.LampPin = DefaultLampPin
	}
	if cfg.GPIO.PWMFreqHz == 0 {
		cfg.GPIO.PWMFreqHz = DefaultPWMFreqHz
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = DefaultBaud
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = DefaultClientID
	}
	if cfg.MQTT.OutboxSize == 0 {
		cfg.MQTT.OutboxSize = DefaultOutboxSize
	}
	if cfg.Tick == 0 {
		cfg.Tick = Duration(DefaultTick)
	}
	if cfg.Network == "" {
		cfg.Network = DefaultNetworkEnv
	}
}

// Validate rejects values the daemon cannot run with.
func (c *Config) Validate() error {
	pins := map[int]string{}
	for name, pin := range map[string]int{
		"door_pin":   c.GPIO.DoorPin,
		"button_pin": c.GPIO.ButtonPin,
		"lamp_pin":   c.GPIO.LampPin,
	} {
		if pin < 0 || pin > 27 {
			return fmt.Errorf("gpio.%s: %d is not a BCM pin", name, pin)
		}
		if other, ok := pins[pin]; ok {
			return fmt.Errorf("gpio.%s and gpio.%s both use pin %d", other, name, pin)
		}
		pins[pin] = name
	}
	if c.Tick.Duration() <= 0 || c.Tick.Duration() > time.Second {
		return fmt.Errorf("tick: %v out of range (0, 1s]", c.Tick.Duration())
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("heartbeat: negative interval %v", c.Heartbeat.Duration())
	}
	if c.MQTT.OutboxSize < 0 {
		return fmt.Errorf("mqtt.outbox_size: negative size %d", c.MQTT.OutboxSize)
	}
	return nil
}

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(input string) string {
	return envPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if val := os.Getenv(parts[1]); val != "" {
			return val
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}
