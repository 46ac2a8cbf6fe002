package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/room-controller/internal/config"
	"github.com/sweeney/room-controller/internal/gpio"
	"github.com/sweeney/room-controller/internal/logic"
	"github.com/sweeney/room-controller/internal/mqtt"
	"github.com/sweeney/room-controller/internal/serial"
	"github.com/sweeney/room-controller/internal/status"
	"github.com/sweeney/room-controller/internal/web"
)

// commandQueueSize bounds command bytes waiting for the loop.
const commandQueueSize = 64

var errQueueFull = errors.New("command queue full")

func run(cfg *config.Config) error {
	driver, err := gpio.NewRealDriver(cfg.GPIO.Chip, cfg.GPIO.DoorPin, cfg.GPIO.LampPin, cfg.GPIO.PWMFreqHz)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer driver.Close()

	button, err := gpio.NewRealButton(cfg.GPIO.Chip, cfg.GPIO.ButtonPin)
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}
	defer button.Close()

	var channel *serial.Channel
	if cfg.Serial.Port != "" {
		channel, err = serial.Open(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			return fmt.Errorf("init serial: %w", err)
		}
	} else {
		channel = serial.New(stdio{})
		log.Info().Msg("no serial port configured, using stdin/stdout")
	}
	defer channel.Close()

	var publisher mqtt.Publisher = offlinePublisher{}
	var mqttStatus mqtt.ConnectionStatus
	var remote *mqtt.RealPublisher
	if cfg.MQTT.Broker != "" {
		remote = mqtt.NewRealPublisher(mqtt.Options{
			Broker:     cfg.MQTT.Broker,
			ClientID:   cfg.MQTT.ClientID,
			OutboxSize: cfg.MQTT.OutboxSize,
		})
		publisher, mqttStatus = remote, remote
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:      cfg.Tick.Duration().Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Duration().Milliseconds(),
		SerialPort:  cfg.Serial.Port,
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
	})
	refreshNetwork(tracker, cfg.Network)

	var opts []logic.Option
	if cfg.FrozenBaseline {
		opts = append(opts, logic.WithFrozenBaseline())
	}
	ctrl := logic.NewController(driver, teeConsole{next: channel}, opts...)
	if err := ctrl.Init(); err != nil {
		return fmt.Errorf("init controller: %w", err)
	}
	tracker.Update(ctrl.Snapshot())

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Error().Err(err).Msg("failed to publish startup event")
	} else {
		log.Info().Msg("published startup event")
	}

	cmds := make(chan byte, commandQueueSize)
	submit := queueSubmit(cmds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := channel.ReadCommands(ctx, cmds); err != nil {
			log.Error().Err(err).Msg("serial read stopped")
		}
	}()

	if remote != nil {
		err := remote.SubscribeCommands(func(b byte) {
			if err := submit(b); err != nil {
				log.Warn().Err(err).Str("source", "mqtt").Msg("command dropped")
			}
		})
		if err != nil {
			log.Error().Err(err).Msg("subscribe command topic")
		}
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, submit)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http status server listening")
	}

	log.Info().
		Dur("tick", cfg.Tick.Duration()).
		Str("serial", cfg.Serial.Port).
		Str("broker", cfg.MQTT.Broker).
		Dur("heartbeat", cfg.Heartbeat.Duration()).
		Msg("started")

	ticker := time.NewTicker(cfg.Tick.Duration())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	start := time.Now()
	l := &loop{
		ctrl:       ctrl,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		heartbeat:  cfg.Heartbeat.Duration(),
		networkEnv: cfg.Network,
		wall:       time.Now,
		clock: func() logic.Tick {
			return logic.Tick(time.Since(start).Milliseconds())
		},
	}
	return l.run(ticker.C, button.Presses(), cmds, sigCh)
}

// queueSubmit returns a non-blocking sender into cmds.
func queueSubmit(cmds chan<- byte) web.SubmitFunc {
	return func(b byte) error {
		select {
		case cmds <- b:
			return nil
		default:
			return errQueueFull
		}
	}
}

// refreshNetwork loads pi-helper network info into the tracker, if any.
func refreshNetwork(tracker *status.Tracker, path string) {
	n, err := config.ReadNetwork(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("read network info")
		return
	}
	if n != nil {
		tracker.SetNetwork(toStatusNetwork(n))
	}
}

func toStatusNetwork(n *config.Network) *status.NetworkInfo {
	return &status.NetworkInfo{
		Type:       n.Type,
		IP:         n.IP,
		Status:     n.Status,
		Gateway:    n.Gateway,
		WifiStatus: n.WifiStatus,
		SSID:       n.SSID,
	}
}

// offlinePublisher stands in when no broker is configured.
type offlinePublisher struct{}

func (offlinePublisher) Publish(time.Time, logic.Event) error { return nil }
func (offlinePublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (offlinePublisher) Close() error                         { return nil }
