package main

import (
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/room-controller/internal/logic"
	"github.com/sweeney/room-controller/internal/mqtt"
	"github.com/sweeney/room-controller/internal/status"
)

// loop feeds button edges, command bytes and ticks into the controller one at
// a time, publishes the resulting events and keeps the tracker current.
type loop struct {
	ctrl       *logic.Controller
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus // may be nil
	tracker    *status.Tracker
	heartbeat  time.Duration // 0 disables
	networkEnv string

	wall  func() time.Time  // timestamps for published payloads
	clock func() logic.Tick // controller time, called once per input

	lastHeartbeat logic.Tick
}

func (l *loop) run(tick <-chan time.Time, presses <-chan struct{}, cmds <-chan byte, sig <-chan os.Signal) error {
	l.lastHeartbeat = l.clock()

	for {
		select {
		case s := <-sig:
			log.Info().Stringer("signal", s).Msg("shutting down")
			l.shutdown(signalName(s))
			return nil

		case <-presses:
			events, err := l.ctrl.OnButton(l.clock())
			l.handle("button", events, err)

		case b := <-cmds:
			if logic.ParseCommand(b) == logic.CmdUnknown {
				log.Warn().Err(logic.ErrUnknownCommand).Str("byte", strconv.QuoteRune(rune(b))).Msg("command rejected")
			}
			events, err := l.ctrl.OnCommand(l.clock(), b)
			l.handle("command", events, err)

		case <-tick:
			now := l.clock()
			events, err := l.ctrl.OnTick(now)
			l.handle("tick", events, err)
			l.checkHeartbeat(now)
		}

		l.refresh()
	}
}

func (l *loop) handle(input string, events []logic.Event, err error) {
	if err != nil {
		// Output or console failures never stop the controller.
		log.Error().Err(err).Str("input", input).Msg("controller error")
	}
	for _, event := range events {
		log.Info().
			Str("event", string(event.Type)).
			Str("door", mqtt.DoorString(event.DoorOpen)).
			Uint8("lamp", event.Duty).
			Msg("event")
		if err := l.publisher.Publish(l.wall(), event); err != nil {
			log.Warn().Err(err).Str("event", string(event.Type)).Msg("publish error")
		}
	}
}

func (l *loop) checkHeartbeat(now logic.Tick) {
	if l.heartbeat <= 0 {
		return
	}
	if time.Duration(logic.Elapsed(now, l.lastHeartbeat))*time.Millisecond < l.heartbeat {
		return
	}
	l.lastHeartbeat = now

	l.refresh()
	refreshNetwork(l.tracker, l.networkEnv)
	snap := l.tracker.Snapshot()
	log.Info().
		Dur("uptime", snap.Uptime()).
		Int("opens", snap.Room.Counts.Opens).
		Int("restorations", snap.Room.Counts.Restorations).
		Msg("heartbeat")

	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Warn().Err(err).Msg("heartbeat publish error")
	}
}

func (l *loop) shutdown(reason string) {
	l.refresh()
	snap := l.tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  l.wall(),
		Event:      "SHUTDOWN",
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Error().Err(err).Msg("failed to publish shutdown event")
	} else {
		log.Info().Msg("published shutdown event")
	}
}

func (l *loop) refresh() {
	l.tracker.Update(l.ctrl.Snapshot())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
