package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/sweeney/room-controller/internal/logic"
)

// DefaultClientID is used when Options.ClientID is empty.
const DefaultClientID = "room-controller"

// DefaultOutboxSize is the number of messages held while disconnected.
const DefaultOutboxSize = 100

const publishTimeout = 5 * time.Second

// Options configures a RealPublisher.
type Options struct {
	Broker     string
	ClientID   string
	OutboxSize int
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are queued and replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	topic  string

	mu     sync.Mutex
	outbox *outbox
	onCmd  func(byte)
}

// NewRealPublisher creates a publisher and starts connecting in the background.
// The broker keeps a retained SHUTDOWN/MQTT_DISCONNECT will on the system
// topic in case the process dies without a clean shutdown.
func NewRealPublisher(o Options) *RealPublisher {
	if o.ClientID == "" {
		o.ClientID = DefaultClientID
	}
	if o.OutboxSize <= 0 {
		o.OutboxSize = DefaultOutboxSize
	}

	p := &RealPublisher{
		topic:  Topic,
		outbox: newOutbox(o.OutboxSize),
	}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn().Err(err).Msg("mqtt connection lost")
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()

	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	log.Info().Msg("mqtt connected")

	p.mu.Lock()
	pending := p.outbox.drain()
	onCmd := p.onCmd
	p.mu.Unlock()

	if onCmd != nil {
		if err := p.subscribe(onCmd); err != nil {
			log.Error().Err(err).Msg("mqtt resubscribe failed")
		}
	}

	for _, m := range pending {
		token := c.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(publishTimeout) {
			log.Warn().Str("topic", m.topic).Msg("replay publish timeout")
			continue
		}
		if err := token.Error(); err != nil {
			log.Warn().Err(err).Str("topic", m.topic).Msg("replay publish failed")
		}
	}
	if len(pending) > 0 {
		log.Info().Int("count", len(pending)).Msg("replayed buffered mqtt messages")
	}
}

// Publish sends a controller event to the MQTT broker.
func (p *RealPublisher) Publish(at time.Time, event logic.Event) error {
	payload, err := FormatPayload(at, event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	if err := p.send(p.topic, 0, false, payload); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	if err := p.send(TopicSystem, 1, event.Retained, payload); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.outbox.push(pendingMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timeout")
	}
	return token.Error()
}

// SubscribeCommands registers handler for the command topic. The subscription
// is renewed on every reconnect.
func (p *RealPublisher) SubscribeCommands(handler func(byte)) error {
	p.mu.Lock()
	p.onCmd = handler
	p.mu.Unlock()

	if !p.client.IsConnectionOpen() {
		return nil
	}
	return p.subscribe(handler)
}

func (p *RealPublisher) subscribe(handler func(byte)) error {
	token := p.client.Subscribe(TopicCommand, 1, func(_ paho.Client, msg paho.Message) {
		for _, b := range msg.Payload() {
			handler(b)
		}
	})
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timeout", TopicCommand)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicCommand, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbox.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
