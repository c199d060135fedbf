package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/prb-computer/internal/sequencer"
)

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are buffered and replayed on reconnect.
type RealPublisher struct {
	client    paho.Client
	onCommand CommandHandler

	mu  sync.Mutex
	buf *outbox
}

// NewRealPublisher starts connecting to broker in the background and returns
// immediately. onCommand, if non-nil, receives every TopicCommand payload.
func NewRealPublisher(broker string, onCommand CommandHandler) *RealPublisher {
	p := &RealPublisher{
		onCommand: onCommand,
		buf:       newOutbox(DefaultBufferSize),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("prb-computer").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(willPayload()), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	log.Printf("mqtt: connected")
	if p.onCommand != nil {
		token := c.Subscribe(TopicCommand, 1, func(_ paho.Client, msg paho.Message) {
			p.onCommand(msg.Payload())
		})
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Printf("mqtt: subscribe %s: %v", TopicCommand, token.Error())
		}
	}

	p.mu.Lock()
	pending := p.buf.drain()
	p.mu.Unlock()
	if len(pending) > 0 {
		log.Printf("mqtt: replaying %d buffered messages", len(pending))
	}
	for _, m := range pending {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}

// publish sends or buffers one message. wait bounds how long to wait for the
// broker; zero returns without waiting.
func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte, wait time.Duration) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if wait == 0 {
		return nil
	}
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("publish %s timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishTelemetry sends a snapshot at QoS 0 without waiting: the control
// loop calls it and must not stall on the broker.
func (p *RealPublisher) PublishTelemetry(snap sequencer.Snapshot, at time.Time) error {
	payload, err := FormatTelemetry(snap, at)
	if err != nil {
		return fmt.Errorf("format telemetry: %w", err)
	}
	return p.publish(TopicTelemetry, 0, false, payload, 0)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.publish(TopicSystem, 1, event.Retained, payload, 5*time.Second)
}

// PublishResponse sends a command reply.
func (p *RealPublisher) PublishResponse(resp Response) error {
	payload, err := FormatResponse(resp)
	if err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	return p.publish(TopicResponse, 1, false, payload, 0)
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
