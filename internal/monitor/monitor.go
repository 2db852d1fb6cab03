package monitor

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/nerrad567/tempwatch/internal/infrastructure/mqtt"
)

// Client is the part of the MQTT client the monitor uses.
// It is satisfied by *mqtt.Client.
type Client interface {
	// Subscribe registers a handler for a topic filter.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// Endpoint returns the broker URL, for the connection line.
	Endpoint() string
}

// Logger is the structured logger the monitor reports failures to.
// It is satisfied by *logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a Monitor.
type Options struct {
	// Client is the MQTT client. Required.
	Client Client

	// Topic is the subscription filter. Defaults to /temperature/dummy/#.
	Topic string

	// QoS is the subscription QoS (0, 1, or 2).
	QoS byte

	// Format is "text" (default) or "json".
	Format string

	// Output receives one line per event. Required.
	Output io.Writer

	// Logger is optional.
	Logger Logger

	// Now stamps received messages. Defaults to time.Now.
	Now func() time.Time
}

// Monitor prints every message delivered on its subscription.
type Monitor struct {
	client  Client
	topic   string
	qos     byte
	printer *Printer
	logger  Logger
	now     func() time.Time

	connects atomic.Int64
	received atomic.Int64
	fallback atomic.Int64
}

// New validates opts and creates a Monitor. It does not subscribe: wire
// HandleConnect to the client's on-connect callback for that.
func New(opts Options) (*Monitor, error) {
	if opts.Client == nil {
		return nil, ErrNoClient
	}

	topic := opts.Topic
	if topic == "" {
		topic = mqtt.Topics{}.All()
	}
	if err := mqtt.ValidateFilter(topic); err != nil {
		return nil, fmt.Errorf("monitor topic: %w", err)
	}
	if opts.QoS > 2 {
		return nil, mqtt.ErrInvalidQoS
	}

	printer, err := NewPrinter(opts.Output, opts.Format)
	if err != nil {
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Monitor{
		client:  opts.Client,
		topic:   topic,
		qos:     opts.QoS,
		printer: printer,
		logger:  opts.Logger,
		now:     now,
	}, nil
}

// Topic returns the subscription filter.
func (m *Monitor) Topic() string {
	return m.topic
}

// Format returns the output format, "text" or "json".
func (m *Monitor) Format() string {
	return m.printer.Format()
}

// HandleConnect runs once per connection event: it prints the connection
// line and subscribes to the filter.
//
// A failed subscription is logged; the next connection event retries it.
func (m *Monitor) HandleConnect() {
	m.connects.Add(1)

	if err := m.printer.PrintConnected(m.now(), m.client.Endpoint()); err != nil && m.logger != nil {
		m.logger.Error("printing connection event failed", "error", err)
	}

	if err := m.client.Subscribe(m.topic, m.qos, m.HandleMessage); err != nil {
		if m.logger != nil {
			m.logger.Error("subscribe failed", "topic", m.topic, "error", err)
		}
		return
	}

	if m.logger != nil {
		m.logger.Info("subscribed", "topic", m.topic, "qos", m.qos)
	}
}

// HandleMessage prints one received message.
//
// The payload is printed decoded when it is JSON and as text otherwise.
// Only output failures are returned.
func (m *Monitor) HandleMessage(topic string, payload []byte) error {
	receivedAt := m.now()
	m.received.Add(1)

	rec := NewRecord(Message{
		Topic:      topic,
		Payload:    payload,
		ReceivedAt: receivedAt,
	})
	if !rec.Decoded {
		m.fallback.Add(1)
		if m.logger != nil {
			m.logger.Debug("payload is not JSON, printing as text", "topic", topic, "bytes", len(payload))
		}
	}

	return m.printer.PrintRecord(rec)
}

// Stats is a snapshot of the monitor's counters.
type Stats struct {
	Connects int64
	Received int64
	Text     int64
}

// Stats returns the counters since the monitor was created.
func (m *Monitor) Stats() Stats {
	return Stats{
		Connects: m.connects.Load(),
		Received: m.received.Load(),
		Text:     m.fallback.Load(),
	}
}
