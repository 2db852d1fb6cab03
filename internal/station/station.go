package station

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/tempwatch/internal/infrastructure/mqtt"
)

// cycleTimeout bounds a single wake cycle.
const cycleTimeout = 30 * time.Second

// Client is the MQTT client a single cycle uses.
// It is satisfied by *mqtt.Client.
type Client interface {
	Connect(ctx context.Context) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Close() error
}

// Logger is satisfied by *logging.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a Station.
type Options struct {
	// Dial returns a fresh, unconnected client for each cycle. Required.
	Dial func() Client

	// SubscribeTopic defaults to /temperature/dummy/test.
	SubscribeTopic string

	// ReportTopic defaults to /temperature/dummy/timers.
	ReportTopic string

	QoS byte

	// Interval is the sleep between cycles. 0 runs a single cycle.
	Interval time.Duration

	// Logger is optional.
	Logger Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Station runs wake cycles against the broker.
type Station struct {
	dial           func() Client
	subscribeTopic string
	reportTopic    string
	qos            byte
	interval       time.Duration
	logger         Logger
	now            func() time.Time

	// previous is only touched by the goroutine running cycles.
	previous Report
	cycles   int
}

// New validates opts and creates a Station.
func New(opts Options) (*Station, error) {
	if opts.Dial == nil {
		return nil, ErrNoDialer
	}

	subscribeTopic := opts.SubscribeTopic
	if subscribeTopic == "" {
		subscribeTopic = mqtt.Topics{}.Test()
	}
	if err := mqtt.ValidateFilter(subscribeTopic); err != nil {
		return nil, fmt.Errorf("station subscribe topic: %w", err)
	}

	reportTopic := opts.ReportTopic
	if reportTopic == "" {
		reportTopic = mqtt.Topics{}.Timers()
	}
	if err := mqtt.ValidateTopic(reportTopic); err != nil {
		return nil, fmt.Errorf("station report topic: %w", err)
	}

	if opts.QoS > 2 {
		return nil, mqtt.ErrInvalidQoS
	}
	if opts.Interval < 0 {
		return nil, fmt.Errorf("station: interval cannot be negative")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Station{
		dial:           opts.Dial,
		subscribeTopic: subscribeTopic,
		reportTopic:    reportTopic,
		qos:            opts.QoS,
		interval:       opts.Interval,
		logger:         opts.Logger,
		now:            now,
	}, nil
}

// Run executes cycles until ctx is cancelled.
//
// With a zero interval it runs one cycle and returns its error. Otherwise
// cycle failures are logged and the next cycle runs after the interval;
// cancellation returns nil.
func (s *Station) Run(ctx context.Context) error {
	for {
		err := s.RunCycle(ctx)
		if s.interval == 0 {
			return err
		}
		if err != nil && ctx.Err() == nil && s.logger != nil {
			s.logger.Warn("station cycle failed", "cycle", s.cycles, "error", err)
		}

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// RunCycle performs one wake cycle and publishes the previous cycle's report.
//
// The stored report is replaced only when the cycle completes.
func (s *Station) RunCycle(ctx context.Context) error {
	s.cycles++
	ctx, cancel := context.WithTimeout(ctx, cycleTimeout)
	defer cancel()

	start := s.now()
	var current Report
	mark := func(p Phase) {
		current.Mark(p, s.now().Sub(start))
	}

	client := s.dial()
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("%w: connect: %w", ErrCycleFailed, err)
	}
	mark(PhaseConnected)

	if err := client.Subscribe(s.subscribeTopic, s.qos, s.handleData); err != nil {
		client.Close()
		return fmt.Errorf("%w: subscribe %s: %w", ErrCycleFailed, s.subscribeTopic, err)
	}
	mark(PhaseSubscribed)

	if err := client.Publish(s.reportTopic, s.previous.Payload(), s.qos, false); err != nil {
		client.Close()
		return fmt.Errorf("%w: publish %s: %w", ErrCycleFailed, s.reportTopic, err)
	}
	mark(PhasePublished)

	if err := client.Close(); err != nil {
		return fmt.Errorf("%w: disconnect: %w", ErrCycleFailed, err)
	}
	mark(PhaseDisconnected)

	s.previous = current
	if s.logger != nil {
		s.logger.Info("station cycle complete",
			"cycle", s.cycles,
			"total", current.Total(),
		)
	}
	return nil
}

// Previous returns the report the next cycle will publish.
func (s *Station) Previous() Report {
	return s.previous
}

// handleData logs whatever arrives on the station's test topic.
func (s *Station) handleData(topic string, payload []byte) error {
	if s.logger != nil {
		s.logger.Info("station received data", "topic", topic, "data", string(payload))
	}
	return nil
}
