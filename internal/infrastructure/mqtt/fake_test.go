package mqtt

import (
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/tempwatch/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "tempwatch-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// fakeToken is a paho token that is either complete or pending forever.
type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func pendingToken() *fakeToken {
	return &fakeToken{done: make(chan struct{})}
}

func (t *fakeToken) Wait() bool {
	<-t.done
	return true
}

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }

func (t *fakeToken) Error() error { return t.err }

type fakePublish struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakePaho implements pahomqtt.Client in memory.
type fakePaho struct {
	mu sync.Mutex

	connected    bool
	connectToken *fakeToken
	subscribeErr error
	publishErr   error

	handlers     map[string]pahomqtt.MessageHandler
	published    []fakePublish
	unsubscribed []string
	disconnects  int
}

func newFakePaho() *fakePaho {
	return &fakePaho{
		connectToken: completedToken(nil),
		handlers:     make(map[string]pahomqtt.MessageHandler),
	}
}

func (f *fakePaho) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakePaho) IsConnectionOpen() bool { return f.IsConnected() }

func (f *fakePaho) Connect() pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.connectToken.done:
		f.connected = f.connectToken.err == nil
	default:
	}
	return f.connectToken
}

func (f *fakePaho) Disconnect(_ uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.disconnects++
}

func (f *fakePaho) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return completedToken(f.publishErr)
	}
	var body []byte
	switch p := payload.(type) {
	case []byte:
		body = p
	case string:
		body = []byte(p)
	default:
		body = []byte(fmt.Sprint(p))
	}
	f.published = append(f.published, fakePublish{topic: topic, qos: qos, retained: retained, payload: body})
	return completedToken(nil)
}

func (f *fakePaho) Subscribe(topic string, _ byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return completedToken(f.subscribeErr)
	}
	f.handlers[topic] = callback
	return completedToken(nil)
}

func (f *fakePaho) SubscribeMultiple(filters map[string]byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	for topic, qos := range filters {
		f.Subscribe(topic, qos, callback)
	}
	return completedToken(nil)
}

func (f *fakePaho) Unsubscribe(topics ...string) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, topic := range topics {
		delete(f.handlers, topic)
		f.unsubscribed = append(f.unsubscribed, topic)
	}
	return completedToken(nil)
}

func (f *fakePaho) AddRoute(topic string, callback pahomqtt.MessageHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = callback
}

func (f *fakePaho) OptionsReader() pahomqtt.ClientOptionsReader {
	return pahomqtt.ClientOptionsReader{}
}

// deliver invokes the handler registered for filter as paho would.
func (f *fakePaho) deliver(filter, topic string, payload []byte) {
	f.mu.Lock()
	handler := f.handlers[filter]
	f.mu.Unlock()
	if handler != nil {
		handler(f, &fakeMessage{topic: topic, payload: payload})
	}
}

func (f *fakePaho) publishes() []fakePublish {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakePublish(nil), f.published...)
}

// fakeMessage implements pahomqtt.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

// recordingLogger captures log calls as "LEVEL msg" strings.
type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+" "+msg)
}

func (l *recordingLogger) Info(msg string, _ ...any)  { l.record("INFO", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.record("WARN", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.record("ERROR", msg) }

func (l *recordingLogger) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// newFakeClient returns a Client backed by fake, as NewClient would build it.
func newFakeClient(cfg config.MQTTConfig, fake *fakePaho) *Client {
	return &Client{
		client:        fake,
		options:       buildClientOptions(cfg),
		cfg:           cfg,
		subscriptions: make(map[string]subscription),
	}
}

// connectedFakeClient returns a connected Client backed by a fresh fake.
func connectedFakeClient() (*Client, *fakePaho) {
	fake := newFakePaho()
	fake.connected = true
	c := newFakeClient(testConfig(), fake)
	c.connected = true
	return c, fake
}
