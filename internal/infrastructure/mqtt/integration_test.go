//go:build integration

package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/tempwatch/internal/infrastructure/config"
)

// Integration tests against a real broker.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig(clientID string) config.MQTTConfig {
	cfg := testConfig()
	cfg.Broker.ClientID = clientID
	cfg.ConnectTimeout = 5
	return cfg
}

// connectIntegration connects a client with an optional on-connect callback
// registered before the connection is made.
func connectIntegration(t *testing.T, clientID string, onConnect func(*Client)) *Client {
	t.Helper()

	client := NewClient(integrationConfig(clientID))
	if onConnect != nil {
		client.SetOnConnect(func() { onConnect(client) })
	}
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect(%s) error = %v", clientID, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// TestIntegration_SubscribeOnConnect verifies the on-connect callback fires
// exactly once for the first connection and can subscribe from inside it.
func TestIntegration_SubscribeOnConnect(t *testing.T) {
	filter := fmt.Sprintf("/tempwatch-int/%d/#", time.Now().UnixNano())

	var connects int32
	subscribed := make(chan error, 1)
	connectIntegration(t, "tempwatch-int-onconnect", func(c *Client) {
		atomic.AddInt32(&connects, 1)
		subscribed <- c.Subscribe(filter, 0, func(string, []byte) error { return nil })
	})

	select {
	case err := <-subscribed:
		if err != nil {
			t.Fatalf("Subscribe() from on-connect error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for on-connect subscription")
	}

	if n := atomic.LoadInt32(&connects); n != 1 {
		t.Errorf("on-connect calls = %d, want 1", n)
	}
}

// TestIntegration_WildcardRoundtrip verifies pub/sub through a multi-level
// wildcard and that delivery order is preserved.
func TestIntegration_WildcardRoundtrip(t *testing.T) {
	prefix := fmt.Sprintf("/tempwatch-int/%d", time.Now().UnixNano())

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})
	ready := make(chan struct{})
	var readyOnce sync.Once

	connectIntegration(t, "tempwatch-int-sub", func(c *Client) {
		_ = c.Subscribe(prefix+"/#", 1, func(topic string, payload []byte) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, topic+"="+string(payload))
			if len(got) == 3 {
				close(done)
			}
			return nil
		})
		readyOnce.Do(func() { close(ready) })
	})
	<-ready

	pub := connectIntegration(t, "tempwatch-int-pub", nil)
	for i := 1; i <= 3; i++ {
		topic := fmt.Sprintf("%s/%d", prefix, i)
		if err := pub.Publish(topic, fmt.Appendf(nil, `{"t":%d}`, i), 1, false); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for messages")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, entry := range got {
		want := fmt.Sprintf(`%s/%d={"t":%d}`, prefix, i+1, i+1)
		if entry != want {
			t.Errorf("message %d = %q, want %q", i, entry, want)
		}
	}
}

// TestIntegration_ConnectInvalidBroker verifies the connect timeout stops the
// retry loop and reports ErrConnectionFailed.
func TestIntegration_ConnectInvalidBroker(t *testing.T) {
	cfg := integrationConfig("tempwatch-int-invalid")
	cfg.Broker.Port = 19999
	cfg.ConnectTimeout = 1

	client := NewClient(cfg)
	err := client.Connect(context.Background())
	if err == nil {
		client.Close()
		t.Fatal("Connect() expected error for invalid broker")
	}
}
