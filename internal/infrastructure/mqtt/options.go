package mqtt

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nerrad567/tempwatch/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultAttemptTimeout bounds a single connection attempt.
	defaultAttemptTimeout = 10 * time.Second

	// defaultOperationTimeout is the maximum time to wait for a broker acknowledgment.
	defaultOperationTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12

	// clientIDPrefix starts every generated client ID.
	clientIDPrefix = "tempwatch-"
)

// resolveClientID returns id, or a generated unique ID when id is empty.
// Brokers drop the older connection when two clients share an ID.
func resolveClientID(id string) string {
	if id != "" {
		return id
	}
	return clientIDPrefix + uuid.NewString()[:8]
}

// buildClientOptions creates paho MQTT options from tempwatch config.
//
// This configures:
//   - Broker endpoint (explicit URL, or tcp:// / ssl:// from host and port)
//   - Client ID for identification
//   - Authentication credentials (if provided)
//   - Clean session, auto-reconnect and keepalive
//   - In-order handler invocation
//   - TLS configuration for ssl://, tls://, mqtts:// and wss:// endpoints
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	endpoint := normalizeEndpoint(cfg.Broker.Endpoint())
	opts.AddBroker(endpoint)

	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Clean session: the broker keeps nothing between connections, so
	// subscriptions are re-issued from the on-connect callback.
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	if cfg.Reconnect.InitialDelay > 0 {
		opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	}
	if cfg.Reconnect.MaxDelay > 0 {
		opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)
	}

	opts.SetConnectTimeout(defaultAttemptTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	// Deliver messages to handlers one at a time, in arrival order.
	opts.SetOrderMatters(true)

	if cfg.Broker.TLS || isTLSEndpoint(endpoint) {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}

// defaultPorts maps endpoint schemes to the port used when none is given.
// Paho dials the URL host as-is, so "mqtt://server" needs one filled in.
var defaultPorts = map[string]string{
	"tcp":   "1883",
	"mqtt":  "1883",
	"ssl":   "8883",
	"tls":   "8883",
	"mqtts": "8883",
	"tcps":  "8883",
	"ws":    "80",
	"wss":   "443",
}

// normalizeEndpoint adds the scheme's default port to an endpoint without one.
// Endpoints that fail to parse are returned unchanged for paho to reject.
func normalizeEndpoint(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" || u.Port() != "" {
		return endpoint
	}
	port, ok := defaultPorts[u.Scheme]
	if !ok {
		return endpoint
	}
	u.Host = net.JoinHostPort(u.Hostname(), port)
	return u.String()
}

// isTLSEndpoint reports whether the endpoint scheme implies TLS.
func isTLSEndpoint(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "ssl", "tls", "mqtts", "tcps", "wss":
		return true
	default:
		return false
	}
}

// configureLWT sets up Last Will and Testament on the status topic.
//
// The broker publishes it if the client disconnects unexpectedly.
// It is retained, so late subscribers see the last status.
func configureLWT(opts *pahomqtt.ClientOptions, topic, clientID string, qos byte) {
	willPayload := fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"unexpected_disconnect","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)

	opts.SetWill(topic, willPayload, qos, true)
}

// buildOnlinePayload creates the JSON payload for online status messages.
func buildOnlinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"online","client_id":"%s","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// buildOfflinePayload creates the JSON payload for graceful offline status.
func buildOfflinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"graceful_shutdown","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}
