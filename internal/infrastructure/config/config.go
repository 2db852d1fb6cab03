package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Output formats understood by the monitor.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the root configuration structure for tempwatch.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Monitor MonitorConfig `yaml:"monitor"`
	Station StationConfig `yaml:"station"`
	Logging LoggingConfig `yaml:"logging"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// QoS applies to the status topic publishes and the LWT.
	QoS int `yaml:"qos"`

	// ConnectTimeout bounds the wait for the first connection, in seconds.
	// 0 waits until the caller's context is cancelled while the client
	// keeps retrying.
	ConnectTimeout int `yaml:"connect_timeout"`

	// StatusTopic receives retained online/offline status and the LWT.
	// Empty disables status publishing.
	StatusTopic string `yaml:"status_topic"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
//
// URL takes precedence when set (e.g. "mqtt://server", "ssl://host:8883").
// Otherwise the endpoint is built from Host, Port and TLS.
// An empty ClientID makes the client generate a unique "tempwatch-" ID.
type MQTTBrokerConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// MonitorConfig controls the subscriber that prints received messages.
type MonitorConfig struct {
	// Topic is the subscription filter, usually a multi-level wildcard.
	Topic  string `yaml:"topic"`
	QoS    int    `yaml:"qos"`
	Format string `yaml:"format"` // text, json
}

// StationConfig controls the simulated sensor station.
type StationConfig struct {
	ClientID string `yaml:"client_id"`

	// SubscribeTopic is the station's inbound test topic.
	SubscribeTopic string `yaml:"subscribe_topic"`

	// ReportTopic receives the timing report of the previous cycle.
	ReportTopic string `yaml:"report_topic"`

	QoS int `yaml:"qos"`

	// Interval is the sleep between cycles in seconds. 0 runs a single cycle.
	Interval int `yaml:"interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults), skipped when path is empty
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: TEMPWATCH_SECTION_KEY
// For example: TEMPWATCH_MQTT_URL, TEMPWATCH_MONITOR_TOPIC
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for defaults only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Monitor: MonitorConfig{
			Topic:  "/temperature/dummy/#",
			QoS:    0,
			Format: FormatText,
		},
		Station: StationConfig{
			ClientID:       "tempwatch-station",
			SubscribeTopic: "/temperature/dummy/test",
			ReportTopic:    "/temperature/dummy/timers",
			QoS:            1,
			Interval:       30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: TEMPWATCH_SECTION_KEY
//
// Returns:
//   - error: If a numeric or boolean variable cannot be parsed
func applyEnvOverrides(cfg *Config) error {
	// MQTT
	if v := os.Getenv("TEMPWATCH_MQTT_URL"); v != "" {
		cfg.MQTT.Broker.URL = v
	}
	if v := os.Getenv("TEMPWATCH_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("TEMPWATCH_MQTT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TEMPWATCH_MQTT_PORT: %w", err)
		}
		cfg.MQTT.Broker.Port = port
	}
	if v := os.Getenv("TEMPWATCH_MQTT_TLS"); v != "" {
		useTLS, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TEMPWATCH_MQTT_TLS: %w", err)
		}
		cfg.MQTT.Broker.TLS = useTLS
	}
	if v := os.Getenv("TEMPWATCH_MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.Broker.ClientID = v
	}
	if v := os.Getenv("TEMPWATCH_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("TEMPWATCH_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Monitor
	if v := os.Getenv("TEMPWATCH_MONITOR_TOPIC"); v != "" {
		cfg.Monitor.Topic = v
	}
	if v := os.Getenv("TEMPWATCH_MONITOR_FORMAT"); v != "" {
		cfg.Monitor.Format = v
	}
	if v := os.Getenv("TEMPWATCH_MONITOR_QOS"); v != "" {
		qos, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TEMPWATCH_MONITOR_QOS: %w", err)
		}
		cfg.Monitor.QoS = qos
	}

	// Station
	if v := os.Getenv("TEMPWATCH_STATION_INTERVAL"); v != "" {
		interval, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TEMPWATCH_STATION_INTERVAL: %w", err)
		}
		cfg.Station.Interval = interval
	}

	// Logging
	if v := os.Getenv("TEMPWATCH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.Broker.URL == "" {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.url or mqtt.broker.host is required")
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
	}
	if !validQoS(c.MQTT.QoS) {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Reconnect.InitialDelay < 0 || c.MQTT.Reconnect.MaxDelay < 0 {
		errs = append(errs, "mqtt.reconnect delays cannot be negative")
	}
	if c.MQTT.ConnectTimeout < 0 {
		errs = append(errs, "mqtt.connect_timeout cannot be negative")
	}

	// Monitor validation
	if c.Monitor.Topic == "" {
		errs = append(errs, "monitor.topic is required")
	}
	if !validQoS(c.Monitor.QoS) {
		errs = append(errs, "monitor.qos must be 0, 1, or 2")
	}
	switch strings.ToLower(c.Monitor.Format) {
	case FormatText, FormatJSON:
	default:
		errs = append(errs, "monitor.format must be text or json")
	}

	// Station validation
	if c.Station.SubscribeTopic == "" {
		errs = append(errs, "station.subscribe_topic is required")
	}
	if c.Station.ReportTopic == "" {
		errs = append(errs, "station.report_topic is required")
	}
	if !validQoS(c.Station.QoS) {
		errs = append(errs, "station.qos must be 0, 1, or 2")
	}
	if c.Station.Interval < 0 {
		errs = append(errs, "station.interval cannot be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func validQoS(qos int) bool {
	return qos >= 0 && qos <= 2
}

// Endpoint returns the broker URL handed to the MQTT client.
func (b MQTTBrokerConfig) Endpoint() string {
	if b.URL != "" {
		return b.URL
	}
	scheme := "tcp"
	if b.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, b.Host, b.Port)
}

// GetConnectTimeout returns the initial connection timeout as a Duration.
// Zero means no timeout.
func (c MQTTConfig) GetConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeout) * time.Second
}

// GetInterval returns the station cycle interval as a Duration.
func (c *Config) GetInterval() time.Duration {
	return time.Duration(c.Station.Interval) * time.Second
}
