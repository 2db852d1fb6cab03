// Package logging provides structured operational logging for tempwatch.
//
// It wraps log/slog with the service defaults the rest of the tool expects.
// Operational logs are kept apart from the message stream the monitor prints:
// by default logs go to stderr as text, records go to stdout.
//
// Configuration in the YAML file:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("connected", "broker", cfg.MQTT.Broker.Endpoint())
//
// Never log broker passwords.
package logging
