// Package config handles loading and validating tempwatch configuration.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Broker credentials should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/tempwatch.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTT.Broker.Endpoint())
//
// An empty path loads the defaults, so the tool runs with no file at all:
// it connects to mqtt://localhost:1883 and watches /temperature/dummy/#.
package config
