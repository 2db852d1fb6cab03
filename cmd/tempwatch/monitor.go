package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nerrad567/tempwatch/internal/infrastructure/logging"
	"github.com/nerrad567/tempwatch/internal/infrastructure/mqtt"
	"github.com/nerrad567/tempwatch/internal/monitor"
)

// runMonitor subscribes to the configured filter and prints messages until
// ctx is cancelled.
//
// Returns:
//   - error: nil on clean shutdown, or error describing a startup failure
func runMonitor(ctx context.Context, flags *cliFlags, stdout io.Writer) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	log := logging.New(cfg.Logging, version)
	log.Info("starting tempwatch monitor",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	client := mqtt.NewClient(cfg.MQTT)
	client.SetLogger(log)

	mon, err := monitor.New(monitor.Options{
		Client: client,
		Topic:  cfg.Monitor.Topic,
		QoS:    byte(cfg.Monitor.QoS),
		Format: cfg.Monitor.Format,
		Output: stdout,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("creating monitor: %w", err)
	}

	// Registered before Connect so the first connection event subscribes.
	client.SetOnConnect(mon.HandleConnect)
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT connection lost, reconnecting", "error", err)
	})

	log.Info("connecting to MQTT",
		"broker", client.Endpoint(),
		"client_id", client.ClientID(),
		"topic", mon.Topic(),
		"format", mon.Format(),
	)
	if err := client.Connect(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("shutdown before connection was established")
			return nil
		}
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if unsubErr := client.Unsubscribe(mon.Topic()); unsubErr != nil {
			log.Debug("unsubscribe on shutdown skipped", "topic", mon.Topic(), "error", unsubErr)
		}
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	if err := client.HealthCheck(ctx); err != nil {
		log.Warn("MQTT health check failed after connect, waiting for reconnect", "error", err)
	} else {
		log.Info("MQTT connected", "broker", client.Endpoint())
	}

	<-ctx.Done()

	stats := mon.Stats()
	log.Info("monitor stopped",
		"connects", stats.Connects,
		"received", stats.Received,
		"text_fallbacks", stats.Text,
	)
	return nil
}
