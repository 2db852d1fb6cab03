package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/tempwatch/internal/infrastructure/logging"
	"github.com/nerrad567/tempwatch/internal/infrastructure/mqtt"
	"github.com/nerrad567/tempwatch/internal/station"
)

// runStation runs station cycles until ctx is cancelled, or a single cycle
// when the interval is zero. A non-nil interval overrides the configuration.
func runStation(ctx context.Context, flags *cliFlags, interval *int) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if interval != nil {
		if *interval < 0 {
			return fmt.Errorf("interval cannot be negative: %d", *interval)
		}
		cfg.Station.Interval = *interval
	}

	log := logging.New(cfg.Logging, version).With("component", "station")
	log.Info("starting tempwatch station",
		"version", version,
		"interval", cfg.GetInterval(),
	)

	mqttCfg := cfg.MQTT
	mqttCfg.Broker.ClientID = cfg.Station.ClientID

	st, err := station.New(station.Options{
		Dial: func() station.Client {
			client := mqtt.NewClient(mqttCfg)
			client.SetLogger(log)
			return client
		},
		SubscribeTopic: cfg.Station.SubscribeTopic,
		ReportTopic:    cfg.Station.ReportTopic,
		QoS:            byte(cfg.Station.QoS),
		Interval:       cfg.GetInterval(),
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("creating station: %w", err)
	}

	if err := st.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("running station: %w", err)
	}

	log.Info("station stopped")
	return nil
}
