// Package monitor prints the messages published under a topic filter.
//
// The monitor is the subscriber half of tempwatch. It is driven entirely by
// MQTT connection events:
//
//   - On every connection event it prints a "connected" line and issues one
//     subscription to its filter (default /temperature/dummy/#).
//   - On every message it stamps the receive time, tries to decode the
//     payload as JSON, and prints the decoded value. Payloads that are not
//     JSON are printed as text instead; that fallback is never an error.
//
// Messages are handled one at a time in delivery order. Nothing is buffered
// or stored.
//
// # Output
//
// Text format, one line per event:
//
//	2026-10-19T08:15:02.114Z connected tcp://server:1883
//	2026-10-19T08:15:07.480Z /temperature/dummy/1 {"t":21.5}
//	2026-10-19T08:15:09.002Z /temperature/dummy/2 not json
//
// JSON format writes one object per line with "data" for decoded payloads
// and "text" for the fallback.
//
// # Usage
//
//	client := mqtt.NewClient(cfg.MQTT)
//	mon, err := monitor.New(monitor.Options{
//	    Client: client,
//	    Topic:  cfg.Monitor.Topic,
//	    Format: cfg.Monitor.Format,
//	    Output: os.Stdout,
//	})
//	if err != nil {
//	    return err
//	}
//	client.SetOnConnect(mon.HandleConnect)
//	err = client.Connect(ctx)
package monitor
