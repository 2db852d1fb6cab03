// Package mqtt provides MQTT client connectivity for tempwatch.
//
// This package manages:
//   - Connection to the broker with library-driven auto-reconnect
//   - Topic subscriptions with wildcard support
//   - Message publishing for the station simulator
//   - Optional Last Will and Testament (LWT) status topic
//   - Connection health reporting
//
// All wire-protocol work (handshake, keep-alive, QoS flows, retries) is done
// by github.com/eclipse/paho.mqtt.golang. This package only adapts it to the
// tool's configuration and handler signatures.
//
// # Connection events
//
// Register the on-connect callback before calling Connect. The callback runs
// after every successful connection, including reconnects, and is the place
// to issue subscriptions: sessions are clean, so the broker forgets them when
// the connection drops.
//
// # Usage
//
//	client := mqtt.NewClient(cfg.MQTT)
//	client.SetOnConnect(func() {
//	    _ = client.Subscribe(mqtt.Topics{}.All(), 0,
//	        func(topic string, payload []byte) error {
//	            fmt.Printf("%s %s\n", topic, payload)
//	            return nil
//	        })
//	})
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
package mqtt
