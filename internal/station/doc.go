// Package station simulates the battery-powered temperature station that
// publishes into the /temperature/dummy namespace.
//
// The real station wakes, joins the network, connects to the broker,
// subscribes to its test topic, publishes how long each step of its
// previous wake cycle took, disconnects and deep-sleeps. This package runs
// the same cycle against a broker so the monitor has realistic traffic:
//
//	start → connected → subscribed → published → disconnected → sleep
//
// Each phase is recorded in milliseconds since the cycle started. The report
// published in cycle N describes cycle N-1; the first cycle reports zeros.
//
// The report payload keeps the station's fixed-width layout:
//
//	{"timers": [    0.00,   18.42,   21.07,   23.90,   24.31]}
package station
