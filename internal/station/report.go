package station

import (
	"fmt"
	"strings"
	"time"
)

// Phase identifies a step of the wake cycle.
type Phase int

// Cycle phases, in the order they occur.
const (
	PhaseStart Phase = iota
	PhaseConnected
	PhaseSubscribed
	PhasePublished
	PhaseDisconnected

	numPhases
)

// String returns the phase name used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseConnected:
		return "connected"
	case PhaseSubscribed:
		return "subscribed"
	case PhasePublished:
		return "published"
	case PhaseDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Report holds the phase timings of one cycle in milliseconds.
type Report struct {
	Timers [numPhases]float64
}

// Mark records phase p at elapsed time since the cycle started.
func (r *Report) Mark(p Phase, elapsed time.Duration) {
	if p < 0 || p >= numPhases {
		return
	}
	r.Timers[p] = float64(elapsed) / float64(time.Millisecond)
}

// Payload renders the report as the station sends it.
func (r Report) Payload() []byte {
	values := make([]string, len(r.Timers))
	for i, v := range r.Timers {
		values[i] = fmt.Sprintf("%8.2f", v)
	}
	return []byte(fmt.Sprintf(`{"timers": [%s]}`, strings.Join(values, ", ")))
}

// Total returns the time from cycle start to disconnect.
func (r Report) Total() time.Duration {
	return time.Duration(r.Timers[PhaseDisconnected] * float64(time.Millisecond))
}
