package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/tempwatch/internal/infrastructure/config"
)

// timeLayout is RFC 3339 with millisecond precision, always in UTC.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// lineEscaper keeps text fields on a single output line. Backslashes are
// escaped too, so an escaped newline never reads like a literal one.
var lineEscaper = strings.NewReplacer(`\`, `\\`, "\r", `\r`, "\n", `\n`)

// Printer writes records and connection events to an output stream.
//
// Thread Safety:
//   - Writes are serialised; concurrent callers never interleave a line.
type Printer struct {
	out    io.Writer
	format string
	mu     sync.Mutex
}

// NewPrinter creates a Printer for the given format ("text" or "json").
func NewPrinter(out io.Writer, format string) (*Printer, error) {
	if out == nil {
		return nil, ErrNoOutput
	}

	switch f := strings.ToLower(format); f {
	case "":
		format = config.FormatText
	case config.FormatText, config.FormatJSON:
		format = f
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}

	return &Printer{out: out, format: format}, nil
}

// Format returns the printer's output format.
func (p *Printer) Format() string {
	return p.format
}

// PrintRecord writes one line for a received message.
func (p *Printer) PrintRecord(rec Record) error {
	var line string
	var err error
	if p.format == config.FormatJSON {
		line, err = jsonRecordLine(rec)
	} else {
		line, err = textRecordLine(rec)
	}
	if err != nil {
		return fmt.Errorf("formatting record for %s: %w", rec.Topic, err)
	}
	return p.writeLine(line)
}

// PrintConnected writes one line for a connection event.
func (p *Printer) PrintConnected(at time.Time, broker string) error {
	if p.format == config.FormatJSON {
		line, err := encodeJSON(jsonEvent{
			Time:   formatTime(at),
			Event:  "connected",
			Broker: broker,
		})
		if err != nil {
			return fmt.Errorf("formatting connection event: %w", err)
		}
		return p.writeLine(string(line))
	}
	return p.writeLine(fmt.Sprintf("%s connected %s", formatTime(at), lineEscaper.Replace(broker)))
}

func (p *Printer) writeLine(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := io.WriteString(p.out, line+"\n"); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// jsonRecord is the wire shape of a record in JSON output.
type jsonRecord struct {
	Time  string          `json:"time"`
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data,omitempty"`
	Text  *string         `json:"text,omitempty"`
}

// jsonEvent is the wire shape of a connection event in JSON output.
type jsonEvent struct {
	Time   string `json:"time"`
	Event  string `json:"event"`
	Broker string `json:"broker"`
}

func jsonRecordLine(rec Record) (string, error) {
	out := jsonRecord{
		Time:  formatTime(rec.Time),
		Topic: rec.Topic,
	}
	if rec.Decoded {
		data, err := encodeJSON(rec.Data)
		if err != nil {
			return "", err
		}
		out.Data = data
	} else {
		text := rec.Text
		out.Text = &text
	}

	line, err := encodeJSON(out)
	if err != nil {
		return "", err
	}
	return string(line), nil
}

func textRecordLine(rec Record) (string, error) {
	value := lineEscaper.Replace(rec.Text)
	if rec.Decoded {
		encoded, err := encodeJSON(rec.Data)
		if err != nil {
			return "", err
		}
		value = string(encoded)
	}
	return fmt.Sprintf("%s %s %s", formatTime(rec.Time), lineEscaper.Replace(rec.Topic), value), nil
}

// encodeJSON marshals v compactly without HTML escaping, so payloads
// print as sent.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
