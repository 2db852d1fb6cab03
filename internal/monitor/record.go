package monitor

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"
)

// Message is one delivery from the broker, stamped on receipt.
type Message struct {
	Topic      string
	Payload    []byte
	ReceivedAt time.Time
}

// Record is the printable form of a Message.
//
// Exactly one of Data and Text is meaningful: Decoded reports which.
type Record struct {
	Time    time.Time
	Topic   string
	Decoded bool
	Data    any
	Text    string
}

// NewRecord decodes msg into a Record, falling back to text.
func NewRecord(msg Message) Record {
	rec := Record{
		Time:  msg.ReceivedAt,
		Topic: msg.Topic,
	}

	data, err := DecodePayload(msg.Payload)
	if err != nil {
		rec.Text = payloadText(msg.Payload)
		return rec
	}

	rec.Decoded = true
	rec.Data = data
	return rec
}

// errTrailingData marks a payload with content after the first JSON value.
var errTrailingData = errors.New("trailing data after JSON value")

// DecodePayload parses payload as a single JSON value.
//
// Numbers are kept as json.Number so they print exactly as sent. Surrounding
// whitespace is allowed; anything else after the value is an error, as is an
// empty payload.
func DecodePayload(payload []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	return v, nil
}

// payloadText renders a payload as text.
// Invalid UTF-8 sequences become U+FFFD.
func payloadText(payload []byte) string {
	return strings.ToValidUTF8(string(payload), "\uFFFD")
}
