package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of the dummy temperature sensor namespace.
// The leading slash is part of the topic: "/temperature" and "temperature"
// are different topics to a broker.
const TopicPrefix = "/temperature/dummy"

// maxTopicLength is the MQTT limit on encoded topic length.
const maxTopicLength = 65535

// Topics provides builders for the temperature sensor topics.
//
//	topics := mqtt.Topics{}
//	topics.Timers()    // "/temperature/dummy/timers"
//	topics.All()       // "/temperature/dummy/#"
type Topics struct{}

// Timers returns the topic the station publishes its timing report on.
//
// Example: /temperature/dummy/timers
func (Topics) Timers() string {
	return fmt.Sprintf("%s/timers", TopicPrefix)
}

// Test returns the station's inbound test topic.
//
// Example: /temperature/dummy/test
func (Topics) Test() string {
	return fmt.Sprintf("%s/test", TopicPrefix)
}

// All returns the multi-level wildcard filter for the whole namespace.
//
// Pattern: /temperature/dummy/#
func (Topics) All() string {
	return fmt.Sprintf("%s/#", TopicPrefix)
}

// ValidateTopic checks a topic name used for publishing.
// Topic names must be non-empty and must not contain wildcards.
func ValidateTopic(topic string) error {
	if err := checkTopicString(topic); err != nil {
		return err
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: %q contains a wildcard", ErrInvalidTopic, topic)
	}
	return nil
}

// ValidateFilter checks a topic filter used for subscribing.
//
// "+" must occupy a whole level. "#" must occupy a whole level and be the
// last one.
func ValidateFilter(filter string) error {
	if err := checkTopicString(filter); err != nil {
		return err
	}

	levels := strings.Split(filter, "/")
	for i, level := range levels {
		switch {
		case level == "#":
			if i != len(levels)-1 {
				return fmt.Errorf("%w: %q has '#' before the last level", ErrInvalidFilter, filter)
			}
		case level == "+":
		case strings.ContainsAny(level, "+#"):
			return fmt.Errorf("%w: %q mixes a wildcard with text in level %q", ErrInvalidFilter, filter, level)
		}
	}
	return nil
}

// checkTopicString applies the rules shared by names and filters.
func checkTopicString(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: topic cannot be empty", ErrInvalidTopic)
	}
	if len(topic) > maxTopicLength {
		return fmt.Errorf("%w: topic exceeds %d bytes", ErrInvalidTopic, maxTopicLength)
	}
	if strings.ContainsRune(topic, 0) {
		return fmt.Errorf("%w: topic contains a NUL character", ErrInvalidTopic)
	}
	return nil
}
