// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
package hub

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"time"
)

// ErrHubStopped is returned when registering with a hub that has exited.
var ErrHubStopped = errors.New("hub: stopped")

// Event types pushed to dashboard clients.
const (
	EventStatus      = "status"
	EventCalibration = "calibration"
	EventError       = "error"
)

// Topics are the event types a client may subscribe to.
var Topics = []string{EventStatus, EventCalibration, EventError}

// Message is a pre-encoded text frame tagged with its event type.
type Message struct {
	Type string
	Data []byte
}

// Event is the JSON envelope of every broadcast.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data,omitempty"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, data any) Event {
	return Event{Type: eventType, Time: time.Now().UTC(), Data: data}
}

// Encode marshals the event into a message.
func (e Event) Encode() (Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: e.Type, Data: data}, nil
}

// ParseTopics parses a comma separated subscription list such as
// "status,error". Unknown names are ignored; an empty result means all.
func ParseTopics(list string) []string {
	var topics []string
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if slices.Contains(Topics, name) && !slices.Contains(topics, name) {
			topics = append(topics, name)
		}
	}
	return topics
}
