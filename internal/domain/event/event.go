package event

import (
	"encoding/json"
	"fmt"
)

// Field names of a stream entry.
const (
	FieldType = "event_type"
	FieldData = "event_data"
)

// Event is a catalog change published to the event stream.
type Event interface {
	EventType() string
	EventValue() ([]byte, error)
}

// DefaultEventValue provides a common implementation for EventValue
func DefaultEventValue(event interface{}) ([]byte, error) {
	return json.Marshal(event)
}

// Message renders e as the field/value pairs of a stream entry.
func Message(e Event) (map[string]interface{}, error) {
	value, err := e.EventValue()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s event: %w", e.EventType(), err)
	}
	return map[string]interface{}{
		FieldType: e.EventType(),
		FieldData: string(value),
	}, nil
}
