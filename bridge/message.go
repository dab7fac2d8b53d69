package bridge

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which persisted slot a relayed body belongs to.
type Kind int

const (
	// KindWeather is a weather-provider response.
	KindWeather Kind = iota
	// KindAddress is a geocoding-provider response.
	KindAddress
)

// Wire types used in Message.Type.
const (
	TypeWeather = "meteo"
	TypeAddress = "address"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindWeather:
		return "weather"
	case KindAddress:
		return "address"
	default:
		return "unknown"
	}
}

// WireType returns the message type sent to pages.
func (k Kind) WireType() string {
	switch k {
	case KindWeather:
		return TypeWeather
	case KindAddress:
		return TypeAddress
	default:
		return ""
	}
}

// ParseKind maps a wire type back to a Kind.
func ParseKind(wire string) (Kind, bool) {
	switch wire {
	case TypeWeather:
		return KindWeather, true
	case TypeAddress:
		return KindAddress, true
	default:
		return 0, false
	}
}

// Message is the relayed payload: {"type": "meteo"|"address", "data": string|null}.
type Message struct {
	Type string  `json:"type"`
	Data *string `json:"data"`
}

// NewMessage builds a message of kind carrying body.
func NewMessage(kind Kind, body string) Message {
	return Message{Type: kind.WireType(), Data: &body}
}

// NullMessage builds a message of kind with a null body.
func NullMessage(kind Kind) Message {
	return Message{Type: kind.WireType()}
}

// Kind returns the message kind.
func (m Message) Kind() (Kind, bool) {
	return ParseKind(m.Type)
}

// Encode serializes m to its wire form.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a wire message and rejects unknown types.
func ParseMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("bridge: decode message: %w", err)
	}
	if _, ok := m.Kind(); !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
	return m, nil
}
