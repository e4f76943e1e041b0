package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec errors.
var (
	ErrInvalidMessage = errors.New("invalid message format")
	ErrUnknownCodec   = errors.New("unknown codec")
)

// Subprotocol names offered during the websocket handshake.
const (
	SubprotocolJSON    = "live.json"
	SubprotocolMsgPack = "live.msgpack"
	SubprotocolPhoenix = "live.phoenix"
)

// Codec handles message encoding/decoding.
type Codec interface {
	// Encode serializes a message to bytes.
	Encode(msg *Message) ([]byte, error)

	// Decode deserializes bytes to a message.
	Decode(data []byte) (*Message, error)

	// Name returns the codec name.
	Name() string

	// Binary reports whether frames must be sent as binary websocket messages.
	Binary() bool
}

// JSONCodec encodes messages as JSON objects. The browser runtime uses it.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

func (c *JSONCodec) Encode(msg *Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (c *JSONCodec) Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	msg.Type = EventToType(msg.Event)
	return &msg, nil
}

func (c *JSONCodec) Name() string { return "json" }

func (c *JSONCodec) Binary() bool { return false }

// MsgPackCodec encodes messages with MessagePack.
type MsgPackCodec struct{}

// NewMsgPackCodec creates a new MsgPack codec.
func NewMsgPackCodec() *MsgPackCodec {
	return &MsgPackCodec{}
}

func (c *MsgPackCodec) Encode(msg *Message) ([]byte, error) {
	return msgpack.Marshal(msg)
}

func (c *MsgPackCodec) Decode(data []byte) (*Message, error) {
	var msg Message
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	msg.Type = EventToType(msg.Event)
	return &msg, nil
}

func (c *MsgPackCodec) Name() string { return "msgpack" }

func (c *MsgPackCodec) Binary() bool { return true }

// PhoenixCodec implements the array wire format
// [join_ref, ref, topic, event, payload].
type PhoenixCodec struct{}

// NewPhoenixCodec creates a new Phoenix-compatible codec.
func NewPhoenixCodec() *PhoenixCodec {
	return &PhoenixCodec{}
}

func (c *PhoenixCodec) Encode(msg *Message) ([]byte, error) {
	var joinRef, ref any
	if msg.JoinRef != "" {
		joinRef = msg.JoinRef
	}
	if msg.Ref != "" {
		ref = msg.Ref
	}
	return json.Marshal([]any{joinRef, ref, msg.Topic, msg.Event, msg.Payload})
}

func (c *PhoenixCodec) Decode(data []byte) (*Message, error) {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if len(tuple) != 5 {
		return nil, ErrInvalidMessage
	}

	msg := &Message{}
	var joinRef, ref *string
	if err := json.Unmarshal(tuple[0], &joinRef); err == nil && joinRef != nil {
		msg.JoinRef = *joinRef
	}
	if err := json.Unmarshal(tuple[1], &ref); err == nil && ref != nil {
		msg.Ref = *ref
	}
	if err := json.Unmarshal(tuple[2], &msg.Topic); err != nil {
		return nil, fmt.Errorf("%w: topic: %v", ErrInvalidMessage, err)
	}
	if err := json.Unmarshal(tuple[3], &msg.Event); err != nil {
		return nil, fmt.Errorf("%w: event: %v", ErrInvalidMessage, err)
	}
	if err := json.Unmarshal(tuple[4], &msg.Payload); err != nil || msg.Payload == nil {
		msg.Payload = make(map[string]any)
	}
	msg.Type = EventToType(msg.Event)
	return msg, nil
}

func (c *PhoenixCodec) Name() string { return "phoenix" }

func (c *PhoenixCodec) Binary() bool { return false }

// Subprotocols lists the handshake subprotocols in server preference order.
func Subprotocols() []string {
	return []string{SubprotocolJSON, SubprotocolMsgPack, SubprotocolPhoenix}
}

// ForSubprotocol returns the codec negotiated for a websocket subprotocol.
// An empty subprotocol selects JSON.
func ForSubprotocol(name string) (Codec, error) {
	switch name {
	case "", SubprotocolJSON:
		return NewJSONCodec(), nil
	case SubprotocolMsgPack:
		return NewMsgPackCodec(), nil
	case SubprotocolPhoenix:
		return NewPhoenixCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}
