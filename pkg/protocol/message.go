// Package protocol defines the messages exchanged between the browser runtime
// and live views, and the codecs that put them on the wire.
package protocol

import "time"

// MessageType classifies a message by its event.
type MessageType uint8

const (
	// MsgEvent is a browser interaction (click, change, submit...).
	MsgEvent MessageType = iota
	// MsgJoin is sent once when the view connects.
	MsgJoin
	// MsgLeave is sent when the view disconnects.
	MsgLeave
	// MsgReply answers a request carrying the same ref.
	MsgReply
	// MsgDiff carries a render diff.
	MsgDiff
	// MsgHeartbeat keeps the connection alive.
	MsgHeartbeat
)

// Event names with a fixed meaning.
const (
	EventJoin      = "phx_join"
	EventLeave     = "phx_leave"
	EventReply     = "phx_reply"
	EventHeartbeat = "heartbeat"
	EventDiff      = "diff"
)

// String returns a string representation of the message type.
func (mt MessageType) String() string {
	switch mt {
	case MsgEvent:
		return "event"
	case MsgJoin:
		return "join"
	case MsgLeave:
		return "leave"
	case MsgReply:
		return "reply"
	case MsgDiff:
		return "diff"
	case MsgHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Message is one frame of the live protocol.
type Message struct {
	Type      MessageType    `json:"t" msgpack:"t"`
	JoinRef   string         `json:"join_ref,omitempty" msgpack:"join_ref,omitempty"`
	Ref       string         `json:"ref,omitempty" msgpack:"ref,omitempty"`
	Topic     string         `json:"topic" msgpack:"topic"`
	Event     string         `json:"event,omitempty" msgpack:"event,omitempty"`
	Payload   map[string]any `json:"payload,omitempty" msgpack:"payload,omitempty"`
	Timestamp int64          `json:"ts,omitempty" msgpack:"ts,omitempty"`
}

// NewMessage creates a message whose type is derived from event.
func NewMessage(topic, event string, payload map[string]any) *Message {
	return &Message{
		Type:      EventToType(event),
		Topic:     topic,
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// WithRef sets the correlation ref.
func (m *Message) WithRef(ref string) *Message {
	m.Ref = ref
	return m
}

// PayloadString returns a string value of the payload, or "".
func (m *Message) PayloadString(key string) string {
	v, _ := m.Payload[key].(string)
	return v
}

// Reply creates a phx_reply for ref with the given status.
func Reply(ref, topic, status string, response map[string]any) *Message {
	if response == nil {
		response = map[string]any{}
	}
	return NewMessage(topic, EventReply, map[string]any{
		"status":   status,
		"response": response,
	}).WithRef(ref)
}

// OkReply creates a successful reply message.
func OkReply(ref, topic string, response map[string]any) *Message {
	return Reply(ref, topic, "ok", response)
}

// ErrorReply creates an error reply message.
func ErrorReply(ref, topic, reason string) *Message {
	return Reply(ref, topic, "error", map[string]any{"reason": reason})
}

// EventToType maps event names to message types.
func EventToType(event string) MessageType {
	switch event {
	case EventJoin:
		return MsgJoin
	case EventLeave:
		return MsgLeave
	case EventReply:
		return MsgReply
	case EventHeartbeat, "phx_heartbeat":
		return MsgHeartbeat
	case EventDiff:
		return MsgDiff
	default:
		return MsgEvent
	}
}
