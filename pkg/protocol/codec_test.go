package protocol

import (
	"errors"
	"testing"
)

func TestCodecs_EncodeDecode(t *testing.T) {
	codecs := []Codec{NewJSONCodec(), NewMsgPackCodec(), NewPhoenixCodec()}

	for _, codec := range codecs {
		t.Run(codec.Name(), func(t *testing.T) {
			in := NewMessage("lv:abc", "fetch", map[string]any{"url": "https://example.com"}).WithRef("7")
			in.JoinRef = "1"

			data, err := codec.Encode(in)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			out, err := codec.Decode(data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}

			if out.Topic != "lv:abc" || out.Event != "fetch" || out.Ref != "7" || out.JoinRef != "1" {
				t.Errorf("unexpected message %+v", out)
			}
			if out.Type != MsgEvent {
				t.Errorf("expected MsgEvent, got %v", out.Type)
			}
			if out.PayloadString("url") != "https://example.com" {
				t.Errorf("payload lost: %v", out.Payload)
			}
		})
	}
}

func TestCodecs_Binary(t *testing.T) {
	if NewJSONCodec().Binary() || NewPhoenixCodec().Binary() {
		t.Error("text codecs should not be binary")
	}
	if !NewMsgPackCodec().Binary() {
		t.Error("msgpack should be binary")
	}
}

func TestPhoenixCodec_NullRefs(t *testing.T) {
	msg, err := NewPhoenixCodec().Decode([]byte(`[null,null,"lv:x","heartbeat",null]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Ref != "" || msg.JoinRef != "" {
		t.Errorf("expected empty refs, got %+v", msg)
	}
	if msg.Type != MsgHeartbeat {
		t.Errorf("expected heartbeat, got %v", msg.Type)
	}
	if msg.Payload == nil {
		t.Error("payload should default to an empty map")
	}
}

func TestPhoenixCodec_Invalid(t *testing.T) {
	inputs := []string{``, `{}`, `[1,2,3]`, `{malformed`}
	for _, in := range inputs {
		if _, err := NewPhoenixCodec().Decode([]byte(in)); !errors.Is(err, ErrInvalidMessage) {
			t.Errorf("%q: expected ErrInvalidMessage, got %v", in, err)
		}
	}
}

func TestForSubprotocol(t *testing.T) {
	tests := map[string]string{
		"":                 "json",
		SubprotocolJSON:    "json",
		SubprotocolMsgPack: "msgpack",
		SubprotocolPhoenix: "phoenix",
	}
	for sub, want := range tests {
		c, err := ForSubprotocol(sub)
		if err != nil {
			t.Fatalf("%q: %v", sub, err)
		}
		if c.Name() != want {
			t.Errorf("%q: expected %s, got %s", sub, want, c.Name())
		}
	}

	if _, err := ForSubprotocol("live.xml"); !errors.Is(err, ErrUnknownCodec) {
		t.Errorf("expected ErrUnknownCodec, got %v", err)
	}
}

func TestReply(t *testing.T) {
	msg := ErrorReply("3", "lv:x", "boom")
	if msg.Event != EventReply || msg.Type != MsgReply || msg.Ref != "3" {
		t.Fatalf("unexpected reply %+v", msg)
	}
	if msg.Payload["status"] != "error" {
		t.Errorf("expected error status, got %v", msg.Payload["status"])
	}
	resp, _ := msg.Payload["response"].(map[string]any)
	if resp["reason"] != "boom" {
		t.Errorf("expected reason boom, got %v", resp)
	}
}
