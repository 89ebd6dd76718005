package ws

import (
	"encoding/json"
	"testing"
)

func TestDeserializeKnownTypes(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		check func(t *testing.T, msg Message)
	}{
		{
			name:  "join-group",
			frame: `{"type":"join-group","payload":{"group_id":3}}`,
			check: func(t *testing.T, msg Message) {
				join, ok := msg.(*JoinGroup)
				if !ok {
					t.Fatalf("wrong type %T", msg)
				}
				if join.GroupID != 3 {
					t.Errorf("group id = %d, want 3", join.GroupID)
				}
			},
		},
		{
			name:  "leave-group",
			frame: `{"type":"leave-group","payload":{"group_id":7}}`,
			check: func(t *testing.T, msg Message) {
				leave, ok := msg.(*LeaveGroup)
				if !ok {
					t.Fatalf("wrong type %T", msg)
				}
				if leave.GroupID != 7 {
					t.Errorf("group id = %d, want 7", leave.GroupID)
				}
			},
		},
		{
			name:  "send-message",
			frame: `{"type":"send-message","payload":{"client_id":"c-1","group_id":3,"content":"hi"}}`,
			check: func(t *testing.T, msg Message) {
				send, ok := msg.(*SendMessage)
				if !ok {
					t.Fatalf("wrong type %T", msg)
				}
				if send.ClientID != "c-1" || send.GroupID != 3 || send.Content != "hi" {
					t.Errorf("unexpected payload: %+v", send)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Deserialize([]byte(tt.frame))
			if err != nil {
				t.Fatalf("Deserialize failed: %v", err)
			}
			tt.check(t, msg)
		})
	}
}

func TestDeserializeUnknownType(t *testing.T) {
	if _, err := Deserialize([]byte(`{"type":"shrug","payload":{}}`)); err == nil {
		t.Error("unknown frame type must fail")
	}
}

func TestDeserializeMalformedFrame(t *testing.T) {
	if _, err := Deserialize([]byte(`not json`)); err == nil {
		t.Error("malformed frame must fail")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	original := &SendMessage{ClientID: "c-1", GroupID: 3, Content: "hello"}

	data, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	msg, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	restored, ok := msg.(*SendMessage)
	if !ok {
		t.Fatalf("wrong type %T", msg)
	}
	if *restored != *original {
		t.Errorf("round trip changed the message: %+v vs %+v", restored, original)
	}
}

func TestEnvelopeShape(t *testing.T) {
	data, err := json.Marshal(Envelope(MsgReceiveMessage, map[string]string{"content": "hi"}))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var frame struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if frame.Type != MsgReceiveMessage || frame.Payload["content"] != "hi" {
		t.Errorf("unexpected frame: %+v", frame)
	}
}
