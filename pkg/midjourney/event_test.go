package midjourney

import (
	"errors"
	"testing"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantType  string
		wantNonce string
		wantID    string
	}{
		{
			name:      "create with string nonce",
			raw:       `{"op":0,"s":3,"t":"MESSAGE_CREATE","d":{"id":"m1","channel_id":"c1","author":{"id":"bot"},"content":"**fox** - Waiting to start","embeds":[],"nonce":"1234"}}`,
			wantType:  EventTypeMessageCreate,
			wantNonce: "1234",
			wantID:    "m1",
		},
		{
			name:      "create with numeric nonce",
			raw:       `{"op":0,"t":"MESSAGE_CREATE","d":{"id":"m1","author":{"id":"bot"},"content":"","embeds":[],"nonce":987654321}}`,
			wantType:  EventTypeMessageCreate,
			wantNonce: "987654321",
			wantID:    "m1",
		},
		{
			name:     "create without nonce",
			raw:      `{"op":0,"t":"MESSAGE_CREATE","d":{"id":"m2","author":{"id":"bot"},"content":"**fox** - <@1> (fast)","embeds":[]}}`,
			wantType: EventTypeMessageCreate,
			wantID:   "m2",
		},
		{
			name:     "update",
			raw:      `{"op":0,"t":"MESSAGE_UPDATE","d":{"id":"m1","author":{"id":"bot"},"content":"**fox** - (31%)","embeds":[],"nonce":"ignored"}}`,
			wantType: EventTypeMessageUpdate,
			wantID:   "m1",
		},
		{
			name:     "other dispatch",
			raw:      `{"op":0,"t":"READY","d":{"session_id":"s"}}`,
			wantType: "READY",
		},
		{
			name: "heartbeat ack",
			raw:  `{"op":11}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeEvent([]byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeEvent: %v", err)
			}
			if ev.Type() != tt.wantType {
				t.Errorf("Type() = %q, want %q", ev.Type(), tt.wantType)
			}
			switch e := ev.(type) {
			case *MessageCreate:
				if e.Nonce != tt.wantNonce {
					t.Errorf("Nonce = %q, want %q", e.Nonce, tt.wantNonce)
				}
				if e.ID != tt.wantID {
					t.Errorf("ID = %q, want %q", e.ID, tt.wantID)
				}
			case *MessageUpdate:
				if e.ID != tt.wantID {
					t.Errorf("ID = %q, want %q", e.ID, tt.wantID)
				}
			case *Unsupported:
				if tt.wantID != "" {
					t.Errorf("got Unsupported, want message %q", tt.wantID)
				}
			}
		})
	}
}

func TestDecodeEvent_Unsupported(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"op":10,"d":{"heartbeat_interval":41250}}`))
	if err != nil {
		t.Fatal(err)
	}
	u, ok := ev.(*Unsupported)
	if !ok {
		t.Fatalf("got %T, want *Unsupported", ev)
	}
	if u.Op != OpHello {
		t.Errorf("Op = %d, want %d", u.Op, OpHello)
	}
	if string(u.Payload) != `{"heartbeat_interval":41250}` {
		t.Errorf("Payload = %s", u.Payload)
	}
}

func TestDecodeEvent_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ``},
		{"not json", `hello`},
		{"null", `null`},
		{"array", `[1,2]`},
		{"truncated", `{"op":0,"t":"MESSAGE_CREATE","d":{`},
		{"missing id", `{"op":0,"t":"MESSAGE_CREATE","d":{"author":{"id":"a"},"embeds":[]}}`},
		{"missing author", `{"op":0,"t":"MESSAGE_CREATE","d":{"id":"m","embeds":[]}}`},
		{"missing embeds", `{"op":0,"t":"MESSAGE_UPDATE","d":{"id":"m","author":{"id":"a"}}}`},
		{"null embeds", `{"op":0,"t":"MESSAGE_UPDATE","d":{"id":"m","author":{"id":"a"},"embeds":null}}`},
		{"bad embeds", `{"op":0,"t":"MESSAGE_CREATE","d":{"id":"m","author":{"id":"a"},"embeds":"x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("error %T is not *DecodeError", err)
			}
		})
	}
}

func TestDecodeEvent_Attachments(t *testing.T) {
	raw := `{"op":0,"t":"MESSAGE_CREATE","d":{"id":"m","author":{"id":"a"},"embeds":[],"flags":64,
		"attachments":[{"id":"1","filename":"u_fox_abc.png","url":"https://cdn.example/u_fox_abc.png","width":1024,"height":1024}]}}`
	ev, err := DecodeEvent([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	mc := ev.(*MessageCreate)
	if got := mc.FirstAttachmentURL(); got != "https://cdn.example/u_fox_abc.png" {
		t.Errorf("FirstAttachmentURL() = %q", got)
	}
	if mc.Flags != 64 {
		t.Errorf("Flags = %d, want 64", mc.Flags)
	}

	// A malformed optional field does not fail the event.
	raw = `{"op":0,"t":"MESSAGE_CREATE","d":{"id":"m","author":{"id":"a"},"embeds":[],"attachments":"bad","nonce":{"x":1}}}`
	ev, err = DecodeEvent([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	mc = ev.(*MessageCreate)
	if mc.FirstAttachmentURL() != "" || mc.Nonce != "" {
		t.Errorf("got attachments %v nonce %q, want none", mc.Attachments, mc.Nonce)
	}
}
