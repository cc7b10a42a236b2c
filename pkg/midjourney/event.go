package midjourney

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Gateway opcodes used by the client.
const (
	OpDispatch     = 0
	OpHeartbeat    = 1
	OpIdentify     = 2
	OpHello        = 10
	OpHeartbeatAck = 11
)

// Dispatch event types the decoder understands.
const (
	EventTypeMessageCreate = "MESSAGE_CREATE"
	EventTypeMessageUpdate = "MESSAGE_UPDATE"
)

// Event is a decoded inbound gateway event. The concrete type is one of
// *MessageCreate, *MessageUpdate or *Unsupported.
type Event interface {
	// Type returns the dispatch type of the event ("" for non-dispatch frames).
	Type() string

	sealed()
}

// Author is the sender of a message.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Bot      bool   `json:"bot,omitempty"`
}

// Embed is a rich embed attached to a message. The bot uses embeds for
// error and notice replies.
type Embed struct {
	Type        string `json:"type,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	ProxyURL string `json:"proxy_url,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// Message holds the message fields shared by create and update events.
type Message struct {
	ID          string
	ChannelID   string
	Author      Author
	Content     string
	Embeds      []Embed
	Attachments []Attachment
	Flags       int
}

// FirstAttachmentURL returns the URL of the first attachment, or "".
func (m *Message) FirstAttachmentURL() string {
	if len(m.Attachments) == 0 {
		return ""
	}
	return m.Attachments[0].URL
}

// MessageCreate is a MESSAGE_CREATE dispatch. Nonce is the correlation token
// echoed by the platform; it is empty when the message carries none.
type MessageCreate struct {
	Message
	Nonce string
}

// MessageUpdate is a MESSAGE_UPDATE dispatch.
type MessageUpdate struct {
	Message
}

// Unsupported is any frame the decoder does not interpret. It keeps the
// opcode, the dispatch type and the raw payload.
type Unsupported struct {
	Op      int
	Kind    string
	Payload json.RawMessage
}

func (*MessageCreate) Type() string { return EventTypeMessageCreate }
func (*MessageUpdate) Type() string { return EventTypeMessageUpdate }
func (e *Unsupported) Type() string { return e.Kind }

func (*MessageCreate) sealed() {}
func (*MessageUpdate) sealed() {}
func (*Unsupported) sealed()   {}

// DecodeError reports an inbound frame that could not be decoded.
type DecodeError struct {
	Kind string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("midjourney: decode frame: %v", e.Err)
	}
	return fmt.Sprintf("midjourney: decode %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// frame is the gateway envelope.
type frame struct {
	Op   int             `json:"op"`
	Data json.RawMessage `json:"d"`
	Seq  *int64          `json:"s,omitempty"`
	Kind *string         `json:"t,omitempty"`
}

// wireMessage keeps optional fields raw so that a malformed optional field
// does not fail the whole event.
type wireMessage struct {
	ID          string          `json:"id"`
	ChannelID   string          `json:"channel_id"`
	Author      *Author         `json:"author"`
	Content     string          `json:"content"`
	Embeds      json.RawMessage `json:"embeds"`
	Attachments json.RawMessage `json:"attachments"`
	Nonce       json.RawMessage `json:"nonce"`
	Flags       int             `json:"flags"`
}

// DecodeEvent parses one raw gateway frame into an Event.
//
// MESSAGE_CREATE and MESSAGE_UPDATE dispatches become *MessageCreate and
// *MessageUpdate; every other frame becomes *Unsupported. A frame that is
// not a JSON object, or a message event missing its id, author or embeds,
// returns a *DecodeError.
func DecodeEvent(raw []byte) (Event, error) {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &DecodeError{Err: errors.New("frame is not a JSON object")}
	}
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, &DecodeError{Err: err}
	}
	kind := ""
	if f.Kind != nil {
		kind = *f.Kind
	}

	switch {
	case f.Op == OpDispatch && kind == EventTypeMessageCreate:
		msg, nonce, err := decodeMessage(f.Data)
		if err != nil {
			return nil, &DecodeError{Kind: kind, Err: err}
		}
		return &MessageCreate{Message: msg, Nonce: nonce}, nil
	case f.Op == OpDispatch && kind == EventTypeMessageUpdate:
		msg, _, err := decodeMessage(f.Data)
		if err != nil {
			return nil, &DecodeError{Kind: kind, Err: err}
		}
		return &MessageUpdate{Message: msg}, nil
	default:
		return &Unsupported{Op: f.Op, Kind: kind, Payload: f.Data}, nil
	}
}

func decodeMessage(data json.RawMessage) (Message, string, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return Message{}, "", err
	}
	if w.ID == "" {
		return Message{}, "", errors.New("missing message id")
	}
	if w.Author == nil || w.Author.ID == "" {
		return Message{}, "", errors.New("missing author")
	}
	if len(w.Embeds) == 0 || string(w.Embeds) == "null" {
		return Message{}, "", errors.New("missing embeds")
	}
	var embeds []Embed
	if err := json.Unmarshal(w.Embeds, &embeds); err != nil {
		return Message{}, "", fmt.Errorf("embeds: %w", err)
	}

	msg := Message{
		ID:        w.ID,
		ChannelID: w.ChannelID,
		Author:    *w.Author,
		Content:   w.Content,
		Embeds:    embeds,
		Flags:     w.Flags,
	}
	if len(w.Attachments) > 0 {
		var atts []Attachment
		if err := json.Unmarshal(w.Attachments, &atts); err == nil {
			msg.Attachments = atts
		}
	}
	return msg, decodeNonce(w.Nonce), nil
}

// decodeNonce accepts the nonce as a string or a number; anything else is
// treated as absent.
func decodeNonce(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if _, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return n.String()
		}
	}
	return ""
}
