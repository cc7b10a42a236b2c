// Package history records finished jobs so that later commands (variations,
// downloads) can refer to them by message id.
//
// Records are msgpack-encoded and keyed by creation time, so listing returns
// jobs oldest first. A secondary key maps each message id to its record.
package history

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/haivivi/midjourney-go/pkg/midjourney"
)

// ErrNotFound is returned when no record exists for a message id.
var ErrNotFound = errors.New("history: not found")

// Record is one finished job.
type Record struct {
	ID        string    `json:"id" yaml:"id" msgpack:"id"`
	Command   string    `json:"command" yaml:"command" msgpack:"command"`
	MessageID string    `json:"message_id" yaml:"message_id" msgpack:"message_id"`
	Prompt    string    `json:"prompt" yaml:"prompt" msgpack:"prompt"`
	Content   string    `json:"content,omitempty" yaml:"content,omitempty" msgpack:"content,omitempty"`
	URI       string    `json:"uri" yaml:"uri" msgpack:"uri"`
	Hash      string    `json:"hash" yaml:"hash" msgpack:"hash"`
	Flags     int       `json:"flags,omitempty" yaml:"flags,omitempty" msgpack:"flags,omitempty"`
	Parent    string    `json:"parent,omitempty" yaml:"parent,omitempty" msgpack:"parent,omitempty"`
	Index     int       `json:"index,omitempty" yaml:"index,omitempty" msgpack:"index,omitempty"`
	Location  string    `json:"location,omitempty" yaml:"location,omitempty" msgpack:"location,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" msgpack:"created_at"`
}

// FromOutcome builds a record from a finished outcome.
func FromOutcome(kind midjourney.CommandKind, o *midjourney.Outcome) (*Record, error) {
	if !o.Finished() {
		return nil, midjourney.ErrNotFinished
	}
	return &Record{
		ID:        uuid.NewString(),
		Command:   string(kind),
		MessageID: o.MessageID,
		Prompt:    o.Prompt,
		Content:   o.Content,
		URI:       o.URI,
		Hash:      o.Hash,
		Flags:     o.Flags,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Outcome returns the finish outcome the record was made from.
func (r *Record) Outcome() *midjourney.Outcome {
	return &midjourney.Outcome{
		Type:      midjourney.OutcomeFinish,
		Percent:   100,
		MessageID: r.MessageID,
		Content:   r.Content,
		Prompt:    r.Prompt,
		URI:       r.URI,
		Hash:      r.Hash,
		Flags:     r.Flags,
	}
}

// Store persists records.
type Store interface {
	// Put stores r, replacing any record with the same message id.
	Put(ctx context.Context, r *Record) error

	// Get returns the record of a message id, or ErrNotFound.
	Get(ctx context.Context, messageID string) (*Record, error)

	// Delete removes the record of a message id. No error if absent.
	Delete(ctx context.Context, messageID string) error

	// List iterates over all records, oldest first.
	List(ctx context.Context) iter.Seq2[*Record, error]

	// Close releases the store.
	Close() error
}

const (
	jobPrefix = "job:"
	msgPrefix = "msg:"
)

// jobKey orders records by creation time.
func jobKey(r *Record) []byte {
	return fmt.Appendf(nil, "%s%020d:%s", jobPrefix, r.CreatedAt.UnixNano(), r.MessageID)
}

func msgKey(messageID string) []byte {
	return []byte(msgPrefix + messageID)
}

func validate(r *Record) error {
	if r == nil || r.MessageID == "" {
		return errors.New("history: record has no message id")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
