// Package snowflake provides Discord-style 64-bit identifiers.
//
// A snowflake packs a millisecond timestamp (relative to the Discord epoch,
// 2015-01-01T00:00:00Z) into the high 42 bits, followed by a 5-bit worker,
// a 5-bit process and a 12-bit sequence. Identifiers produced by one
// [Generator] are strictly increasing.
package snowflake

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Epoch is the Discord epoch in Unix milliseconds.
const Epoch int64 = 1420070400000

const (
	timestampShift = 22
	workerShift    = 17
	processShift   = 12
	sequenceMask   = 1<<12 - 1
)

// ID is a snowflake. It serializes to a decimal JSON string, the way the
// Discord API transmits ids.
type ID uint64

// Parse parses a decimal snowflake string.
func Parse(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("snowflake: parse %q: %w", s, err)
	}
	return ID(v), nil
}

// Time returns the creation time encoded in the id.
func (id ID) Time() time.Time {
	return time.UnixMilli(int64(id>>timestampShift) + Epoch)
}

// String returns the decimal representation.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IsZero reports whether id is unset.
func (id ID) IsZero() bool {
	return id == 0
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON implements json.Unmarshaler. Both string and numeric forms
// are accepted.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n uint64
		if err2 := json.Unmarshal(b, &n); err2 != nil {
			return err
		}
		*id = ID(n)
		return nil
	}
	if s == "" {
		*id = 0
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// Generator issues monotonically increasing snowflakes.
type Generator struct {
	mu       sync.Mutex
	worker   uint64
	process  uint64
	lastMs   int64
	sequence uint64
	now      func() time.Time
}

// NewGenerator creates a generator for the given worker and process ids.
// Only the low 5 bits of each are used.
func NewGenerator(worker, process uint8) *Generator {
	return &Generator{
		worker:  uint64(worker & 0x1f),
		process: uint64(process & 0x1f),
		now:     time.Now,
	}
}

// Next returns the next id. If the sequence space of the current
// millisecond is exhausted, the timestamp is advanced logically rather than
// waiting for the clock.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli() - Epoch
	if ms <= g.lastMs {
		g.sequence++
		if g.sequence > sequenceMask {
			g.lastMs++
			g.sequence = 0
		}
	} else {
		g.lastMs = ms
		g.sequence = 0
	}

	return ID(uint64(g.lastMs)<<timestampShift |
		g.worker<<workerShift |
		g.process<<processShift |
		g.sequence)
}
