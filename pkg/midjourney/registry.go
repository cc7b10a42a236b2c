package midjourney

import (
	"log/slog"
	"sync"
)

// stage is the lifecycle step an inbound event represents for its command.
type stage int

const (
	// stagePlaceholder is the first message, carrying the token.
	stagePlaceholder stage = iota + 1
	// stageProgress is an edit of the placeholder message.
	stageProgress
	// stageCompletion is the separate, token-less result message.
	stageCompletion
)

func (s stage) String() string {
	switch s {
	case stagePlaceholder:
		return "placeholder"
	case stageProgress:
		return "progress"
	case stageCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// waiter is the registry handle of one in-flight command. The dispatch loop
// writes into q; the outcome stream reads from it.
type waiter struct {
	token string
	q     *queue
}

// placeholder links a placeholder message id back to its token and to the
// prompt text the completion message will repeat.
type placeholder struct {
	messageID string
	token     string
	prompt    string
}

// registry correlates inbound events with in-flight commands. It holds the
// waiters keyed by correlation token and the placeholders awaiting their
// completion message, in the order they were seen. One mutex guards both.
type registry struct {
	logger *slog.Logger

	mu           sync.Mutex
	waiters      map[string]*waiter
	placeholders []placeholder
}

func newRegistry(logger *slog.Logger) *registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &registry{
		logger:  logger,
		waiters: make(map[string]*waiter),
	}
}

// register adds a waiter for token. Tokens must be unique among in-flight
// commands.
func (r *registry) register(token string, capacity int) (*waiter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.waiters[token]; ok {
		return nil, ErrDuplicateToken
	}
	w := &waiter{token: token, q: newQueue(capacity)}
	r.waiters[token] = w
	return w, nil
}

// dispatch hands s to the waiter registered under token. It is a no-op when
// no waiter is registered.
func (r *registry) dispatch(token string, s signal) bool {
	r.mu.Lock()
	w, ok := r.waiters[token]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return w.q.push(s)
}

// unregister removes the waiter and any placeholder still held for token,
// and closes the waiter's queue. Calling it again is harmless.
func (r *registry) unregister(token string) {
	r.mu.Lock()
	w, ok := r.waiters[token]
	delete(r.waiters, token)
	kept := r.placeholders[:0]
	for _, p := range r.placeholders {
		if p.token != token {
			kept = append(kept, p)
		}
	}
	clear(r.placeholders[len(kept):])
	r.placeholders = kept
	r.mu.Unlock()

	if ok {
		w.q.close()
	}
}

// closeAll unregisters every waiter.
func (r *registry) closeAll() {
	r.mu.Lock()
	tokens := make([]string, 0, len(r.waiters))
	for token := range r.waiters {
		tokens = append(tokens, token)
	}
	r.mu.Unlock()

	for _, token := range tokens {
		r.unregister(token)
	}
}

// resolve maps ev to the correlation token it belongs to.
//
//  1. A create event with a nonce is a placeholder: its token is returned,
//     and if a command is waiting on that token the message id and prompt
//     are recorded.
//  2. A create event without a nonce is a completion candidate: the first
//     recorded placeholder whose prompt matches is consumed and its token
//     returned.
//  3. An update event returns the token of the placeholder with the same
//     message id, leaving the placeholder in place.
//  4. Anything else resolves to nothing.
func (r *registry) resolve(ev Event) (string, stage, bool) {
	switch e := ev.(type) {
	case *MessageCreate:
		if e.Nonce != "" {
			r.recordPlaceholder(e)
			return e.Nonce, stagePlaceholder, true
		}
		if _, n := r.pending(); n == 0 {
			return "", 0, false
		}
		return r.consumeByPrompt(r.promptOf(&e.Message))
	case *MessageUpdate:
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, p := range r.placeholders {
			if p.messageID == e.ID {
				return p.token, stageProgress, true
			}
		}
		return "", 0, false
	default:
		return "", 0, false
	}
}

func (r *registry) recordPlaceholder(e *MessageCreate) {
	r.mu.Lock()
	_, ok := r.waiters[e.Nonce]
	r.mu.Unlock()
	if !ok {
		return
	}
	prompt := r.promptOf(&e.Message)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.waiters[e.Nonce]; !ok {
		return
	}
	for _, p := range r.placeholders {
		if p.messageID == e.ID {
			return
		}
	}
	r.placeholders = append(r.placeholders, placeholder{
		messageID: e.ID,
		token:     e.Nonce,
		prompt:    prompt,
	})
}

func (r *registry) consumeByPrompt(prompt string) (string, stage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.placeholders {
		if p.prompt != prompt {
			continue
		}
		r.placeholders = append(r.placeholders[:i], r.placeholders[i+1:]...)
		return p.token, stageCompletion, true
	}
	return "", 0, false
}

func (r *registry) promptOf(m *Message) string {
	prompt, ok := extractPrompt(m.Content)
	if !ok {
		r.logger.Warn("midjourney: prompt markers not found, matching on full content",
			"message_id", m.ID, "content", truncate(m.Content, 200))
	}
	return prompt
}

// pending returns the number of registered waiters and recorded
// placeholders.
func (r *registry) pending() (waiters, placeholders int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiters), len(r.placeholders)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
