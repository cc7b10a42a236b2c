package midjourney

import (
	"context"
	"iter"
	"sync/atomic"
)

// stream returns the outcome sequence of one command. On first iteration it
// registers a waiter under a fresh nonce, submits the command, then yields
// correlated outcomes until the finish outcome, an error, or the caller
// stops. The waiter is unregistered on every exit path. The sequence can be
// iterated once.
func (c *Client) stream(ctx context.Context, kind CommandKind, build func(nonce string) *interaction) iter.Seq2[*Outcome, error] {
	var used atomic.Bool
	return func(yield func(*Outcome, error) bool) {
		if !used.CompareAndSwap(false, true) {
			yield(nil, ErrStreamConsumed)
			return
		}
		if c.closed.Load() {
			yield(nil, ErrClosed)
			return
		}
		if c.gateway.State() != StateLive {
			yield(nil, ErrNotConnected)
			return
		}

		nonce := c.nonces.Next().String()
		w, err := c.registry.register(nonce, c.opts.queueCapacity)
		if err != nil {
			yield(nil, err)
			return
		}
		defer c.registry.unregister(nonce)

		if _, err := c.interactions.submit(ctx, kind, build(nonce)); err != nil {
			yield(nil, err)
			return
		}

		for {
			s, err := w.q.pop(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			o := outcomeFrom(s)
			if o == nil {
				continue
			}
			if !yield(o, nil) {
				return
			}
			if o.Finished() {
				return
			}
		}
	}
}
