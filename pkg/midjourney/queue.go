package midjourney

import (
	"context"
	"sync"
)

// signal is one correlated event handed from the dispatch loop to a waiter.
type signal struct {
	stage stage
	event Event
}

// queue is the per-command handoff between the dispatch loop and the
// reading side of an outcome stream. push never blocks. When the queue is
// at capacity, the oldest progress signal is dropped to make room; terminal
// signals are never dropped.
type queue struct {
	notify chan struct{}

	mu       sync.Mutex
	items    []signal
	capacity int
	closed   bool
	dropped  int
}

func newQueue(capacity int) *queue {
	return &queue{
		notify:   make(chan struct{}, 1),
		capacity: capacity,
	}
}

// push appends s and wakes the reader. It reports false if the queue is
// closed.
func (q *queue) push(s signal) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	if q.capacity > 0 && len(q.items) >= q.capacity {
		q.dropOldestProgressLocked()
	}
	q.items = append(q.items, s)
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

func (q *queue) dropOldestProgressLocked() {
	for i, it := range q.items {
		if it.stage != stageCompletion {
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.dropped++
			return
		}
	}
}

// pop blocks until a signal is available, the queue is closed, or ctx is
// done. A closed queue still drains its buffered signals first.
func (q *queue) pop(ctx context.Context) (signal, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			s := q.items[0]
			q.items[0] = signal{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return s, nil
		}
		if q.closed {
			q.mu.Unlock()
			return signal{}, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return signal{}, ctx.Err()
		case <-q.notify:
		}
	}
}

// close stops further pushes and wakes a blocked reader.
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Len returns the number of buffered signals.
func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many progress signals were discarded for capacity.
func (q *queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
