package midjourney

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := newQueue(0)
	for _, st := range []stage{stagePlaceholder, stageProgress, stageCompletion} {
		if !q.push(signal{stage: st}) {
			t.Fatal("push failed")
		}
	}
	ctx := context.Background()
	for _, want := range []stage{stagePlaceholder, stageProgress, stageCompletion} {
		s, err := q.pop(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if s.stage != want {
			t.Fatalf("stage = %v, want %v", s.stage, want)
		}
	}
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := newQueue(4)
	go func() {
		time.Sleep(20 * time.Millisecond)
		q.push(signal{stage: stageProgress})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s, err := q.pop(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.stage != stageProgress {
		t.Fatalf("stage = %v", s.stage)
	}
}

func TestQueue_Context(t *testing.T) {
	q := newQueue(4)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := q.pop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("pop = %v, want DeadlineExceeded", err)
	}
}

func TestQueue_CloseDrains(t *testing.T) {
	q := newQueue(4)
	q.push(signal{stage: stageProgress})
	q.close()
	q.close()

	if q.push(signal{stage: stageProgress}) {
		t.Fatal("push after close succeeded")
	}
	if _, err := q.pop(context.Background()); err != nil {
		t.Fatalf("buffered pop = %v", err)
	}
	if _, err := q.pop(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("pop = %v, want ErrClosed", err)
	}
}

func TestQueue_OverflowKeepsCompletion(t *testing.T) {
	q := newQueue(3)
	q.push(signal{stage: stagePlaceholder})
	q.push(signal{stage: stageCompletion})
	q.push(signal{stage: stageProgress})
	q.push(signal{stage: stageProgress})
	q.push(signal{stage: stageProgress})

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	if q.Dropped() != 2 {
		t.Fatalf("Dropped() = %d, want 2", q.Dropped())
	}
	var got []stage
	for q.Len() > 0 {
		s, _ := q.pop(context.Background())
		got = append(got, s.stage)
	}
	want := []stage{stageCompletion, stageProgress, stageProgress}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
