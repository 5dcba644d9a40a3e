package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/fieldtrace/internal/domain/model"
)

func submission(id string) model.Submission {
	return model.Submission{ID: id, Team: "254", Match: "qm1"}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if c := q.Capacity(); c != 2 {
		t.Errorf("expected capacity 2, got %d", c)
	}

	if !q.Enqueue(ctx, submission("sub1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != "sub1" {
		t.Errorf("expected sub1, got %v", got.ID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, submission("sub1")) || !q.Enqueue(ctx, submission("sub2")) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, submission("sub3")) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_IgnoresNonPositiveCapacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(0))
	if c := q.Capacity(); c != defaultQueueCapacity {
		t.Errorf("expected default capacity, got %d", c)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, submission("sub1")) {
		t.Error("expected enqueue to fail with cancelled context")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	q.Enqueue(ctx, submission("sub1"))
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Enqueue(ctx, submission("sub2")) {
		t.Error("expected enqueue to fail after close")
	}

	var drained []string
	for s := range q.Dequeue(ctx) {
		drained = append(drained, s.ID)
	}
	if len(drained) != 1 || drained[0] != "sub1" {
		t.Errorf("expected queued submission to drain, got %v", drained)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	const producers, perProducer = 10, 100
	q := NewInMemoryQueue(WithCapacity(producers * perProducer))
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if !q.Enqueue(ctx, submission(fmt.Sprintf("sub-%d-%d", p, i))) {
					t.Errorf("enqueue %d/%d failed", p, i)
				}
			}
		}(p)
	}
	wg.Wait()
	_ = q.Close()

	seen := make(map[string]bool)
	for s := range q.Dequeue(ctx) {
		if seen[s.ID] {
			t.Fatalf("duplicate submission %s", s.ID)
		}
		seen[s.ID] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("expected %d submissions, got %d", producers*perProducer, len(seen))
	}
}
