package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/mobicost/internal/domain/model"
)

func job(batch string, i int) Job {
	return Job{BatchID: batch, Index: i, Spec: model.RawSpec{RAM: 1000 + i}}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if q.Cap() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Cap())
	}

	if !q.Enqueue(ctx, job("b1", 0)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	dctx, cancel := context.WithCancel(ctx)
	defer cancel()
	got := <-q.Dequeue(dctx)
	if got.BatchID != "b1" || got.Spec.RAM != 1000 {
		t.Errorf("unexpected job %+v", got)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("b", 0)) || !q.Enqueue(ctx, job("b", 1)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, job("b", 2)) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, job("b", 0)) {
		t.Error("expected enqueue to fail with a cancelled context")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const producers, perProducer = 10, 100
	var consumed sync.Map
	var count sync.WaitGroup
	count.Add(producers * perProducer)

	for range 4 {
		go func() {
			for j := range q.Dequeue(ctx) {
				consumed.Store(fmt.Sprintf("%s/%d", j.BatchID, j.Index), true)
				count.Done()
			}
		}()
	}

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				for !q.Enqueue(ctx, job(fmt.Sprintf("p%d", p), i)) {
					time.Sleep(time.Millisecond)
				}
			}
		}()
	}
	wg.Wait()

	done := make(chan struct{})
	go func() { count.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumers did not drain the queue")
	}

	n := 0
	consumed.Range(func(_, _ any) bool { n++; return true })
	if n != producers*perProducer {
		t.Errorf("expected %d distinct jobs, got %d", producers*perProducer, n)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("b", 0)) || !q.Enqueue(ctx, job("b", 1)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if q.Enqueue(ctx, job("b", 2)) {
		t.Error("expected enqueue to fail after closing")
	}

	// Queued jobs are still delivered, then the channel closes.
	ch := q.Dequeue(ctx)
	delivered := 0
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				if delivered != 2 {
					t.Errorf("expected 2 drained jobs, got %d", delivered)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			delivered++
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}

func TestInMemoryQueue_DroppedJobIsAnswered(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	reply := make(chan model.Outcome, 1)
	if !q.Enqueue(context.Background(), Job{Index: 3, Reply: reply}) {
		t.Fatal("expected enqueue to succeed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	_ = q.Dequeue(ctx) // nobody reads the forwarding channel
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case o := <-reply:
		if o.Index != 3 || o.Err == nil {
			t.Errorf("unexpected outcome %+v", o)
		}
	case <-time.After(time.Second):
		t.Fatal("dropped job was never answered")
	}
}
