package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/mobicost/internal/adapters/mq/queue"
	"github.com/okian/mobicost/internal/adapters/mq/worker"
	"github.com/okian/mobicost/internal/domain/model"
	logging "github.com/okian/mobicost/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan queue.Job
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 16)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.jobs) })
	return nil
}

type mockPredictor struct {
	mu    sync.Mutex
	calls int
	fail  map[int]error // keyed by RAM
}

func (m *mockPredictor) Predict(_ context.Context, s model.RawSpec) (model.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err, ok := m.fail[s.RAM]; ok {
		return model.Prediction{}, err
	}
	return model.Prediction{Tier: s.RAM % 4, Label: "stub", Probabilities: []float64{0.25, 0.25, 0.25, 0.25}}, nil
}

func (m *mockPredictor) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func init() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

func collect(t *testing.T, reply <-chan model.Outcome, n int) map[int]model.Outcome {
	t.Helper()
	out := make(map[int]model.Outcome, n)
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case o := <-reply:
			out[o.Index] = o
		case <-timeout:
			t.Fatalf("got %d of %d outcomes", len(out), n)
		}
	}
	return out
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading a mock queue", t, func() {
		q := newMockQueue()
		p := &mockPredictor{fail: map[int]error{13: errors.New("classifier exploded")}}
		w := worker.NewInMemoryWorker(q, p, worker.WithName("w-test"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When jobs arrive", func() {
			reply := make(chan model.Outcome, 3)
			q.jobs <- queue.Job{BatchID: "b", Index: 0, Spec: model.RawSpec{RAM: 6}, Reply: reply}
			q.jobs <- queue.Job{BatchID: "b", Index: 1, Spec: model.RawSpec{RAM: 13}, Reply: reply}
			q.jobs <- queue.Job{BatchID: "b", Index: 2, Spec: model.RawSpec{RAM: 7}, Reply: reply}
			got := collect(t, reply, 3)

			convey.Convey("Then every job is answered with its own outcome", func() {
				convey.So(got[0].Err, convey.ShouldBeNil)
				convey.So(got[0].Prediction.Tier, convey.ShouldEqual, 2)
				convey.So(got[1].Err, convey.ShouldNotBeNil)
				convey.So(got[2].Prediction.Tier, convey.ShouldEqual, 3)
				convey.So(p.callCount(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When shutting down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then the loop exits", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker with a custom logger", t, func() {
		q := newMockQueue()
		w := worker.NewInMemoryWorker(q, &mockPredictor{}, worker.WithLogger(logging.Named("custom")))
		ctx := context.Background()
		go w.Run(ctx)

		convey.Convey("When the queue closes", func() {
			_ = q.Close()

			convey.Convey("Then the worker stops on its own", func() {
				sctx, cancel := context.WithTimeout(ctx, time.Second)
				defer cancel()
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over the in-memory queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		p := &mockPredictor{}
		pool := worker.NewPool(4, q, p)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When a batch is enqueued", func() {
			const n = 40
			reply := make(chan model.Outcome, n)
			for i := range n {
				ok := q.Enqueue(ctx, queue.Job{BatchID: "b", Index: i, Spec: model.RawSpec{RAM: i}, Reply: reply})
				convey.So(ok, convey.ShouldBeTrue)
			}
			got := collect(t, reply, n)

			convey.Convey("Then every item is answered exactly once", func() {
				convey.So(len(got), convey.ShouldEqual, n)
				for i := range n {
					convey.So(got[i].Prediction.Tier, convey.ShouldEqual, i%4)
				}
				convey.So(p.callCount(), convey.ShouldEqual, n)
			})
		})

		convey.Convey("When shutting down", func() {
			err := pool.Shutdown(context.Background())

			convey.Convey("Then the queue is closed and a second call is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a pool with a non-positive size", t, func() {
		pool := worker.NewPool(0, newMockQueue(), &mockPredictor{})
		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
