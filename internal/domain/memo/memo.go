// Package memo caches predictions keyed by the assembled feature vector.
package memo

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/mobicost/internal/domain/model"
)

const defaultMaxSize = 4096

// Memo remembers predictions for feature vectors already classified. Entries
// never go stale because the artifacts are immutable for the process lifetime.
type Memo interface {
	// Get returns the cached prediction for key, if any.
	Get(ctx context.Context, key string) (model.Prediction, bool)
	// Put records p under key, evicting the oldest entry when full.
	Put(ctx context.Context, key string, p model.Prediction)
	// Size reports the number of cached entries.
	Size() int64
}

// node is one entry of the insertion-ordered list.
type node struct {
	key        string
	value      model.Prediction
	prev, next *node
}

func (n *node) reset() {
	*n = node{}
}

// inMemoryMemo is a bounded map plus a doubly linked list in insertion order.
// head is the newest entry, tail the oldest. A non-positive maxSize disables
// caching entirely.
type inMemoryMemo struct {
	mu       sync.Mutex
	entries  map[string]*node
	head     *node
	tail     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// New creates an in-memory memo with configuration options.
func New(opts ...Option) Memo {
	m := &inMemoryMemo{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(m)
	}
	m.entries = make(map[string]*node)
	m.nodePool = sync.Pool{
		New: func() any { return &node{} },
	}
	return m
}

func (m *inMemoryMemo) Get(_ context.Context, key string) (model.Prediction, bool) {
	if m.maxSize <= 0 {
		return model.Prediction{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.entries[key]
	if !ok {
		return model.Prediction{}, false
	}
	return clonePrediction(n.value), true
}

func (m *inMemoryMemo) Put(_ context.Context, key string, p model.Prediction) {
	if m.maxSize <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if n, ok := m.entries[key]; ok {
		n.value = clonePrediction(p)
		return
	}
	if len(m.entries) >= m.maxSize {
		m.evictOldest()
	}

	n := m.nodePool.Get().(*node)
	n.key = key
	n.value = clonePrediction(p)
	n.next = m.head
	if m.head != nil {
		m.head.prev = n
	}
	m.head = n
	if m.tail == nil {
		m.tail = n
	}
	m.entries[key] = n
	m.size.Add(1)
}

// evictOldest drops the tail. Must be called with m.mu held.
func (m *inMemoryMemo) evictOldest() {
	old := m.tail
	if old == nil {
		return
	}
	m.tail = old.prev
	if m.tail != nil {
		m.tail.next = nil
	} else {
		m.head = nil
	}
	delete(m.entries, old.key)
	old.reset()
	m.nodePool.Put(old)
	m.size.Add(-1)
}

func (m *inMemoryMemo) Size() int64 {
	return m.size.Load()
}

// clonePrediction detaches the probability slice so callers cannot mutate
// cached entries.
func clonePrediction(p model.Prediction) model.Prediction {
	p.Probabilities = append([]float64(nil), p.Probabilities...)
	return p
}
