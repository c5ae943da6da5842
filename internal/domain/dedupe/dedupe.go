// Package dedupe tracks idempotency keys of match submissions.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50000

// Index maps client request keys to the match they created.
type Index interface {
	// Remember records key -> matchID unless key is already known. When it is,
	// the previously recorded match ID is returned with seen set to true.
	Remember(ctx context.Context, key, matchID string) (existing string, seen bool)

	// Forget drops key so a failed submission can be retried.
	Forget(ctx context.Context, key string)

	Size() int64
}

type node struct {
	key     string
	matchID string
	prev    *node
	next    *node
}

func (n *node) reset() {
	*n = node{}
}

// inMemoryIndex keeps keys in insertion order and evicts the oldest first.
// When maxSize <= 0 the index is unbounded.
type inMemoryIndex struct {
	mu       sync.Mutex
	entries  map[string]*node
	oldest   *node
	newest   *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryIndex creates an in-memory idempotency index.
func NewInMemoryIndex(opts ...Option) Index {
	d := &inMemoryIndex{
		maxSize: defaultMaxSize,
		entries: make(map[string]*node),
		nodePool: sync.Pool{
			New: func() interface{} { return &node{} },
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryIndex) Remember(ctx context.Context, key, matchID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, ok := d.entries[key]; ok {
		return n.matchID, true
	}

	if d.maxSize > 0 && len(d.entries) >= d.maxSize {
		d.evictOldest()
	}

	n := d.nodePool.Get().(*node)
	n.key, n.matchID = key, matchID
	d.pushNewest(n)
	d.entries[key] = n
	d.size.Add(1)
	return matchID, false
}

func (d *inMemoryIndex) Forget(ctx context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, ok := d.entries[key]
	if !ok {
		return
	}
	d.remove(n)
}

func (d *inMemoryIndex) Size() int64 {
	return d.size.Load()
}

// Must be called with d.mu held.
func (d *inMemoryIndex) pushNewest(n *node) {
	n.prev = d.newest
	n.next = nil
	if d.newest != nil {
		d.newest.next = n
	}
	d.newest = n
	if d.oldest == nil {
		d.oldest = n
	}
}

// Must be called with d.mu held.
func (d *inMemoryIndex) evictOldest() {
	if d.oldest != nil {
		d.remove(d.oldest)
	}
}

// Must be called with d.mu held.
func (d *inMemoryIndex) remove(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		d.oldest = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		d.newest = n.prev
	}
	delete(d.entries, n.key)
	n.reset()
	d.nodePool.Put(n)
	d.size.Add(-1)
}
