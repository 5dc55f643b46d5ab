package daemon

import (
	"context"
	"sync"
)

// pendingQueue is an unbounded FIFO of image paths. A path already waiting
// is not queued again.
type pendingQueue struct {
	mu      sync.Mutex
	items   []string
	waiting map[string]struct{}
	closed  bool
	ready   chan struct{}
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{
		waiting: make(map[string]struct{}),
		ready:   make(chan struct{}, 1),
	}
}

// push appends path and reports the resulting backlog. added is false when
// path was already waiting or the queue is closed.
func (q *pendingQueue) push(path string) (added bool, backlog int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false, len(q.items)
	}
	if _, ok := q.waiting[path]; ok {
		return false, len(q.items)
	}
	q.items = append(q.items, path)
	q.waiting[path] = struct{}{}
	q.signal()
	return true, len(q.items)
}

// pop blocks until a path is available or the queue is closed and empty. It
// returns false once ctx is done, leaving waiting paths in place.
func (q *pendingQueue) pop(ctx context.Context) (string, bool) {
	for {
		if ctx.Err() != nil {
			return "", false
		}
		q.mu.Lock()
		if len(q.items) > 0 {
			path := q.items[0]
			q.items[0] = ""
			q.items = q.items[1:]
			delete(q.waiting, path)
			q.mu.Unlock()
			return path, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return "", false
		}
		select {
		case <-ctx.Done():
			return "", false
		case <-q.ready:
		}
	}
}

// close stops further pushes and wakes a blocked pop.
func (q *pendingQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.signal()
}

// discard empties the queue and returns how many paths were waiting.
func (q *pendingQueue) discard() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	q.items = nil
	clear(q.waiting)
	return n
}

func (q *pendingQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *pendingQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
