package reconcile

import (
	"context"
	"sync"

	"github.com/Vogelwarte/tytalb/segment"
)

// Workspace holds scratch buffers reused across recordings by one worker.
// A workspace must not be shared between goroutines.
type Workspace struct {
	truth []segment.Segment
	pred  []segment.Segment
	hits  []segment.Segment
	spans []segment.Segment
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

func (w *Workspace) reset() {
	w.truth = w.truth[:0]
	w.pred = w.pred[:0]
	w.hits = w.hits[:0]
	w.spans = w.spans[:0]
}

// Pool hands out a fixed number of workspaces to concurrent workers.
type Pool struct {
	workspaces chan *Workspace
	size       int
	mu         sync.Mutex
	closed     bool
}

// NewPool creates a pool of size workspaces.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	pool := &Pool{
		workspaces: make(chan *Workspace, size),
		size:       size,
	}
	for i := 0; i < size; i++ {
		pool.workspaces <- NewWorkspace()
	}
	return pool
}

// Acquire gets a workspace from the pool, blocking if none available.
// Respects context cancellation. Returns ErrPoolClosed if the pool is closed.
func (p *Pool) Acquire(ctx context.Context) (*Workspace, error) {
	select {
	case ws, ok := <-p.workspaces:
		if !ok {
			return nil, ErrPoolClosed
		}
		return ws, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a workspace to the pool.
func (p *Pool) Release(ws *Workspace) {
	if ws == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	select {
	case p.workspaces <- ws:
	default:
		// pool full; drop the extra workspace
	}
}

// Close closes the pool. Workspaces still held are dropped on Release.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.workspaces)
}

// Size returns the pool size.
func (p *Pool) Size() int {
	return p.size
}
