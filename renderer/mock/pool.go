package mock

import (
	"errors"
	"sync"

	"github.com/anisan-cli/trackplayer/renderer"
)

// ErrExhausted is returned by a Pool whose allocation limit was reached.
var ErrExhausted = errors.New("mock: no handles left")

// Pool hands out Handles and remembers them for inspection.
type Pool struct {
	mu      sync.Mutex
	opts    Options
	handles []*Handle
	limit   int
}

// NewPool returns a pool. A limit of zero allows any number of handles.
func NewPool(opts Options, limit int) *Pool {
	return &Pool{opts: opts, limit: limit}
}

// Factory allocates through the pool.
func (p *Pool) Factory() renderer.Factory {
	return func(renderer.Config) (renderer.Handle, error) {
		p.mu.Lock()
		defer p.mu.Unlock()

		if p.limit > 0 && len(p.handles) >= p.limit {
			return nil, ErrExhausted
		}

		h := New(p.opts)
		p.handles = append(p.handles, h)
		return h, nil
	}
}

// Handles lists every handle allocated so far, oldest first.
func (p *Pool) Handles() []*Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Handle(nil), p.handles...)
}

// Get returns the i-th allocated handle.
func (p *Pool) Get(i int) *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handles[i]
}

// Live counts handles that were not released.
func (p *Pool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, h := range p.handles {
		if !h.Released() {
			n++
		}
	}
	return n
}
