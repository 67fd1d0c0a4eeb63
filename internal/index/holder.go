package index

import (
	"sync"
	"sync/atomic"
)

// Holder publishes the active snapshot. Readers call Current and work
// against whatever snapshot they got, even if a build swaps a newer
// one in mid-request. Swap notifies registered hooks, which the facet
// cache uses to invalidate itself.
type Holder struct {
	current atomic.Pointer[Snapshot]

	mu    sync.Mutex
	hooks []func(*Snapshot)
}

// NewHolder returns a holder with no snapshot.
func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the active snapshot, or nil before the first swap.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Swap publishes a new snapshot and notifies hooks.
func (h *Holder) Swap(s *Snapshot) {
	h.current.Store(s)

	h.mu.Lock()
	hooks := make([]func(*Snapshot), len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	for _, hook := range hooks {
		hook(s)
	}
}

// OnSwap registers a hook invoked after each swap.
func (h *Holder) OnSwap(hook func(*Snapshot)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}
