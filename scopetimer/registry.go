package scopetimer

import (
	"sort"
	"sync"

	"golang.org/x/exp/slog"
)

// defaultRegistry backs [For].
var defaultRegistry = NewRegistry()

// # Registry
//
// Represents a table of timing contexts keyed by worker identity, for programs
// whose goroutines are known by a stable id (worker index, job name...).
// The registry lock only protects the table itself: the Local returned for an
// id belongs to the goroutine acting as that worker and is used without locking.
// Its zero value has no meaning, use [NewRegistry].
type Registry struct {
	mu     sync.RWMutex
	locals map[string]*Local
	opts   []Option
}

// NewRegistry returns an empty registry creating its Locals with opts.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		locals: make(map[string]*Local),
		opts:   opts,
	}
}

// Local returns the timing context of worker id, creating it on first access.
func (r *Registry) Local(id string) *Local {
	r.mu.RLock()
	l, ok := r.locals[id]
	r.mu.RUnlock()

	if ok {
		return l
	}

	return r.newLocal(id)
}

func (r *Registry) newLocal(id string) *Local {
	r.mu.Lock()
	defer r.mu.Unlock()

	// another goroutine may have won the race
	if l, ok := r.locals[id]; ok {
		return l
	}

	l := New(r.opts...)
	r.locals[id] = l
	logger.Debug("created timing context", slog.String("worker", id))

	return l
}

// Drop forgets the timing context of worker id.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.locals, id)
}

// IDs returns the known worker ids in lexical order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.locals))
	for id := range r.locals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// For returns the timing context of worker id from the process registry.
func For(id string) *Local {
	return defaultRegistry.Local(id)
}
