// Package shutdown coordinates graceful process shutdown: a priority-ordered
// cleanup registry plus OS signal handling with a forced-exit escape hatch.
package shutdown

import (
	"context"
	"sort"
	"sync"
)

// Func is a cleanup function run during shutdown. It should respect the
// context deadline.
type Func func(ctx context.Context) error

type entry struct {
	name     string
	fn       Func
	priority int
}

// Registry holds cleanup functions ordered by priority. Lower priorities
// run first. Safe for concurrent registration.
//
// Priority conventions:
//   - 0-9: flush logs
//   - 10-19: stop accepting requests (HTTP server)
//   - 20-29: stop background workers
//   - 30-39: close databases and files
//   - 40+: remove temp files
type Registry struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a cleanup function. Registration after Run is a no-op.
func (r *Registry) Register(name string, priority int, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.entries = append(r.entries, entry{name: name, fn: fn, priority: priority})
}

// Run executes every registered function in priority order, continuing past
// failures, and returns the collected errors. The registry is closed
// afterwards; a second Run returns nil.
func (r *Registry) Run(ctx context.Context) []error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sorted := make([]entry, len(r.entries))
	copy(sorted, r.entries)
	r.mu.Unlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})

	var errs []error
	for _, e := range sorted {
		if err := e.fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Names lists registered functions in execution order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := make([]entry, len(r.entries))
	copy(sorted, r.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})
	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.name
	}
	return names
}

// Count returns the number of registered functions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
