package release

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Registry holds one WorkflowController per release. Each HTTP server owns
// its own Registry; nothing here is process-global.
type Registry struct {
	deps Deps
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	ctrl     *WorkflowController
	lastUsed time.Time
}

// NewRegistry 创建控制器注册表
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:    deps,
		now:     time.Now,
		entries: make(map[string]*registryEntry),
	}
}

// Get returns the controller of releaseID, creating and loading it on first
// use. A controller whose first load fails is not kept.
func (r *Registry) Get(ctx context.Context, releaseID string) (*WorkflowController, error) {
	r.mu.Lock()
	if e, ok := r.entries[releaseID]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		return e.ctrl, nil
	}
	r.mu.Unlock()

	ctrl := NewWorkflowController(releaseID, r.deps)
	if err := ctrl.Refresh(ctx); err != nil {
		return nil, err
	}
	if _, err := ctrl.LoadJobs(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// another request may have loaded it meanwhile
	if e, ok := r.entries[releaseID]; ok {
		e.lastUsed = r.now()
		return e.ctrl, nil
	}
	r.entries[releaseID] = &registryEntry{ctrl: ctrl, lastUsed: r.now()}
	return ctrl, nil
}

// Lookup returns an already loaded controller without touching the CMA.
// It does not count as a use for EvictIdle.
func (r *Registry) Lookup(releaseID string) (*WorkflowController, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[releaseID]
	if !ok {
		return nil, false
	}
	return e.ctrl, true
}

// Forget drops the controller of a deleted release
func (r *Registry) Forget(releaseID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, releaseID)
}

// EvictIdle drops controllers no request has used for maxIdle. Controllers
// with an action in flight or a pending job are kept, so the registry is
// bounded by recently used releases plus releases with scheduled jobs.
func (r *Registry) EvictIdle(maxIdle time.Duration) []string {
	if maxIdle <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	var evicted []string
	for id, e := range r.entries {
		if e.lastUsed.After(cutoff) {
			continue
		}
		snap := e.ctrl.Snapshot()
		if snap.ProcessingAction != ProcessingNone || len(snap.PendingJobs) > 0 {
			continue
		}
		delete(r.entries, id)
		evicted = append(evicted, id)
	}
	sort.Strings(evicted)
	return evicted
}

// IDs returns the ids of all loaded releases in sorted order
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
