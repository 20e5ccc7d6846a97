package services

import (
	"sync"

	"landkit/internal/core/domain"
)

// Registry is the ordered collection of download items discovered in the
// last successfully parsed capture. It is the only shared mutable state in
// the application and has exactly two mutation entry points: ReplaceAll,
// which swaps the whole collection, and replace, which swaps one item by
// UUID at its known position.
//
// ReplaceAll bumps an internal generation counter; per-item replacements
// carry the generation they were started under so that state writes from
// fetches belonging to an abandoned collection never leak into a new one.
type Registry struct {
	mu         sync.RWMutex
	items      []domain.DownloadItem
	generation uint64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// ReplaceAll atomically swaps the full item collection and invalidates any
// in-flight per-item updates from the previous collection.
func (r *Registry) ReplaceAll(items []domain.DownloadItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append([]domain.DownloadItem(nil), items...)
	r.generation++
}

// Items returns a copy of the current collection in order
func (r *Registry) Items() []domain.DownloadItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.DownloadItem(nil), r.items...)
}

// Len returns the number of items
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// Get returns a copy of the item with the given UUID
func (r *Registry) Get(uuid string) (domain.DownloadItem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.UUID == uuid {
			return item, true
		}
	}
	return domain.DownloadItem{}, false
}

// Generation returns the current collection generation
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.generation
}

// replace swaps the item with the given UUID in place, leaving every other
// item untouched. The write is dropped when the collection was replaced
// since gen was observed, or when the UUID is no longer present.
func (r *Registry) replace(gen uint64, uuid string, item domain.DownloadItem) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.generation != gen {
		return false
	}
	for i := range r.items {
		if r.items[i].UUID == uuid {
			r.items[i] = item
			return true
		}
	}
	return false
}
