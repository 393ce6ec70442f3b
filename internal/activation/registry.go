// Package activation tracks the channels in which the bot answers every
// message automatically. State lives for the lifetime of the process.
package activation

import (
	"sort"
	"sync"
)

// Registry is a concurrency-safe set of activated channel IDs.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]struct{})}
}

// Activate adds the channel. It returns false when the channel was already active.
func (r *Registry) Activate(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[channelID]; ok {
		return false
	}
	r.channels[channelID] = struct{}{}
	return true
}

// Deactivate removes the channel. It returns false when the channel was not active.
func (r *Registry) Deactivate(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[channelID]; !ok {
		return false
	}
	delete(r.channels, channelID)
	return true
}

// IsActive reports whether the channel is activated.
func (r *Registry) IsActive(channelID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.channels[channelID]
	return ok
}

// Len returns the number of active channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// List returns the active channel IDs in ascending order.
func (r *Registry) List() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.channels))
	for id := range r.channels {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}
