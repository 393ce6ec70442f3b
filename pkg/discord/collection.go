package discord

import (
	"sort"
	"sync"
)

// Collection is a concurrency-safe registry keyed by name.
type Collection[T any] struct {
	items map[string]T
	mu    sync.RWMutex
}

// NewCollection creates an empty Collection
func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{items: make(map[string]T)}
}

// Set adds or updates an item
func (c *Collection[T]) Set(name string, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[name] = item
}

// Get retrieves an item by name
func (c *Collection[T]) Get(name string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[name]
	return item, ok
}

// Size returns the number of items
func (c *Collection[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Names returns every key in ascending order.
func (c *Collection[T]) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.items))
	for name := range c.items {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Sorted returns every item ordered by name.
func (c *Collection[T]) Sorted() []T {
	names := c.Names()
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(names))
	for _, name := range names {
		if item, ok := c.items[name]; ok {
			out = append(out, item)
		}
	}
	return out
}

// CommandCollection holds registered slash commands
type CommandCollection = Collection[*Command]

// PrefixCollection holds registered prefix commands
type PrefixCollection = Collection[*PrefixCommand]

// ModalCollection holds modal submit handlers keyed by custom id
type ModalCollection = Collection[*Modal]
