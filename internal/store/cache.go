// Package store holds the per-resource caches the commands read from. Each
// store keeps the last fetched collection per parent key and reconciles the
// results of create, update and terminate calls into it.
package store

import (
	"slices"
	"sync"
)

// Entity is anything cached by its own id.
type Entity interface {
	Key() string
}

// Policy decides which of two overlapping requests for the same key may write
// its result into the cache.
type Policy int

const (
	// LastDispatchedWins discards a response when a request dispatched later
	// for the same key has already been applied.
	LastDispatchedWins Policy = iota
	// LastResolvedWins applies every response in resolution order.
	LastResolvedWins
)

func (p Policy) String() string {
	if p == LastResolvedWins {
		return "last-resolved-wins"
	}
	return "last-dispatched-wins"
}

// Ticket identifies one dispatched request for a sequencing key.
type Ticket struct {
	key string
	seq uint64
}

// Cache maps a parent key to the ordered list of entities under it. A key is
// present only after a fetch for it resolved or an entity was created under it.
type Cache[T Entity] struct {
	mu      sync.RWMutex
	lists   map[string][]T
	policy  Policy
	next    uint64
	applied map[string]uint64
}

// NewCache returns an empty cache using policy for request sequencing.
func NewCache[T Entity](policy Policy) *Cache[T] {
	return &Cache[T]{
		lists:   make(map[string][]T),
		policy:  policy,
		applied: make(map[string]uint64),
	}
}

// Begin issues a ticket for a request about to be sent for key.
func (c *Cache[T]) Begin(key string) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	return Ticket{key: key, seq: c.next}
}

// Apply runs fn under the write lock unless the ticket is stale. It reports
// whether fn ran.
func (c *Cache[T]) Apply(t Ticket, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.policy == LastDispatchedWins && c.applied[t.key] > t.seq {
		return false
	}
	if t.seq > c.applied[t.key] {
		c.applied[t.key] = t.seq
	}
	fn()
	return true
}

// Get returns a copy of the list under parent and whether the key is present.
func (c *Cache[T]) Get(parent string) ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list, ok := c.lists[parent]
	if !ok {
		return nil, false
	}
	return slices.Clone(list), true
}

// Has reports whether parent is present, even with an empty list.
func (c *Cache[T]) Has(parent string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.lists[parent]
	return ok
}

// Find returns the entity with id from any list.
func (c *Cache[T]) Find(id string) (T, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for parent, list := range c.lists {
		for _, item := range list {
			if item.Key() == id {
				return item, parent, true
			}
		}
	}
	var zero T
	return zero, "", false
}

// Keys returns the present parent keys in sorted order.
func (c *Cache[T]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.lists))
	for k := range c.lists {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Replace sets the whole list under parent. Fetches use this: the response
// replaces the cached collection rather than merging into it.
func (c *Cache[T]) Replace(t Ticket, parent string, items []T) bool {
	return c.Apply(t, func() { c.replace(parent, items) })
}

// Append adds item at the end of the list under parent, creating the list if
// the parent was never fetched. Appends replace nothing, so they are not
// sequenced against each other and always apply.
func (c *Cache[T]) Append(parent string, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[parent] = append(c.lists[parent], item)
}

// AppendIfPresent adds item only to a list that is already cached.
func (c *Cache[T]) AppendIfPresent(parent string, item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.lists[parent]
	if !ok {
		return false
	}
	c.lists[parent] = append(list, item)
	return true
}

// ReplaceEntity swaps the cached entity with the same key under parent for
// item, keeping its position. Every field takes the new value. It reports
// false when the ticket is stale or the entity is not cached under parent.
func (c *Cache[T]) ReplaceEntity(t Ticket, parent string, item T) bool {
	found := false
	c.Apply(t, func() {
		list := c.lists[parent]
		for i := range list {
			if list[i].Key() == item.Key() {
				list[i] = item
				found = true
				return
			}
		}
	})
	return found
}

// PatchFields applies fn to every cached copy of id, in any list, and returns
// how many copies were patched. Fields fn does not touch keep their cached
// values.
func (c *Cache[T]) PatchFields(t Ticket, id string, fn func(*T)) int {
	n := 0
	c.Apply(t, func() {
		for _, list := range c.lists {
			for i := range list {
				if list[i].Key() == id {
					fn(&list[i])
					n++
				}
			}
		}
	})
	return n
}

func (c *Cache[T]) replace(parent string, items []T) {
	if items == nil {
		items = []T{}
	}
	c.lists[parent] = slices.Clone(items)
}

// Snapshot copies every list for persistence.
func (c *Cache[T]) Snapshot() map[string][]T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]T, len(c.lists))
	for k, v := range c.lists {
		out[k] = slices.Clone(v)
	}
	return out
}

// Restore replaces the cache contents with lists.
func (c *Cache[T]) Restore(lists map[string][]T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = make(map[string][]T, len(lists))
	for k, v := range lists {
		c.replace(k, v)
	}
}

// Reset drops every list.
func (c *Cache[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = make(map[string][]T)
}
