// Package identity assigns stable synthetic ids to data items so keyed
// reconciliation does not depend on the position of an item in its slice.
//
// A Registry is meant to be created once per application and handed to
// every layer that should agree on item identity. Sharing has a visible
// consequence: when one layer drops an item, the id is released for every
// layer, and another layer still holding the item will see it as new on its
// next render (its shape is destroyed and recreated). Give layers separate
// registries when that matters.
package identity

import "sync"

// Registry maps comparable items to monotonically increasing ids.
// Use pointers for items whose identity is their address.
type Registry[T comparable] struct {
	mu   sync.Mutex
	ids  map[T]uint64
	next uint64
}

// New creates an empty registry.
func New[T comparable]() *Registry[T] {
	return &Registry[T]{ids: make(map[T]uint64)}
}

// Ensure returns the id of item, assigning the next id on first encounter.
func (r *Registry[T]) Ensure(item T) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.ids[item]; ok {
		return id
	}
	id := r.next
	r.next++
	r.ids[item] = id
	return id
}

// Lookup returns the id of item if it has one.
func (r *Registry[T]) Lookup(item T) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.ids[item]
	return id, ok
}

// Delete releases the id of item. Ids are never reused.
func (r *Registry[T]) Delete(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.ids, item)
}

// Release deletes item only while it still holds id and reports whether
// it did. A layer releasing a stale binding cannot drop an id that another
// render has since assigned.
func (r *Registry[T]) Release(item T, id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.ids[item]; !ok || cur != id {
		return false
	}
	delete(r.ids, item)
	return true
}

// Len returns the number of items currently holding an id.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.ids)
}
