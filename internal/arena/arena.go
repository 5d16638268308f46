// Package arena provides an index-keyed slab allocator used in place of
// the cyclic pointer graphs (element<->parent, cluster<->patch) that the
// reference implementation expressed with back-pointers. Every cross
// reference in this engine — parent, child, owning geometry — is a
// 32-bit Index into an Arena rather than a pointer, so the element and
// interaction graphs stay plain data with no GC cycles to reason about.
package arena

import "github.com/emirpasic/gods/v2/lists/arraylist"

// Index identifies a slot in an Arena. The zero value, Nil, never
// identifies a live slot: slot 0 is reserved and never handed out.
type Index uint32

// Nil is the index that never refers to a live value.
const Nil Index = 0

// Arena is a growable slab of T, addressed by Index. It is not safe for
// concurrent use, matching the single-threaded cooperative scheduling
// model of the rest of this engine.
type Arena[T any] struct {
	slots []T
	free  *arraylist.List[Index]
}

// New returns an Arena with its reserved zero slot already allocated.
func New[T any]() *Arena[T] {
	a := &Arena[T]{slots: make([]T, 1), free: arraylist.New[Index]()}
	return a
}

// Alloc stores v in a fresh or recycled slot and returns its Index.
func (a *Arena[T]) Alloc(v T) Index {
	if n := a.free.Size(); n > 0 {
		idx, _ := a.free.Get(n - 1)
		a.free.Remove(n - 1)
		a.slots[idx] = v
		return idx
	}
	a.slots = append(a.slots, v)
	return Index(len(a.slots) - 1)
}

// Get returns the value at idx. It panics on Nil or an out-of-range
// index: both indicate a programming error in the caller, not a
// recoverable condition, since the arena is the sole source of truth for
// every element/link reference in the hierarchy.
func (a *Arena[T]) Get(idx Index) T {
	if idx == Nil {
		panic("arena: Get of Nil index")
	}
	return a.slots[idx]
}

// Set overwrites the value stored at idx.
func (a *Arena[T]) Set(idx Index, v T) {
	a.slots[idx] = v
}

// Update applies fn to the value at idx and stores the result back. It
// is the usual way to mutate a struct stored by value in the arena
// without a separate Get/Set pair at every call site.
func (a *Arena[T]) Update(idx Index, fn func(T) T) {
	a.slots[idx] = fn(a.slots[idx])
}

// Free releases idx for reuse. The caller is responsible for clearing
// any outbound references (e.g. interaction list heads) before freeing.
func (a *Arena[T]) Free(idx Index) {
	a.free.Add(idx)
}

// Len reports the number of slots ever allocated, including freed ones
// still counted toward arena size (slot reuse keeps this bounded).
func (a *Arena[T]) Len() int { return len(a.slots) }

// Valid reports whether idx currently addresses a live (non-Nil,
// in-range) slot.
func (a *Arena[T]) Valid(idx Index) bool {
	return idx != Nil && int(idx) < len(a.slots)
}
