package nav

import (
	"cmp"
	"fmt"
)

type heapPair[K cmp.Ordered, V comparable] struct {
	key   K
	value V
}

// MinHeap is a binary min-heap over (key, value) pairs backed by a slice
// allocated once at construction. It never grows.
//
// Ordering among equal keys is whatever the sift operations leave behind;
// callers must not depend on it.
type MinHeap[K cmp.Ordered, V comparable] struct {
	pairs []heapPair[K, V]
}

// NewMinHeap returns an empty heap holding at most capacity pairs.
func NewMinHeap[K cmp.Ordered, V comparable](capacity int) *MinHeap[K, V] {
	return &MinHeap[K, V]{pairs: make([]heapPair[K, V], 0, capacity)}
}

func (h *MinHeap[K, V]) Len() int    { return len(h.pairs) }
func (h *MinHeap[K, V]) Cap() int    { return cap(h.pairs) }
func (h *MinHeap[K, V]) Empty() bool { return len(h.pairs) == 0 }

// Clear drops every pair without releasing storage.
func (h *MinHeap[K, V]) Clear() { h.pairs = h.pairs[:0] }

// Insert adds value at key.
func (h *MinHeap[K, V]) Insert(key K, value V) error {
	if len(h.pairs) == cap(h.pairs) {
		return fmt.Errorf("insert into heap of %d: %w", cap(h.pairs), ErrHeapFull)
	}
	h.pairs = append(h.pairs, heapPair[K, V]{key: key, value: value})
	h.siftUp(len(h.pairs) - 1)
	return nil
}

// Update changes the key of an existing value in place and restores the heap
// order, so relaxed costs never produce duplicate entries.
func (h *MinHeap[K, V]) Update(key K, value V) error {
	for i := range h.pairs {
		if h.pairs[i].value != value {
			continue
		}
		old := h.pairs[i].key
		h.pairs[i].key = key
		if key < old {
			h.siftUp(i)
		} else {
			h.siftDown(i)
		}
		return nil
	}
	return fmt.Errorf("update to key %v: %w", key, ErrHeapValueNotFound)
}

// PeekMin returns the minimum pair without removing it.
func (h *MinHeap[K, V]) PeekMin() (V, K) {
	if len(h.pairs) == 0 {
		contractViolation("peek on empty heap")
	}
	return h.pairs[0].value, h.pairs[0].key
}

// PopMin removes and returns the minimum pair.
func (h *MinHeap[K, V]) PopMin() (V, K) {
	if len(h.pairs) == 0 {
		contractViolation("pop on empty heap")
	}
	top := h.pairs[0]
	last := len(h.pairs) - 1
	h.pairs[0] = h.pairs[last]
	h.pairs = h.pairs[:last]
	if last > 0 {
		h.siftDown(0)
	}
	return top.value, top.key
}

func (h *MinHeap[K, V]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.pairs[parent].key <= h.pairs[i].key {
			break
		}
		h.pairs[parent], h.pairs[i] = h.pairs[i], h.pairs[parent]
		i = parent
	}
}

func (h *MinHeap[K, V]) siftDown(i int) {
	n := len(h.pairs)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		smallest := left
		if right := left + 1; right < n && h.pairs[right].key < h.pairs[left].key {
			smallest = right
		}
		if h.pairs[i].key <= h.pairs[smallest].key {
			break
		}
		h.pairs[i], h.pairs[smallest] = h.pairs[smallest], h.pairs[i]
		i = smallest
	}
}

// valid reports whether every parent is <= both children.
func (h *MinHeap[K, V]) valid() bool {
	for i := 1; i < len(h.pairs); i++ {
		if h.pairs[(i-1)/2].key > h.pairs[i].key {
			return false
		}
	}
	return true
}
