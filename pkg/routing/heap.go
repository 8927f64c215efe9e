package routing

import "cmp"

// Item is a priority queue entry.
type Item[T any, P cmp.Ordered] struct {
	Value    T
	Priority P
}

// MinHeap is a binary min-heap keyed by Priority. It has no decrease-key:
// callers push duplicates and discard stale entries on pop.
// Avoids interface boxing overhead of container/heap.
type MinHeap[T any, P cmp.Ordered] struct {
	items []Item[T, P]
}

// NewMinHeap returns an empty heap with room for capacity items.
func NewMinHeap[T any, P cmp.Ordered](capacity int) *MinHeap[T, P] {
	return &MinHeap[T, P]{items: make([]Item[T, P], 0, capacity)}
}

func (h *MinHeap[T, P]) Len() int { return len(h.items) }

func (h *MinHeap[T, P]) Push(value T, priority P) {
	h.items = append(h.items, Item[T, P]{value, priority})
	h.siftUp(len(h.items) - 1)
}

// Pop removes and returns the minimum item. It panics on an empty heap.
func (h *MinHeap[T, P]) Pop() Item[T, P] {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap[T, P]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Priority >= h.items[parent].Priority {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap[T, P]) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].Priority < h.items[smallest].Priority {
			smallest = left
		}
		if right < n && h.items[right].Priority < h.items[smallest].Priority {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
