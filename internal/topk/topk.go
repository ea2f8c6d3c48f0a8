// Package topk implements a bounded min-heap that retains the k
// highest-scoring rows seen during a scan.
package topk

import "sort"

// Item is one scored row.
// Value-based (no pointers) for cache locality and zero allocations.
type Item struct {
	Row   uint32  // index of the entry in the store
	Score float32 // similarity score (higher is better)
}

// worse reports whether a ranks strictly below b in the retained order.
// Lower score is worse; on equal scores the higher row is worse, which
// makes truncation at k deterministic.
func worse(a, b Item) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Row > b.Row
}

// Heap is a bounded min-heap of Items with capacity k. The root is the
// worst retained item and is the one to evict on replacement.
// It does NOT implement container/heap to avoid interface overhead.
type Heap struct {
	k     int
	items []Item
}

// New creates a heap retaining at most k items.
func New(k int) *Heap {
	if k < 0 {
		k = 0
	}
	return &Heap{
		k:     k,
		items: make([]Item, 0, k),
	}
}

// Len returns the number of retained items.
func (h *Heap) Len() int { return len(h.items) }

// Push offers an item. While the heap is under capacity the item is kept;
// at capacity it replaces the root only if it ranks above it.
func (h *Heap) Push(item Item) {
	if h.k == 0 {
		return
	}
	if len(h.items) < h.k {
		h.items = append(h.items, item)
		h.siftUp(len(h.items) - 1)
		return
	}
	if worse(h.items[0], item) {
		h.items[0] = item
		h.siftDown(0)
	}
}

// Merge folds other into h. When the combined size fits, the items are
// bulk-appended and the heap rebuilt; otherwise each item is offered
// individually. other is left in an unspecified state.
func (h *Heap) Merge(other *Heap) {
	if other == nil || len(other.items) == 0 {
		return
	}
	if len(h.items)+len(other.items) <= h.k {
		h.items = append(h.items, other.items...)
		h.rebuild()
		return
	}
	for _, item := range other.items {
		h.Push(item)
	}
}

// IntoSorted drains the heap and returns the retained items ordered by
// descending score, ascending row on ties.
func (h *Heap) IntoSorted() []Item {
	out := h.items
	h.items = nil
	sort.Slice(out, func(i, j int) bool {
		return worse(out[j], out[i])
	})
	return out
}

func (h *Heap) rebuild() {
	for i := len(h.items)/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}
}

func (h *Heap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !worse(h.items[i], h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *Heap) siftDown(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && worse(h.items[right], h.items[left]) {
			child = right
		}
		if !worse(h.items[child], h.items[i]) {
			break
		}
		h.items[i], h.items[child] = h.items[child], h.items[i]
		i = child
	}
}
