package topk

import (
	"math/rand"
	"sort"
	"testing"
)

func TestPush(t *testing.T) {
	t.Run("under capacity keeps everything", func(t *testing.T) {
		h := New(10)
		for i := 0; i < 5; i++ {
			h.Push(Item{Row: uint32(i), Score: float32(i)})
		}
		if h.Len() != 5 {
			t.Errorf("Len = %d, want 5", h.Len())
		}
	})

	t.Run("at capacity keeps the best", func(t *testing.T) {
		h := New(3)
		scores := []float32{0.1, 0.9, 0.5, 0.7, 0.3, 0.8}
		for i, s := range scores {
			h.Push(Item{Row: uint32(i), Score: s})
		}

		got := h.IntoSorted()
		want := []float32{0.9, 0.8, 0.7}
		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i].Score != want[i] {
				t.Errorf("got[%d].Score = %v, want %v", i, got[i].Score, want[i])
			}
		}
	})

	t.Run("zero capacity", func(t *testing.T) {
		h := New(0)
		h.Push(Item{Row: 1, Score: 1})
		if h.Len() != 0 {
			t.Errorf("Len = %d, want 0", h.Len())
		}
	})
}

func TestTieBreaking(t *testing.T) {
	t.Run("sorted output prefers lower row", func(t *testing.T) {
		h := New(4)
		h.Push(Item{Row: 7, Score: 1.0})
		h.Push(Item{Row: 2, Score: 1.0})
		h.Push(Item{Row: 5, Score: 0.5})
		h.Push(Item{Row: 1, Score: 0.5})

		got := h.IntoSorted()
		wantRows := []uint32{2, 7, 1, 5}
		for i, w := range wantRows {
			if got[i].Row != w {
				t.Errorf("got[%d].Row = %d, want %d", i, got[i].Row, w)
			}
		}
	})

	t.Run("truncation retains lower rows", func(t *testing.T) {
		// Five equal scores through a k=2 heap: rows 0 and 1 must survive
		// regardless of arrival order.
		rows := []uint32{4, 0, 3, 1, 2}
		h := New(2)
		for _, r := range rows {
			h.Push(Item{Row: r, Score: 0.25})
		}
		got := h.IntoSorted()
		if got[0].Row != 0 || got[1].Row != 1 {
			t.Errorf("retained rows %d,%d; want 0,1", got[0].Row, got[1].Row)
		}
	})
}

func TestMerge(t *testing.T) {
	t.Run("combined fits", func(t *testing.T) {
		a := New(8)
		b := New(8)
		a.Push(Item{Row: 0, Score: 0.9})
		a.Push(Item{Row: 1, Score: 0.1})
		b.Push(Item{Row: 2, Score: 0.5})

		a.Merge(b)
		got := a.IntoSorted()
		wantRows := []uint32{0, 2, 1}
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		for i, w := range wantRows {
			if got[i].Row != w {
				t.Errorf("got[%d].Row = %d, want %d", i, got[i].Row, w)
			}
		}
	})

	t.Run("combined overflows", func(t *testing.T) {
		a := New(2)
		b := New(2)
		a.Push(Item{Row: 0, Score: 0.3})
		a.Push(Item{Row: 1, Score: 0.6})
		b.Push(Item{Row: 2, Score: 0.9})
		b.Push(Item{Row: 3, Score: 0.1})

		a.Merge(b)
		got := a.IntoSorted()
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Row != 2 || got[1].Row != 1 {
			t.Errorf("rows = %d,%d; want 2,1", got[0].Row, got[1].Row)
		}
	})

	t.Run("nil and empty", func(t *testing.T) {
		a := New(2)
		a.Push(Item{Row: 0, Score: 1})
		a.Merge(nil)
		a.Merge(New(2))
		if a.Len() != 1 {
			t.Errorf("Len = %d, want 1", a.Len())
		}
	})
}

func TestAgainstSort(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(200)
		k := 1 + rng.Intn(20)

		items := make([]Item, n)
		h := New(k)
		for i := range items {
			// Coarse scores force plenty of ties.
			items[i] = Item{Row: uint32(i), Score: float32(rng.Intn(8)) / 8}
			h.Push(items[i])
		}

		sort.Slice(items, func(i, j int) bool {
			return worse(items[j], items[i])
		})
		want := items
		if len(want) > k {
			want = want[:k]
		}

		got := h.IntoSorted()
		if len(got) != len(want) {
			t.Fatalf("trial %d: len = %d, want %d", trial, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("trial %d: got[%d] = %+v, want %+v", trial, i, got[i], want[i])
			}
		}
	}
}
