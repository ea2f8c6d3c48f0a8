package nvstore

import (
	"fmt"
	"math"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServingStore(t *testing.T, dim int, embs ...[]float32) *Store {
	t.Helper()
	s, err := New(dim)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	for i, emb := range embs {
		require.NoError(t, s.AddDocument(docJSON(fmt.Sprintf("doc-%d", i), "text", emb)))
	}
	s.Finalize()
	return s
}

func TestSearchBasic(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.AddDocument(docJSON("a", "alpha", []float32{1, 0, 0, 0})))
	require.NoError(t, s.AddDocument(docJSON("b", "bravo", []float32{0, 1, 0, 0})))
	require.NoError(t, s.AddDocument(docJSON("c", "charlie", []float32{1, 1, 0, 0})))
	s.Finalize()

	results, err := s.Search([]float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "a", string(results[0].Doc.ID))
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)

	assert.Equal(t, "c", string(results[1].Doc.ID))
	assert.InDelta(t, 1/math.Sqrt2, results[1].Score, 1e-5)
}

func TestSearchTieBreaking(t *testing.T) {
	s := newServingStore(t, 2,
		[]float32{1, 0},
		[]float32{1, 0},
	)

	results, err := s.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, 1, results[1].Index)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
	assert.InDelta(t, 1.0, results[1].Score, 1e-5)
}

func TestSearchPhaseEnforcement(t *testing.T) {
	const dim = 8

	s, err := New(dim)
	require.NoError(t, err)
	defer s.Close()

	emb := make([]float32, dim)
	for i := 0; i < 100; i++ {
		for j := range emb {
			emb[j] = float32((i+j)%13) + 1
		}
		require.NoError(t, s.AddDocument(docJSON(fmt.Sprintf("d%d", i), "t", emb)))
	}

	// Pre-finalize search is empty.
	results, err := s.Search(make([]float32, dim), 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	s.Finalize()

	// All 100 reachable.
	for j := range emb {
		emb[j] = 1
	}
	results, err = s.Search(emb, 100)
	require.NoError(t, err)
	assert.Len(t, results, 100)

	assert.ErrorIs(t, s.AddDocument(docJSON("late", "t", emb)), ErrFinalized)
}

func TestSearchBoundaries(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		s, err := New(2)
		require.NoError(t, err)
		defer s.Close()
		s.Finalize()

		results, err := s.Search([]float32{1, 0}, 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("k zero", func(t *testing.T) {
		s := newServingStore(t, 2, []float32{1, 0})
		results, err := s.Search([]float32{1, 0}, 0)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("k clipped to count", func(t *testing.T) {
		s := newServingStore(t, 2, []float32{1, 0}, []float32{0, 1})
		results, err := s.Search([]float32{1, 0}, 50)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		s := newServingStore(t, 4, []float32{1, 0, 0, 0})
		_, err := s.Search([]float32{1, 0}, 1)
		var mismatch *ErrDimensionMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 4, mismatch.Expected)
		assert.Equal(t, 2, mismatch.Actual)
	})
}

func TestSearchInvariants(t *testing.T) {
	const (
		dim  = 16
		docs = 200
		k    = 25
	)

	embs := make([][]float32, docs)
	for i := range embs {
		emb := make([]float32, dim)
		for j := range emb {
			emb[j] = float32((i*7+j*3)%11) - 5
		}
		embs[i] = emb
	}
	s := newServingStore(t, dim, embs...)

	query := make([]float32, dim)
	for j := range query {
		query[j] = float32(j%5) - 2
	}

	results, err := s.Search(query, k)
	require.NoError(t, err)
	require.Len(t, results, k)

	for i, r := range results {
		assert.GreaterOrEqual(t, r.Index, 0)
		assert.Less(t, r.Index, s.Size())
		assert.LessOrEqual(t, r.Score, float32(1+1e-5))
		assert.GreaterOrEqual(t, r.Score, float32(-1-1e-5))
		if i > 0 {
			prev := results[i-1]
			if prev.Score == r.Score {
				assert.Less(t, prev.Index, r.Index, "ties must order by ascending index")
			} else {
				assert.Greater(t, prev.Score, r.Score)
			}
		}
	}

	// Deterministic across repeated calls.
	again, err := s.Search(query, k)
	require.NoError(t, err)
	assert.Equal(t, results, again)
}

func TestSearchTopHitIsSelf(t *testing.T) {
	const dim = 32

	embs := make([][]float32, 50)
	for i := range embs {
		emb := make([]float32, dim)
		for j := range emb {
			emb[j] = float32((i*13+j*5)%53) + 1
		}
		embs[i] = emb
	}
	s := newServingStore(t, dim, embs...)

	target, _ := s.GetEntry(37)
	query := append([]float32(nil), target.Embedding...)

	results, err := s.Search(query, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 37, results[0].Index)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
}

func TestSearchWithoutQueryNormalization(t *testing.T) {
	s := newServingStore(t, 2, []float32{1, 0})

	// An unnormalized query doubles the raw dot product.
	results, err := s.Search([]float32{2, 0}, 1, WithoutQueryNormalization())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 2.0, results[0].Score, 1e-5)

	// The store never mutates the caller's slice either way.
	query := []float32{3, 4}
	_, err = s.Search(query, 1)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4}, query)
}

func TestSearchWithFilter(t *testing.T) {
	s := newServingStore(t, 2,
		[]float32{1, 0},
		[]float32{0.9, 0.1},
		[]float32{0, 1},
		[]float32{0.8, 0.2},
	)

	filter := roaring.BitmapOf(2, 3)
	results, err := s.Search([]float32{1, 0}, 4, WithFilter(filter))
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 3, results[0].Index)
	assert.Equal(t, 2, results[1].Index)
}

func TestFinalizedNormsAreUnit(t *testing.T) {
	const dim = 8

	embs := make([][]float32, 40)
	for i := range embs {
		emb := make([]float32, dim)
		for j := range emb {
			emb[j] = float32(i*j%23) - 11
		}
		embs[i] = emb
	}
	s := newServingStore(t, dim, embs...)

	for i := 0; i < s.Size(); i++ {
		e, _ := s.GetEntry(i)
		var sq float64
		for _, v := range e.Embedding {
			sq += float64(v) * float64(v)
		}
		norm := math.Sqrt(sq)
		if norm == 0 {
			continue
		}
		assert.InDelta(t, 1.0, norm, 1e-5, "entry %d", i)
	}
}
