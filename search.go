package nvstore

import (
	"math"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/mboros1/native-vector-store/internal/math32"
	"github.com/mboros1/native-vector-store/internal/topk"
)

type searchOptions struct {
	normalizeQuery bool
	filter         *roaring.Bitmap
}

// SearchOption configures a single search call.
type SearchOption func(*searchOptions)

// WithoutQueryNormalization scores against the query as given instead of
// L2-normalizing a copy first. Useful when the caller already normalized.
func WithoutQueryNormalization() SearchOption {
	return func(o *searchOptions) {
		o.normalizeQuery = false
	}
}

// WithFilter restricts the scan to the entry indices present in the bitmap.
// The result length becomes min(k, matching entries); ordering guarantees
// are unchanged.
func WithFilter(filter *roaring.Bitmap) SearchOption {
	return func(o *searchOptions) {
		o.filter = filter
	}
}

// Search returns the k entries most similar to query, ordered by strictly
// descending score with ties broken by ascending index. Scores are raw dot
// products; against the normalized stored embeddings they equal cosine
// similarity.
//
// Before Finalize, or when the store or k is empty, Search returns no
// results. The query slice is never mutated.
func (s *Store) Search(query []float32, k int, optFns ...SearchOption) ([]SearchResult, error) {
	start := time.Now()
	results, err := s.search(query, k, optFns...)
	duration := time.Since(start)
	s.opts.logger.LogSearch(k, len(results), duration)
	s.opts.metricsCollector.RecordSearch(k, duration, err)
	return results, err
}

func (s *Store) search(query []float32, k int, optFns ...SearchOption) ([]SearchResult, error) {
	if len(query) != s.dim {
		return nil, &ErrDimensionMismatch{Expected: s.dim, Actual: len(query)}
	}
	if !s.finalized.Load() {
		return nil, nil
	}

	n := int(s.count.Load())
	if n == 0 || k <= 0 {
		return nil, nil
	}
	if k > n {
		k = n
	}

	opts := searchOptions{normalizeQuery: true}
	for _, fn := range optFns {
		fn(&opts)
	}

	q := query
	if opts.normalizeQuery {
		q = make([]float32, s.dim)
		copy(q, query)
		if sq := math32.SquaredNorm(q); sq > normEpsilon {
			math32.ScaleInPlace(q, 1/float32(math.Sqrt(float64(sq))))
		}
	}

	// One parallel scan at a time; overlapping worker teams would only
	// oversubscribe the CPU.
	s.searchMu.Lock()
	defer s.searchMu.Unlock()

	workers := s.opts.searchWorkers
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	heaps := make([]*topk.Heap, workers)
	stride := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * stride
		hi := lo + stride
		if hi > n {
			hi = n
		}

		heap := topk.New(k)
		heaps[w] = heap

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				if opts.filter != nil && !opts.filter.Contains(uint32(i)) {
					continue
				}
				score := math32.Dot(s.entries[i].Embedding, q)
				heap.Push(topk.Item{Row: uint32(i), Score: score})
			}
		}(lo, hi)
	}
	wg.Wait()

	merged := heaps[0]
	for _, h := range heaps[1:] {
		merged.Merge(h)
	}

	items := merged.IntoSorted()
	results := make([]SearchResult, len(items))
	for i, item := range items {
		results[i] = SearchResult{
			Score: item.Score,
			Index: int(item.Row),
			Doc:   s.entries[item.Row].Doc,
		}
	}
	return results, nil
}
