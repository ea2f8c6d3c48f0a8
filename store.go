package nvstore

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/mboros1/native-vector-store/internal/arena"
	"github.com/mboros1/native-vector-store/internal/math32"
)

// normEpsilon is the squared-norm floor below which an embedding is left
// unnormalized (treated as the zero vector).
const normEpsilon = 1e-10

// Store is a two-phase vector store. It starts in the loading phase, where
// AddDocument may be called from any number of goroutines. Finalize
// normalizes all embeddings and moves the store to the serving phase, where
// only reads (Search, GetEntry) run.
//
// Callers must ensure all concurrent AddDocument calls have returned before
// invoking Finalize; the store does not join its writers.
type Store struct {
	dim  int
	opts options

	arena   *arena.Arena
	entries []Entry

	count     atomic.Int64
	finalized atomic.Bool
	finalize  sync.Once

	// searchMu serializes the parallel scan section so concurrent searches
	// do not oversubscribe the worker team.
	searchMu sync.Mutex
}

// New creates a store for embeddings of the given dimension.
func New(dim int, optFns ...Option) (*Store, error) {
	if dim <= 0 {
		return nil, &ErrInvalidDimension{Dimension: dim}
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	a, err := arena.New(arena.DefaultChunkSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocation, err)
	}

	s := &Store{
		dim:  dim,
		opts: opts,
		// Pre-sized so concurrent inserts only ever write their own slot.
		entries: make([]Entry, opts.capacity),
		arena:   a,
	}

	return s, nil
}

// Dimension returns the fixed embedding dimension.
func (s *Store) Dimension() int { return s.dim }

// Size returns the number of published entries.
func (s *Store) Size() int { return int(s.count.Load()) }

// IsFinalized reports whether the store is in the serving phase.
func (s *Store) IsFinalized() bool { return s.finalized.Load() }

// GetEntry returns the entry at index i from a previous search result.
// ok is false when i is out of range.
func (s *Store) GetEntry(i int) (Entry, bool) {
	if i < 0 || i >= s.Size() {
		return Entry{}, false
	}
	return s.entries[i], true
}

// ArenaStats returns a snapshot of the backing arena's usage.
func (s *Store) ArenaStats() arena.Stats { return s.arena.Stats() }

// rawDocument is the ingest wire shape. Pointer fields distinguish a
// missing field from an empty one.
type rawDocument struct {
	ID       *string         `json:"id"`
	Text     *string         `json:"text"`
	Metadata json.RawMessage `json:"metadata"`
}

type rawMetadata struct {
	Embedding []float32 `json:"embedding"`
}

// AddDocument decodes one JSON document and publishes it as an entry.
//
// The document must carry string fields "id" and "text" and an object
// field "metadata" whose "embedding" array has exactly Dimension numeric
// elements. The metadata bytes are retained verbatim.
//
// Safe for concurrent use during the loading phase. A failure never
// affects any other document's publication.
func (s *Store) AddDocument(data []byte) error {
	start := time.Now()
	err := s.addDocument(data)
	s.opts.metricsCollector.RecordAddDocument(time.Since(start), err)
	return err
}

func (s *Store) addDocument(data []byte) error {
	if s.finalized.Load() {
		return ErrFinalized
	}

	var doc rawDocument
	if err := s.opts.codec.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("nvstore: decode document: %w", err)
	}
	if doc.ID == nil {
		return &ErrMissingField{Field: "id"}
	}
	if doc.Text == nil {
		return &ErrMissingField{Field: "text"}
	}
	if len(doc.Metadata) == 0 {
		return &ErrMissingField{Field: "metadata"}
	}

	emb, err := s.decodeEmbedding(doc.Metadata)
	if err != nil {
		return err
	}

	id, text, meta := *doc.ID, *doc.Text, doc.Metadata

	// One allocation per document: [emb][id\0][text\0][meta\0].
	embBytes := s.dim * 4
	total := embBytes + len(id) + 1 + len(text) + 1 + len(meta) + 1
	buf, err := s.arena.Alloc(total, 4)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAllocation, err)
	}

	stored := unsafe.Slice((*float32)(unsafe.Pointer(&buf[0])), s.dim)
	copy(stored, emb)

	idStart := embBytes
	textStart := idStart + len(id) + 1
	metaStart := textStart + len(text) + 1
	copy(buf[idStart:], id)
	copy(buf[textStart:], text)
	copy(buf[metaStart:], meta)

	// Reserve an index; the entry write below is the sole publication and
	// has no competitor for that slot.
	index := s.count.Add(1) - 1
	if index >= int64(len(s.entries)) {
		s.count.Add(-1)
		return ErrCapacity
	}

	s.entries[index] = Entry{
		Doc: Document{
			ID:           buf[idStart : idStart+len(id)],
			Text:         buf[textStart : textStart+len(text)],
			MetadataJSON: buf[metaStart : metaStart+len(meta)],
		},
		Embedding: stored,
	}

	return nil
}

// decodeEmbedding parses metadata.embedding and validates its shape.
// A nil slice distinguishes a missing field from an empty array.
func (s *Store) decodeEmbedding(metadata json.RawMessage) ([]float32, error) {
	var meta rawMetadata
	if err := s.opts.codec.Unmarshal(metadata, &meta); err != nil {
		return nil, fmt.Errorf("nvstore: decode embedding: %w", err)
	}
	if meta.Embedding == nil {
		return nil, &ErrMissingField{Field: "metadata.embedding"}
	}
	if len(meta.Embedding) > s.dim {
		return nil, fmt.Errorf("%w: embedding has %d elements, store dimension is %d",
			ErrCapacity, len(meta.Embedding), s.dim)
	}
	if len(meta.Embedding) < s.dim {
		return nil, &ErrEmbeddingShape{Expected: s.dim, Actual: len(meta.Embedding)}
	}
	return meta.Embedding, nil
}

// Finalize transitions the store from loading to serving. Every stored
// embedding is scaled to unit L2 norm; embeddings with squared norm at or
// below 1e-10 are left as-is. Safe to call multiple times; calls after the
// first are no-ops.
func (s *Store) Finalize() {
	s.finalize.Do(func() {
		start := time.Now()
		n := int(s.count.Load())

		normalized := 0
		for i := 0; i < n; i++ {
			emb := s.entries[i].Embedding
			sq := math32.SquaredNorm(emb)
			if sq > normEpsilon {
				math32.ScaleInPlace(emb, 1/float32(math.Sqrt(float64(sq))))
				normalized++
			}
		}

		s.finalized.Store(true)

		duration := time.Since(start)
		s.opts.logger.WithDimension(s.dim).LogFinalize(n, normalized, duration)
		s.opts.metricsCollector.RecordFinalize(n, duration)
	})
}

// Close releases the arena. All Document and Entry slices handed out by
// this store become invalid. Must not run concurrently with any other
// store operation.
func (s *Store) Close() {
	s.entries = nil
	s.arena.Free()
}
