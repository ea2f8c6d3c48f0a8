package arena

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/mboros1/native-vector-store/internal/mmap"
)

const (
	// DefaultChunkSize is the size of each backing chunk (64 MiB).
	DefaultChunkSize = 1 << 26
	// MaxAlign is the largest supported alignment. Chunks come from
	// anonymous mappings, so their base is page-aligned and any alignment
	// up to a page can be satisfied.
	MaxAlign = 4096
)

var (
	// ErrInvalidAlignment is returned when align is not a power of two in [1, MaxAlign].
	ErrInvalidAlignment = errors.New("arena: invalid alignment")
	// ErrSizeExceedsChunk is returned when a single request is larger than a chunk.
	ErrSizeExceedsChunk = errors.New("arena: size exceeds chunk size")
	// ErrClosed is returned when allocating from a freed arena.
	ErrClosed = errors.New("arena: closed")
)

// Stats tracks arena memory usage.
type Stats struct {
	Chunks        uint64 // chunks currently held
	BytesReserved uint64 // memory reserved from the OS
	BytesUsed     uint64 // bytes requested by allocations
	BytesWasted   uint64 // alignment padding
	TotalAllocs   uint64 // cumulative allocation count
}

type atomicStats struct {
	chunks        atomic.Uint64
	bytesReserved atomic.Uint64
	bytesUsed     atomic.Uint64
	bytesWasted   atomic.Uint64
	totalAllocs   atomic.Uint64
}

// chunk is one backing region. offset is the next free byte; next links to
// the successor chunk once this one overflows. Successors are owned by
// their predecessor: freeing walks the list from head.
type chunk struct {
	data    []byte
	mapping *mmap.Mapping
	offset  atomic.Int64
	next    atomic.Pointer[chunk]
}

// Arena is a concurrent bump allocator over a linked list of fixed-size chunks.
type Arena struct {
	chunkSize int
	head      *chunk
	current   atomic.Pointer[chunk]
	mu        sync.Mutex // serializes chunk creation only
	stats     atomicStats
}

// New creates an arena with the given chunk size. A non-positive chunkSize
// selects DefaultChunkSize.
func New(chunkSize int) (*Arena, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	a := &Arena{chunkSize: chunkSize}

	head, err := a.newChunk()
	if err != nil {
		return nil, err
	}
	a.head = head
	a.current.Store(head)

	return a, nil
}

func (a *Arena) newChunk() (*chunk, error) {
	mapping, err := mmap.MapAnon(a.chunkSize)
	if err != nil {
		return nil, fmt.Errorf("arena: mapping chunk: %w", err)
	}

	a.stats.chunks.Add(1)
	a.stats.bytesReserved.Add(uint64(a.chunkSize))

	return &chunk{
		data:    mapping.Bytes(),
		mapping: mapping,
	}, nil
}

// Alloc returns size bytes aligned to align. align must be a power of two
// in [1, MaxAlign]; size must fit in a single chunk. The returned slice is
// zero-initialized, never moves, and stays valid until Free.
func (a *Arena) Alloc(size, align int) ([]byte, error) {
	if align <= 0 || align > MaxAlign || align&(align-1) != 0 {
		return nil, ErrInvalidAlignment
	}
	if size > a.chunkSize {
		return nil, ErrSizeExceedsChunk
	}
	if size <= 0 {
		return nil, nil
	}

	for {
		curr := a.current.Load()
		if curr == nil {
			return nil, ErrClosed
		}

		oldOffset := curr.offset.Load()

		// Padding depends on the actual address, so compute it per attempt.
		base := uintptr(unsafe.Pointer(&curr.data[0]))
		pad := int64(0)
		if mis := (base + uintptr(oldOffset)) & uintptr(align-1); mis != 0 {
			pad = int64(align) - int64(mis)
		}

		newOffset := oldOffset + pad + int64(size)
		if newOffset > int64(a.chunkSize) {
			if err := a.grow(curr); err != nil {
				return nil, err
			}
			continue
		}

		if !curr.offset.CompareAndSwap(oldOffset, newOffset) {
			continue
		}

		a.stats.bytesUsed.Add(uint64(size))
		a.stats.bytesWasted.Add(uint64(pad))
		a.stats.totalAllocs.Add(1)

		start := oldOffset + pad
		return curr.data[start:newOffset:newOffset], nil
	}
}

// grow advances the arena past a full chunk. One goroutine creates the
// successor; everyone else observes it through the chunk's next pointer.
func (a *Arena) grow(full *chunk) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := full.next.Load()
	if next == nil {
		var err error
		next, err = a.newChunk()
		if err != nil {
			return err
		}
		full.next.Store(next)
	}

	// Advance current only if nobody has moved it past us already.
	a.current.CompareAndSwap(full, next)
	return nil
}

// Stats returns a snapshot of arena usage.
func (a *Arena) Stats() Stats {
	return Stats{
		Chunks:        a.stats.chunks.Load(),
		BytesReserved: a.stats.bytesReserved.Load(),
		BytesUsed:     a.stats.bytesUsed.Load(),
		BytesWasted:   a.stats.bytesWasted.Load(),
		TotalAllocs:   a.stats.totalAllocs.Load(),
	}
}

// Free releases all chunks. Slices handed out by Alloc become invalid.
// Must not run concurrently with Alloc; the arena cannot be reused.
func (a *Arena) Free() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.current.Store(nil)

	for c := a.head; c != nil; {
		next := c.next.Load()
		if c.mapping != nil {
			_ = c.mapping.Close()
		}
		c.data = nil
		c = next
	}
	a.head = nil

	a.stats.chunks.Store(0)
	a.stats.bytesReserved.Store(0)
	a.stats.bytesUsed.Store(0)
	a.stats.bytesWasted.Store(0)
}

func (a *Arena) String() string {
	s := a.Stats()
	return fmt.Sprintf("Arena{chunks: %d, reserved: %.2f MB, used: %.2f MB, wasted: %.2f KB, allocs: %d}",
		s.Chunks,
		float64(s.BytesReserved)/(1024*1024),
		float64(s.BytesUsed)/(1024*1024),
		float64(s.BytesWasted)/1024,
		s.TotalAllocs,
	)
}
