// Package arena provides a concurrent bump allocator backing document
// records for the lifetime of a store.
//
// # Concurrency Model
//
// Alloc is safe to call from many goroutines; the hot path is two atomic
// loads and one CAS on the current chunk's offset. Only the rare chunk-grow
// event takes a mutex. Free must not run concurrently with allocations.
//
// # Memory Management
//
// Memory comes in large anonymous-mmap chunks (64 MiB default) linked into
// a list. Individual allocations are never freed; everything is released
// when the arena is freed. Allocations never move, so slices handed out
// remain valid until Free.
package arena
