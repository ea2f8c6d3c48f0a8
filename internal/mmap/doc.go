// Package mmap provides read-only memory-mapped files and anonymous
// mappings with a small cross-platform surface.
//
// File mappings back the loader's small-file fast path; anonymous mappings
// back the arena's chunks so document memory stays off the Go heap.
package mmap
