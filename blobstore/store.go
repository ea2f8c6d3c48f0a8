// Package blobstore abstracts object stores holding immutable document
// blobs, so the loader can ingest from S3-compatible storage the same way
// it ingests from a local directory.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`.
var ErrNotFound = errors.New("blobstore: blob not found")

// BlobStore is a read-only view of an object store.
type BlobStore interface {
	// List returns the keys under prefix in lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Fetch returns the full contents of the blob at key.
	Fetch(ctx context.Context, key string) ([]byte, error)
}
