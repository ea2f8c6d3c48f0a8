package loader

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"

	nvstore "github.com/mboros1/native-vector-store"
	"github.com/mboros1/native-vector-store/blobstore"
)

// LoadBlobStore ingests every document blob under prefix into store, then
// finalizes it. The same pipeline as LoadDirectory applies: one producer
// fetches blobs in key order, workers decode in parallel, suffix rules and
// per-blob failure handling are identical. The store stays purely
// in-memory; the object store is only an ingest source.
func LoadBlobStore(ctx context.Context, store *nvstore.Store, bs blobstore.BlobStore, prefix string, optFns ...Option) (Stats, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var stats stats

	if store.IsFinalized() {
		return stats.snapshot(), nil
	}

	keys, err := bs.List(ctx, prefix)
	if err != nil {
		return stats.snapshot(), err
	}

	var docKeys []string
	for _, key := range keys {
		if hasDocumentSuffix(key) {
			docKeys = append(docKeys, key)
		}
	}
	sort.Strings(docKeys)
	stats.filesEnumerated.Store(int64(len(docKeys)))

	if len(docKeys) == 0 {
		store.Finalize()
		return stats.snapshot(), nil
	}

	err = runPipeline(ctx, store, &opts, &stats, func(push func(*fileBuffer)) {
		produceBlobs(ctx, bs, docKeys, &opts, &stats, push)
	})

	store.Finalize()
	return stats.snapshot(), err
}

func produceBlobs(ctx context.Context, bs blobstore.BlobStore, keys []string, opts *options, st *stats, push func(*fileBuffer)) {
	for _, key := range keys {
		if ctx.Err() != nil {
			return
		}

		data, err := fetchBlob(ctx, bs, key, opts)
		if err != nil {
			st.filesFailed.Add(1)
			opts.logger.LogFileError(key, err)
			continue
		}

		st.bytesRead.Add(int64(len(data)))
		push(&fileBuffer{path: key, data: data})
	}
}

func fetchBlob(ctx context.Context, bs blobstore.BlobStore, key string, opts *options) ([]byte, error) {
	data, err := bs.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	if opts.rateLimiter != nil {
		if err := waitForBytes(ctx, opts, len(data)); err != nil {
			return nil, err
		}
	}

	if strings.HasSuffix(key, ".json") {
		return data, nil
	}
	r, err := decompressor(key, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// waitForBytes charges n bytes against the limiter in burst-sized steps.
func waitForBytes(ctx context.Context, opts *options, n int) error {
	burst := opts.rateLimiter.Burst()
	for n > 0 {
		step := n
		if step > burst {
			step = burst
		}
		if err := opts.rateLimiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
