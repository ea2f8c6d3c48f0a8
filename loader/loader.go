// Package loader feeds a store from a directory of JSON files (or an
// object store) through a bounded producer/consumer pipeline.
//
// One producer reads files in sorted order, keeping disk I/O sequential;
// a team of workers decodes documents in parallel and inserts them. When
// the pipeline drains, the store is finalized exactly once. Per-file
// failures are logged and counted but never abort the load.
package loader

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	nvstore "github.com/mboros1/native-vector-store"
	"github.com/mboros1/native-vector-store/internal/mmap"
	"github.com/mboros1/native-vector-store/internal/queue"
)

// fileBuffer is one unit of work in the pipeline: the raw bytes of a file
// plus the mapping keeping them alive, when the mmap path was taken.
// Workers cannot tell the two sources apart.
type fileBuffer struct {
	path    string
	data    []byte
	mapping *mmap.Mapping
}

func (b *fileBuffer) release() {
	if b.mapping != nil {
		_ = b.mapping.Close()
	}
}

// LoadDirectory ingests every document file directly under dir into store,
// then finalizes it. Files are matched by suffix (.json, .json.gz,
// .json.lz4), non-recursively, and processed in lexicographic order.
//
// A store that is already serving makes the load a no-op. An empty
// directory is not an error: the store is finalized and the call returns.
func LoadDirectory(ctx context.Context, store *nvstore.Store, dir string, optFns ...Option) (Stats, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var stats stats

	if store.IsFinalized() {
		return stats.snapshot(), nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats.snapshot(), err
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if hasDocumentSuffix(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	stats.filesEnumerated.Store(int64(len(paths)))

	if len(paths) == 0 {
		store.Finalize()
		return stats.snapshot(), nil
	}

	err = runPipeline(ctx, store, &opts, &stats, func(push func(*fileBuffer)) {
		produceFiles(ctx, paths, &opts, &stats, push)
	})

	store.Finalize()
	return stats.snapshot(), err
}

// runPipeline wires the producer into the bounded queue and a worker team,
// and blocks until both sides are done.
func runPipeline(ctx context.Context, store *nvstore.Store, opts *options, st *stats, produce func(push func(*fileBuffer))) error {
	q := queue.NewBounded[*fileBuffer](opts.queueCapacity)

	producerDone := make(chan struct{})
	go func() {
		defer close(producerDone)
		defer q.Close()
		produce(q.Push)
	}()

	var g errgroup.Group
	for w := 0; w < opts.workers; w++ {
		g.Go(func() error {
			for buf := range q.Items() {
				if ctx.Err() == nil {
					processBuffer(store, opts, st, buf)
				}
				buf.release()
			}
			return nil
		})
	}

	_ = g.Wait()
	<-producerDone
	return ctx.Err()
}

// produceFiles reads each file sequentially and pushes its bytes into the
// queue. Small plain-JSON files are memory-mapped with a sequential-access
// advisory; everything else goes through buffered (and possibly
// decompressing, possibly rate-limited) reads.
func produceFiles(ctx context.Context, paths []string, opts *options, st *stats, push func(*fileBuffer)) {
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}

		buf, err := readFile(ctx, path, opts)
		if err != nil {
			st.filesFailed.Add(1)
			opts.logger.LogFileError(path, err)
			continue
		}

		st.bytesRead.Add(int64(len(buf.data)))
		push(buf)
	}
}

func readFile(ctx context.Context, path string, opts *options) (*fileBuffer, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	compressed := !strings.HasSuffix(path, ".json")

	if !compressed && fi.Size() < opts.mmapThreshold && opts.rateLimiter == nil {
		m, err := mmap.Open(path)
		if err == nil {
			_ = m.Advise(mmap.AccessSequential)
			return &fileBuffer{path: path, data: m.Bytes(), mapping: m}, nil
		}
		// Fall back to buffered reads below.
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if opts.rateLimiter != nil {
		r = &rateLimitedReader{r: r, limiter: opts.rateLimiter, ctx: ctx}
	}
	if compressed {
		r, err = decompressor(path, r)
		if err != nil {
			return nil, err
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &fileBuffer{path: path, data: data}, nil
}

// processBuffer decodes one file's bytes. A file holds either a single
// document object or a top-level array of them; detection is by the first
// non-whitespace byte.
func processBuffer(store *nvstore.Store, opts *options, st *stats, buf *fileBuffer) {
	data := bytes.TrimLeft(buf.data, " \t\r\n")
	if len(data) == 0 {
		st.filesFailed.Add(1)
		opts.logger.LogFileError(buf.path, errEmptyFile)
		return
	}

	if data[0] != '[' {
		if err := store.AddDocument(data); err != nil {
			st.documentsFailed.Add(1)
			st.filesFailed.Add(1)
			opts.logger.LogFileError(buf.path, err)
			return
		}
		st.documentsAdded.Add(1)
		st.filesLoaded.Add(1)
		return
	}

	var docs []rawMessage
	if err := opts.codec.Unmarshal(data, &docs); err != nil {
		st.filesFailed.Add(1)
		opts.logger.LogFileError(buf.path, err)
		return
	}

	failed := 0
	for _, doc := range docs {
		if err := store.AddDocument(doc); err != nil {
			st.documentsFailed.Add(1)
			failed++
			continue
		}
		st.documentsAdded.Add(1)
	}
	if failed > 0 {
		opts.logger.LogFileError(buf.path, &partialFileError{failed: failed, total: len(docs)})
	}
	st.filesLoaded.Add(1)
}

func hasDocumentSuffix(name string) bool {
	return strings.HasSuffix(name, ".json") ||
		strings.HasSuffix(name, ".json.gz") ||
		strings.HasSuffix(name, ".json.lz4")
}
