package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/time/rate"
)

type rawMessage = json.RawMessage

var errEmptyFile = errors.New("loader: file is empty")

// partialFileError reports a file whose array decoded but contained
// documents the store rejected.
type partialFileError struct {
	failed int
	total  int
}

func (e *partialFileError) Error() string {
	return fmt.Sprintf("loader: %d of %d documents rejected", e.failed, e.total)
}

// decompressor wraps r according to the file's compression suffix.
func decompressor(path string, r io.Reader) (io.Reader, error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return gzip.NewReader(r)
	case strings.HasSuffix(path, ".lz4"):
		return lz4.NewReader(r), nil
	default:
		return r, nil
	}
}

// rateLimitedReader throttles reads so the producer's disk (or network)
// bandwidth stays under the configured budget.
type rateLimitedReader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

func (r *rateLimitedReader) Read(p []byte) (int, error) {
	// Cap single waits at the limiter's burst so large buffers don't
	// error out.
	if burst := r.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}
	n, err := r.r.Read(p)
	if n > 0 {
		if waitErr := r.limiter.WaitN(r.ctx, n); waitErr != nil && err == nil {
			err = waitErr
		}
	}
	return n, err
}
