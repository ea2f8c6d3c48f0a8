package loader

import (
	"runtime"

	"golang.org/x/time/rate"

	nvstore "github.com/mboros1/native-vector-store"
	"github.com/mboros1/native-vector-store/codec"
	"github.com/mboros1/native-vector-store/internal/queue"
)

// DefaultMmapThreshold is the file size below which plain JSON files are
// memory-mapped instead of read (5 MiB).
const DefaultMmapThreshold = 5 * 1024 * 1024

type options struct {
	workers       int
	queueCapacity int
	mmapThreshold int64
	rateLimiter   *rate.Limiter
	codec         codec.Codec
	logger        *nvstore.Logger
}

func defaultOptions() options {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	return options{
		workers:       workers,
		queueCapacity: queue.DefaultCapacity,
		mmapThreshold: DefaultMmapThreshold,
		codec:         codec.Default,
		logger:        nvstore.NewLogger(nil),
	}
}

// Option configures a load.
type Option func(*options)

// WithWorkers sets the number of parsing workers. The floor is 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.workers = n
		}
	}
}

// WithQueueCapacity sets how many file buffers the producer may run ahead
// of the slowest worker.
func WithQueueCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueCapacity = n
		}
	}
}

// WithMmapThreshold sets the size below which plain JSON files are
// memory-mapped. Zero disables the mmap path entirely.
func WithMmapThreshold(bytes int64) Option {
	return func(o *options) {
		if bytes >= 0 {
			o.mmapThreshold = bytes
		}
	}
}

// WithRateLimit throttles producer reads to bytesPerSec. Throttled reads
// always take the buffered path so the limiter sees every byte.
func WithRateLimit(bytesPerSec int) Option {
	return func(o *options) {
		if bytesPerSec > 0 {
			o.rateLimiter = rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
		}
	}
}

// WithCodec sets the codec used for top-level array decoding.
// Documents themselves are decoded by the store's own codec.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger sets the loader's logger. The default logs to stderr, one
// warn line per failed file.
func WithLogger(l *nvstore.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = nvstore.NoopLogger()
		}
		o.logger = l
	}
}
