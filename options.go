package nvstore

import (
	"runtime"

	"github.com/mboros1/native-vector-store/codec"
)

// DefaultCapacity is the default entry-table capacity.
const DefaultCapacity = 1_000_000

type options struct {
	capacity         int
	codec            codec.Codec
	logger           *Logger
	metricsCollector MetricsCollector
	searchWorkers    int
}

func defaultOptions() options {
	return options{
		capacity:         DefaultCapacity,
		codec:            codec.Default,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		searchWorkers:    runtime.GOMAXPROCS(0),
	}
}

// Option configures a Store at construction time.
type Option func(*options)

// WithCapacity sets the entry-table capacity. The table is pre-sized once;
// inserts beyond it fail with ErrCapacity.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}

// WithCodec configures the codec used for decoding documents.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures the store's logger. Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metricsCollector = m
	}
}

// WithSearchWorkers sets the number of goroutines a search partitions the
// scan across. Defaults to GOMAXPROCS; values below 1 leave the default.
func WithSearchWorkers(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.searchWorkers = n
		}
	}
}
