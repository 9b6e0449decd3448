package ftr

import "log/slog"

// DefaultMaxDecompressedSize bounds the declared uncompressed size of one
// compressed chunk.
const DefaultMaxDecompressedSize = 256 << 20

type options struct {
	logger          *slog.Logger
	maxDecompressed int64
}

// Option configures a decode session.
type Option func(*options)

// WithLogger sets the logger for chunk level debug events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxDecompressedSize rejects compressed chunks declaring more than n
// uncompressed bytes.
func WithMaxDecompressedSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDecompressed = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:          slog.New(slog.DiscardHandler),
		maxDecompressed: DefaultMaxDecompressedSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
