package dicebench

import (
	"log/slog"

	"github.com/google/uuid"
)

// Option configures an Evaluator.
type Option func(*config)

type config struct {
	runner AttemptRunner
	sink   Sink
	logger *slog.Logger
	runID  uuid.UUID
}

func defaultConfig() config {
	return config{
		sink:   NopSink{},
		logger: slog.Default(),
		runID:  uuid.New(),
	}
}

// WithRunner sets the process runner (default: runner.New with the default timeout).
func WithRunner(r AttemptRunner) Option {
	return func(c *config) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithSink sets the report sink (default: discard). Use report.Multi to
// attach several.
func WithSink(s Sink) Option {
	return func(c *config) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRunID sets the identifier reported to sinks (default: random).
func WithRunID(id uuid.UUID) Option {
	return func(c *config) {
		c.runID = id
	}
}
