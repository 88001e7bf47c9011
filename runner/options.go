package runner

import (
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
)

// Option configures a Runner.
type Option func(*config)

type config struct {
	timeout time.Duration
	clock   clock.Clock
	logger  *slog.Logger
}

func defaultConfig() config {
	return config{
		timeout: DefaultTimeout,
		clock:   clock.New(),
		logger:  slog.Default(),
	}
}

// WithTimeout sets the per-run deadline (default: 15s).
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock sets the clock used for timing and the deadline (default: wall clock).
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
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
