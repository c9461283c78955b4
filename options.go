package tytalb

import (
	"log/slog"
	"runtime"

	"github.com/Vogelwarte/tytalb/annotation"
)

// Option configures a Validator.
type Option func(*config)

type config struct {
	binary         bool
	positiveLabels []string
	lateStart      bool
	earlyStop      bool
	workers        int
	background     string
	positiveLabel  string
	logger         *slog.Logger
}

func defaultConfig() config {
	return config{
		workers:       runtime.NumCPU(),
		background:    annotation.DefaultBackground,
		positiveLabel: annotation.DefaultPositive,
		logger:        slog.Default(),
	}
}

// WithBinary collapses every label to Positive or background before scoring.
// Labels listed here become Positive, every other label background.
func WithBinary(positiveLabels ...string) Option {
	return func(c *config) {
		c.binary = true
		c.positiveLabels = append(c.positiveLabels, positiveLabels...)
	}
}

// WithPositiveLabels sets the positive labels without enabling binary mode.
// Combined with a vocabulary of more than two labels this is rejected as
// ambiguous.
func WithPositiveLabels(labels ...string) Option {
	return func(c *config) {
		c.positiveLabels = append(c.positiveLabels, labels...)
	}
}

// WithLateStart ignores predictions that end before the first ground-truth
// segment of their recording.
func WithLateStart(on bool) Option {
	return func(c *config) {
		c.lateStart = on
	}
}

// WithEarlyStop ignores predictions that start after the last ground-truth
// segment of their recording ends.
func WithEarlyStop(on bool) Option {
	return func(c *config) {
		c.earlyStop = on
	}
}

// WithWorkers sets how many recordings are reconciled concurrently (default:
// runtime.NumCPU()).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithBackgroundLabel sets the label meaning "nothing annotated" (default:
// "Noise").
func WithBackgroundLabel(label string) Option {
	return func(c *config) {
		if label != "" {
			c.background = label
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
