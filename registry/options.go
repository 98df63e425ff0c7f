package registry

import (
	"github.com/on-the-ground/dispatch_ive_go/metrics"
	"github.com/on-the-ground/dispatch_ive_go/vtblmap"
	"go.uber.org/zap"
)

// MetricsFactory returns the metrics sink of the site with the given key.
type MetricsFactory func(site string) metrics.Interface

type Config struct {
	MapOptions []vtblmap.Option
	Logger     *zap.Logger
	Metrics    MetricsFactory
}

type Option func(*Config)

// WithMapOptions sets options applied to every map the registry creates.
// The site name, logger and metrics are always set by the registry.
func WithMapOptions(opts ...vtblmap.Option) Option {
	return func(c *Config) { c.MapOptions = append(c.MapOptions, opts...) }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMetricsFactory gives every site its own metrics sink, typically
// (*metrics.Prom).Site.
func WithMetricsFactory(f MetricsFactory) Option {
	return func(c *Config) { c.Metrics = f }
}

func (c *Config) normalize() {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Metrics == nil {
		c.Metrics = func(string) metrics.Interface { return metrics.Noop{} }
	}
}
