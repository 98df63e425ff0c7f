package vtblmap

import (
	"github.com/on-the-ground/dispatch_ive_go/metrics"
	"go.uber.org/zap"
)

const (
	// MinLogSize and MaxLogSize bound the base-2 logarithm of the cache size.
	MinLogSize = 3
	MaxLogSize = 16

	// MinExpectedSize is the default expected number of identities.
	MinExpectedSize = 1 << MinLogSize

	// LocalCacheBits sizes the inline slot buffer embedded in every Map.
	// Caches of up to 1<<LocalCacheBits slots do not allocate.
	LocalCacheBits = 7

	// DefaultIrrelevantBits is the shift used before the first rearrangement.
	// Type descriptors are pointer aligned.
	DefaultIrrelevantBits = 3

	DefaultHistorySize = 16
	DefaultTopK        = 8
)

const (
	localCacheSize = 1 << LocalCacheBits

	// collisionsAfterConflict is the collision budget after an arrangement
	// that still has collisions.
	collisionsAfterConflict = 4

	// collisionsAfterClean is the collision budget after a collision-free
	// arrangement. One more identity is likely to still fit without conflicts,
	// so the next collision is worth a recheck.
	collisionsAfterClean = 1
)

// Config holds the settings of a Map.
type Config struct {
	Name         string
	ExpectedSize int  // presizes the table and picks the initial cache size
	InitialShift int  // shift used until the first rearrangement
	TraceHits    bool // count hits per identity
	HistorySize  int  // rearrangements kept for reports, 0 disables
	TopK         int  // hottest identities listed in reports
	Logger       *zap.Logger
	Metrics      metrics.Interface
}

// Option configures a Map.
type Option func(*Config)

// WithName names the dispatch site in logs, metrics and reports.
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithExpectedSize hints the number of distinct identities the Map will see.
func WithExpectedSize(n int) Option {
	return func(c *Config) { c.ExpectedSize = n }
}

// WithInitialShift sets the number of low identity bits ignored before the
// first rearrangement.
func WithInitialShift(shift int) Option {
	return func(c *Config) { c.InitialShift = shift }
}

// WithHitTracing enables per-identity hit counters and the hit metric.
func WithHitTracing() Option {
	return func(c *Config) { c.TraceHits = true }
}

// WithHistory sets how many past rearrangements are kept for reports.
func WithHistory(n int) Option {
	return func(c *Config) { c.HistorySize = n }
}

// WithTopK sets how many of the most hit identities reports list.
func WithTopK(n int) Option {
	return func(c *Config) { c.TopK = n }
}

// WithLogger sets the logger for growth and rearrangement traces.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMetrics sets the sink for miss, collision and rearrangement counts.
func WithMetrics(m metrics.Interface) Option {
	return func(c *Config) { c.Metrics = m }
}

func defaultConfig() Config {
	return Config{
		ExpectedSize: MinExpectedSize,
		InitialShift: DefaultIrrelevantBits,
		HistorySize:  DefaultHistorySize,
		TopK:         DefaultTopK,
	}
}

func (c *Config) normalize() {
	if c.ExpectedSize < 1 {
		c.ExpectedSize = MinExpectedSize
	}
	if c.InitialShift < 0 || c.InitialShift >= uintptrBits {
		c.InitialShift = DefaultIrrelevantBits
	}
	if c.HistorySize < 0 {
		c.HistorySize = 0
	}
	if c.TopK < 0 {
		c.TopK = 0
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Noop{}
	}
}
