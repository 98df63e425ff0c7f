package vtblmap

import (
	"errors"

	"github.com/on-the-ground/dispatch_ive_go/metrics"
	"github.com/on-the-ground/dispatch_ive_go/shared/orderedbuffer"
	"go.uber.org/zap"
)

// ErrZeroIdentity is the panic value of Get when called with identity 0.
var ErrZeroIdentity = errors.New("vtblmap: zero identity")

// slot is one cache entry. A zero id marks a slot never used since the last reset.
type slot[T any] struct {
	id  Identity
	ref *entry[T]
}

// Map is a dispatch cache from Identity to a value of type T.
//
// The zero Map is not usable; create one with New. A Map must not be copied
// after first use and is not safe for concurrent use.
type Map[T any] struct {
	mask  uintptr
	shift int
	slots []slot[T]

	table                  table[T]
	lastTableSize          int
	collisionsBeforeUpdate int
	updates                int

	name      string
	traceHits bool
	topK      int
	logger    *zap.Logger
	metrics   metrics.Interface
	history   *orderedbuffer.OrderedBoundedBuffer[Rearrangement]
	histogram []uint32

	local [localCacheSize]slot[T]
}

// New creates a Map. The initial cache holds 2^k slots where k is the number
// of bits needed for the expected size, clamped to [MinLogSize, MaxLogSize].
func New[T any](opts ...Option) *Map[T] {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	cfg.normalize()

	logger := cfg.Logger
	if cfg.Name != "" {
		logger = logger.With(zap.String("site", cfg.Name))
	}

	m := &Map[T]{
		shift:                  cfg.InitialShift,
		table:                  newTable[T](cfg.ExpectedSize),
		collisionsBeforeUpdate: 1,
		name:                   cfg.Name,
		traceHits:              cfg.TraceHits,
		topK:                   cfg.TopK,
		logger:                 logger,
		metrics:                cfg.Metrics,
	}
	if cfg.HistorySize > 0 {
		m.history = orderedbuffer.NewOrderedBoundedBuffer(cfg.HistorySize, func(a, b Rearrangement) int {
			return a.Seq - b.Seq
		})
	}
	m.allocate(min(MaxLogSize, max(MinLogSize, logSizeFor(cfg.ExpectedSize))))
	m.metrics.SetLogSize(m.logSize())
	return m
}

// Get returns a pointer to the value stored for id, inserting a zero value on
// first sight. The pointer stays valid, and keeps designating the same value,
// for the lifetime of the Map. Get panics with ErrZeroIdentity if id is 0.
func (m *Map[T]) Get(id Identity) *T {
	if id == 0 {
		panic(ErrZeroIdentity)
	}
	s := &m.slots[(uintptr(id)>>m.shift)&m.mask]
	if s.id != id {
		return m.miss(s, id)
	}
	if m.traceHits {
		s.ref.hits++
		m.metrics.IncHit()
	}
	return &s.ref.value
}

func (m *Map[T]) miss(s *slot[T], id Identity) *T {
	m.metrics.IncMiss()
	if s.id != 0 {
		m.metrics.IncCollision()
	}

	e, ok := m.table.find(id)
	if !ok {
		// A new identity taking a live slot is worth a rearrangement, but
		// only if the table grew since the last one and the budget is spent.
		if s.id != 0 && m.table.len() != m.lastTableSize {
			m.collisionsBeforeUpdate--
			if m.collisionsBeforeUpdate == 0 {
				return m.rearrange(id)
			}
		}
		e = m.insert(id)
	}

	s.id, s.ref = id, e
	if m.traceHits {
		e.hits++
	}
	return &e.value
}

func (m *Map[T]) insert(id Identity) *entry[T] {
	e := m.table.insert(id)
	m.metrics.IncInsert()
	m.metrics.SetTableSize(m.table.len())
	return e
}

// Lookup returns the value stored for id without inserting and without
// touching the cache.
func (m *Map[T]) Lookup(id Identity) (*T, bool) {
	e, ok := m.table.find(id)
	if !ok {
		return nil, false
	}
	return &e.value, true
}

// Len returns the number of identities in the table. It never decreases.
func (m *Map[T]) Len() int {
	return m.table.len()
}

// Range calls fn for each identity in insertion order until fn returns false.
func (m *Map[T]) Range(fn func(id Identity, v *T) bool) {
	for _, e := range m.table.entries {
		if !fn(e.id, &e.value) {
			return
		}
	}
}

// Name returns the site name given with WithName.
func (m *Map[T]) Name() string {
	return m.name
}

// Stats is a snapshot of the sizing state of a Map.
type Stats struct {
	TableSize              int  `json:"table_size"`
	LastTableSize          int  `json:"last_table_size"`
	LogSize                int  `json:"log_size"`
	Shift                  int  `json:"shift"`
	CollisionsBeforeUpdate int  `json:"collisions_before_update"`
	Updates                int  `json:"updates"`
	Inline                 bool `json:"inline"`
}

// Stats returns the current sizing state.
func (m *Map[T]) Stats() Stats {
	return Stats{
		TableSize:              m.table.len(),
		LastTableSize:          m.lastTableSize,
		LogSize:                m.logSize(),
		Shift:                  m.shift,
		CollisionsBeforeUpdate: m.collisionsBeforeUpdate,
		Updates:                m.updates,
		Inline:                 len(m.slots) <= localCacheSize,
	}
}

func (m *Map[T]) logSize() int {
	return reqBits(m.mask)
}

// allocate sizes the cache to 2^logSize empty slots, reusing the inline
// buffer when it is large enough.
func (m *Map[T]) allocate(logSize int) {
	size := 1 << logSize
	if size <= localCacheSize {
		m.slots = m.local[:size]
		clear(m.slots)
	} else {
		m.slots = make([]slot[T], size)
	}
	m.mask = uintptr(size - 1)
}
