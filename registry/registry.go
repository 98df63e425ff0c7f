package registry

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/on-the-ground/dispatch_ive_go/vtblmap"
	"go.uber.org/zap"
)

// ErrSiteNotFound is returned when no site has the requested ID.
var ErrSiteNotFound = errors.New("registry: site not found")

// Site is one call site and its dispatch cache.
//
// Summaries and reports of a site are taken under its lock. A site whose
// diagnostics are read from other goroutines, as debughttp does, must be
// dispatched through Get or Do rather than through the bare Map.
type Site[T any] struct {
	mu      sync.Mutex
	id      uuid.UUID
	key     string
	created time.Time
	m       *vtblmap.Map[T]
}

func (s *Site[T]) ID() uuid.UUID { return s.id }
func (s *Site[T]) Key() string { return s.key }
func (s *Site[T]) Created() time.Time { return s.created }

// Map returns the site's map without its lock. Use it only when nothing
// reads the site's diagnostics concurrently.
func (s *Site[T]) Map() *vtblmap.Map[T] { return s.m }

// Get looks id up under the site lock. The value behind the returned pointer
// is never read by reports; guarding it is up to the caller.
func (s *Site[T]) Get(id vtblmap.Identity) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Get(id)
}

// Do runs fn with exclusive access to the site's map.
func (s *Site[T]) Do(fn func(m *vtblmap.Map[T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.m)
}

func (s *Site[T]) report() vtblmap.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Report()
}

// Summary describes a site without its full report.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	Created   time.Time `json:"created"`
	TableSize int       `json:"table_size"`
	LogSize   int       `json:"log_size"`
	Shift     int       `json:"shift"`
	Updates   int       `json:"updates"`
}

func (s *Site[T]) summary() Summary {
	s.mu.Lock()
	st := s.m.Stats()
	s.mu.Unlock()
	return Summary{
		ID:        s.id,
		Key:       s.key,
		Created:   s.created,
		TableSize: st.TableSize,
		LogSize:   st.LogSize,
		Shift:     st.Shift,
		Updates:   st.Updates,
	}
}

// Registry maps call-site keys to dispatch caches holding values of type T.
type Registry[T any] struct {
	mu    sync.Mutex
	byKey map[uint64][]*Site[T] // keyed by hash, chained on collision
	byID  map[uuid.UUID]*Site[T]
	order []*Site[T]
	cfg   Config
}

// New creates an empty registry.
func New[T any](opts ...Option) *Registry[T] {
	var cfg Config
	for _, o := range opts {
		o(&cfg)
	}
	cfg.normalize()
	return &Registry[T]{
		byKey: make(map[uint64][]*Site[T]),
		byID:  make(map[uuid.UUID]*Site[T]),
		cfg:   cfg,
	}
}

// At returns the map of the site with the given key, creating it on first
// use. The map is not guarded by the site lock, see Site.
func (r *Registry[T]) At(key string) *vtblmap.Map[T] {
	return r.site(key).m
}

// Here returns the map of the caller's call site.
func (r *Registry[T]) Here() *vtblmap.Map[T] {
	return r.site(callerKey(2)).m
}

// Open returns the site with the given key, creating it on first use.
func (r *Registry[T]) Open(key string) *Site[T] {
	return r.site(key)
}

// OpenHere returns the site of the caller's call site.
func (r *Registry[T]) OpenHere() *Site[T] {
	return r.site(callerKey(2))
}

// Lookup returns the site with the given key without creating it.
func (r *Registry[T]) Lookup(key string) (*Site[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.find(xxhash.Sum64String(key), key)
	return s, s != nil
}

func (r *Registry[T]) site(key string) *Site[T] {
	h := xxhash.Sum64String(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s := r.find(h, key); s != nil {
		return s
	}

	s := &Site[T]{
		id:      uuid.New(),
		key:     key,
		created: time.Now(),
	}
	opts := append(slices.Clone(r.cfg.MapOptions),
		vtblmap.WithName(key),
		vtblmap.WithLogger(r.cfg.Logger),
		vtblmap.WithMetrics(r.cfg.Metrics(key)),
	)
	s.m = vtblmap.New[T](opts...)

	r.byKey[h] = append(r.byKey[h], s)
	r.byID[s.id] = s
	r.order = append(r.order, s)

	r.cfg.Logger.Info("created dispatch site",
		zap.String("site", key),
		zap.Stringer("id", s.id),
		zap.Int("sites", len(r.order)),
	)
	return s
}

func (r *Registry[T]) find(h uint64, key string) *Site[T] {
	for _, s := range r.byKey[h] {
		if s.key == key {
			return s
		}
	}
	return nil
}

// Len returns the number of sites.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Site returns the site with the given ID.
func (r *Registry[T]) Site(id uuid.UUID) (*Site[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSiteNotFound, id)
	}
	return s, nil
}

// Sites summarizes every site, sorted by key. Each site is read under its
// lock.
func (r *Registry[T]) Sites() []Summary {
	sites := r.snapshot()
	out := make([]Summary, 0, len(sites))
	for _, s := range sites {
		out = append(out, s.summary())
	}
	return out
}

// Reports returns the report of every site, sorted by key.
func (r *Registry[T]) Reports() []vtblmap.Report {
	sites := r.snapshot()
	out := make([]vtblmap.Report, 0, len(sites))
	for _, s := range sites {
		out = append(out, s.report())
	}
	return out
}

// Report returns the report of the site with the given ID.
func (r *Registry[T]) Report(id uuid.UUID) (vtblmap.Report, error) {
	s, err := r.Site(id)
	if err != nil {
		return vtblmap.Report{}, err
	}
	return s.report(), nil
}

func (r *Registry[T]) snapshot() []*Site[T] {
	r.mu.Lock()
	sites := slices.Clone(r.order)
	r.mu.Unlock()

	slices.SortFunc(sites, func(a, b *Site[T]) int {
		return strings.Compare(a.key, b.key)
	})
	return sites
}

// callerKey names the call site skip frames above its caller as file:line.
func callerKey(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}
