package vtblmap

import (
	"math"
	"time"

	"github.com/rickb777/date/v2/timespan"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"
)

// Candidate describes the bucket occupancy of the table under one
// (log size, shift) arrangement.
type Candidate struct {
	LogSize  int     `json:"log_size"`
	Shift    int     `json:"shift"`
	Entries  int     `json:"entries"`  // occupied buckets
	Entropy  float64 `json:"entropy"`  // Shannon entropy of the occupancy, in bits
	Conflict float64 `json:"conflict"` // share of identities that lose their bucket
	Clean    bool    `json:"clean"`    // no two identities share a bucket
}

// Rearrangement records one run of the rearrangement engine.
type Rearrangement struct {
	Seq          int               `json:"seq"`
	Trigger      Identity          `json:"trigger"`
	TableSize    int               `json:"table_size"`
	Chosen       Candidate         `json:"chosen"`
	CacheLogSize int               `json:"cache_log_size"` // may exceed Chosen.LogSize, the cache never shrinks

	// Span covers the search and the rebuild.
	Span timespan.TimeSpan `json:"-"`
}

// Took returns how long the rearrangement ran.
func (r Rearrangement) Took() time.Duration {
	return r.Span.Duration()
}

// MarshalJSON flattens Span into its start and duration.
func (r Rearrangement) MarshalJSON() ([]byte, error) {
	type plain Rearrangement
	return sonnet.Marshal(struct {
		plain
		Start  time.Time `json:"start"`
		TookNs int64     `json:"took_ns"`
	}{plain(r), r.Span.Start(), r.Took().Nanoseconds()})
}

// searchRange bounds the arrangements considered for the current table.
type searchRange struct {
	minLog, maxLog int
	minShift       int // low bits in which no two identities differ
	maxBit         int // bits needed for the highest differing bit
}

// searchRangeFor covers the current cache log size k and the log sizes n and
// n+1 needed to hold the table. The lower bound is min(k, n) on every path.
func (m *Map[T]) searchRangeFor(diff uintptr) searchRange {
	k := m.logSize()
	n := logSizeFor(m.table.len())
	return searchRange{
		minLog:   min(MaxLogSize, min(k, n)),
		maxLog:   min(MaxLogSize, max(k, n+1)),
		minShift: trailingZeros(diff),
		maxBit:   reqBits(diff),
	}
}

// scan visits candidates by increasing log size, then increasing shift,
// until visit returns false. hist is scratch space for the histograms.
func (m *Map[T]) scan(r searchRange, hist *[]uint32, visit func(Candidate) bool) {
	for i := r.minLog; i <= r.maxLog; i++ {
		for j := r.minShift; j <= r.maxBit-i; j++ {
			if !visit(m.candidate(hist, i, j)) {
				return
			}
		}
	}
}

// candidate computes occupancy statistics of the table when identities are
// mapped into 2^logSize buckets after dropping shift low bits. The histogram
// is built in *scratch, which is grown as needed.
func (m *Map[T]) candidate(scratch *[]uint32, logSize, shift int) Candidate {
	size := 1 << logSize
	mask := uintptr(size - 1)

	if cap(*scratch) < size {
		*scratch = make([]uint32, size)
	}
	hist := (*scratch)[:size]
	clear(hist)

	for _, e := range m.table.entries {
		hist[(uintptr(e.id)>>shift)&mask]++
	}

	c := Candidate{LogSize: logSize, Shift: shift}
	total := float64(m.table.len())
	for _, h := range hist {
		if h == 0 {
			continue
		}
		p := float64(h) / total
		c.Entropy -= p * math.Log2(p)
		c.Entries++
		if h > 1 {
			c.Conflict += float64(h-1) / total
		}
	}
	c.Clean = c.Entries > 0 && c.Entries == m.table.len()
	return c
}

// selector keeps the best candidate offered so far.
type selector struct {
	best  Candidate
	found bool
}

// offer reports whether the search should go on. A clean candidate wins and
// stops the search. Otherwise higher entropy wins, and among equal entropies
// the larger shift wins. Equal entropy and shift keep the earlier offer, which
// is the smaller cache.
func (s *selector) offer(c Candidate) bool {
	if c.Clean {
		s.best, s.found = c, true
		return false
	}
	if !s.found || c.Entropy > s.best.Entropy ||
		(c.Entropy == s.best.Entropy && c.Shift > s.best.Shift) {
		s.best, s.found = c, true
	}
	return true
}

// rearrange inserts id, picks the arrangement of maximal entropy for the
// grown table and rebuilds the cache under it.
func (m *Map[T]) rearrange(id Identity) *T {
	start := time.Now()

	diff := m.table.diff(id)
	e := m.insert(id)

	m.updates++
	m.lastTableSize = m.table.len()
	m.collisionsBeforeUpdate = collisionsAfterConflict

	r := m.searchRangeFor(diff)
	sel := selector{best: Candidate{LogSize: r.minLog, Shift: r.minShift}}
	m.scan(r, &m.histogram, sel.offer)
	if sel.best.Clean {
		m.collisionsBeforeUpdate = collisionsAfterClean
	}

	m.rebuild(sel.best.LogSize, sel.best.Shift)

	rec := Rearrangement{
		Seq:          m.updates,
		Trigger:      id,
		TableSize:    m.table.len(),
		Chosen:       sel.best,
		CacheLogSize: m.logSize(),
		Span:         timespan.BetweenTimes(start, time.Now()),
	}
	if m.history != nil {
		m.history.Insert(rec)
	}

	m.metrics.IncRearrange()
	m.metrics.SetLogSize(rec.CacheLogSize)
	m.logger.Debug("rearranged dispatch cache",
		zap.Stringer("trigger", id),
		zap.Int("table_size", rec.TableSize),
		zap.Int("log_size", rec.CacheLogSize),
		zap.Int("shift", rec.Chosen.Shift),
		zap.Float64("entropy", rec.Chosen.Entropy),
		zap.Float64("conflict", rec.Chosen.Conflict),
		zap.Bool("clean", rec.Chosen.Clean),
		zap.Duration("took", rec.Took()),
	)

	if m.traceHits {
		e.hits++
	}
	return &e.value
}

// rebuild resets the cache to the given arrangement and points every table
// entry at its slot. The cache only grows: a smaller log size keeps the
// current capacity.
func (m *Map[T]) rebuild(logSize, shift int) {
	if k := m.logSize(); logSize > k {
		wasInline := len(m.slots) <= localCacheSize
		m.allocate(logSize)
		m.logger.Debug("grew dispatch cache",
			zap.Int("from_log_size", k),
			zap.Int("to_log_size", logSize),
			zap.Bool("was_inline", wasInline),
		)
	} else {
		clear(m.slots)
	}

	m.shift = shift
	for _, e := range m.table.entries {
		s := &m.slots[(uintptr(e.id)>>shift)&m.mask]
		s.id, s.ref = e.id, e
	}
}
