package vtblmap

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/on-the-ground/dispatch_ive_go/shared/orderedbuffer"
)

// IdentityStat describes one identity in a Report.
type IdentityStat struct {
	ID     Identity `json:"id"`
	Bucket int      `json:"bucket"`
	Hits   uint64   `json:"hits"`
	Shared int      `json:"shared"` // identities mapped to the same bucket, itself included
}

// Occupancy counts the buckets holding exactly Occupants identities.
type Occupancy struct {
	Occupants int `json:"occupants"`
	Buckets   int `json:"buckets"`
}

// Report is a diagnostic snapshot of a Map. It is meant for tooling and is
// never used on the dispatch path.
type Report struct {
	Name           string          `json:"name,omitempty"`
	TableSize      int             `json:"table_size"`
	LogSize        int             `json:"log_size"`
	Shift          int             `json:"shift"`
	Updates        int             `json:"updates"`
	Entries        int             `json:"entries"`
	Entropy        float64         `json:"entropy"`
	Conflict       float64         `json:"conflict"`
	IrrelevantBits int             `json:"irrelevant_bits"`
	Width          int             `json:"width"`
	Pattern        string          `json:"pattern"`
	Occupancy      []Occupancy     `json:"occupancy"`
	Unused         int             `json:"unused"`
	UnusedPercent  int             `json:"unused_percent"`
	Identities     []IdentityStat  `json:"identities"`
	Hottest        []IdentityStat  `json:"hottest,omitempty"`
	Candidates     []Candidate     `json:"candidates"`
	History        []Rearrangement `json:"history,omitempty"`
}

// Report computes the current bucket occupancy, its entropy and conflict, and
// the statistics of every arrangement the rearrangement engine would consider
// for the current table.
//
// Report must not run concurrently with Get. It does not touch the scratch
// space of the rearrangement engine.
func (m *Map[T]) Report() Report {
	logSize, shift := m.logSize(), m.shift
	r := Report{
		Name:      m.name,
		TableSize: m.table.len(),
		LogSize:   logSize,
		Shift:     shift,
		Updates:   m.updates,
	}
	var hist []uint32
	bucketOf := func(id Identity) int {
		return int((uintptr(id) >> shift) & uintptr(1<<logSize-1))
	}

	var prev Identity
	if n := len(m.table.entries); n > 0 {
		prev = m.table.entries[n-1].id
	}
	diff := m.table.diff(prev)
	r.IrrelevantBits = trailingZeros(diff)
	r.Pattern = bitPattern(diff, uintptr(prev))
	if diff != 0 {
		r.Width = reqBits(diff) - trailingZeros(diff)
	}

	current := m.candidate(&hist, logSize, shift)
	r.Entries, r.Entropy, r.Conflict = current.Entries, current.Entropy, current.Conflict

	counts := make([]int, 1<<logSize)
	for _, e := range m.table.entries {
		counts[bucketOf(e.id)]++
	}
	r.Occupancy = occupancy(counts)
	for _, c := range counts {
		if c == 0 {
			r.Unused++
		}
	}
	r.UnusedPercent = r.Unused * 100 / len(counts)

	r.Identities = make([]IdentityStat, 0, m.table.len())
	for _, e := range m.table.entries {
		b := bucketOf(e.id)
		r.Identities = append(r.Identities, IdentityStat{
			ID:     e.id,
			Bucket: b,
			Hits:   e.hits,
			Shared: counts[b],
		})
	}
	if m.traceHits && m.topK > 0 {
		r.Hottest = hottest(r.Identities, m.topK)
	}
	slices.SortFunc(r.Identities, func(a, b IdentityStat) int {
		return cmp.Compare(a.ID, b.ID)
	})

	if m.table.len() > 0 {
		m.scan(m.searchRangeFor(diff), &hist, func(c Candidate) bool {
			r.Candidates = append(r.Candidates, c)
			return true
		})
	}

	if m.history != nil {
		r.History = m.history.Ascending()
	}
	return r
}

// Dump writes the textual form of Report to w.
func (m *Map[T]) Dump(w io.Writer) error {
	_, err := io.WriteString(w, m.Report().String())
	return err
}

// occupancy lists bucket counts from the most crowded bucket down to one occupant.
func occupancy(counts []int) []Occupancy {
	most := 0
	for _, c := range counts {
		most = max(most, c)
	}
	if most == 0 {
		return nil
	}
	byOccupants := make([]int, most+1)
	for _, c := range counts {
		byOccupants[c]++
	}
	out := make([]Occupancy, 0, most)
	for i := most; i >= 1; i-- {
		out = append(out, Occupancy{Occupants: i, Buckets: byOccupants[i]})
	}
	return out
}

func hottest(ids []IdentityStat, k int) []IdentityStat {
	top := orderedbuffer.NewOrderedBoundedBuffer(k, func(a, b IdentityStat) int {
		return cmp.Compare(a.Hits, b.Hits)
	})
	for _, s := range ids {
		top.Insert(s)
	}
	return top.Descending()
}

// bitPattern renders an identity width worth of bits, most significant
// first: X where identities differ, otherwise the bit of sample.
func bitPattern(diff, sample uintptr) string {
	var sb strings.Builder
	sb.Grow(uintptrBits)
	for i := uintptrBits - 1; i >= 0; i-- {
		bit := uintptr(1) << i
		switch {
		case diff&bit != 0:
			sb.WriteByte('X')
		case sample&bit != 0:
			sb.WriteByte('1')
		default:
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// String renders the report the way it is printed by Dump.
func (r Report) String() string {
	var sb strings.Builder

	name := r.Name
	if name == "" {
		name = "unnamed"
	}
	fmt.Fprintf(&sb, "%s\n", name)

	for _, s := range r.Identities {
		fmt.Fprintf(&sb, "Type:   %0*b -> %d\t %d \t", uintptrBits, uintptr(s.ID), s.Bucket, s.Hits)
		if s.Shared > 1 {
			fmt.Fprintf(&sb, "[%d]\n", s.Shared)
		} else {
			sb.WriteString("   \n")
		}
	}

	fmt.Fprintf(&sb, "TYPES:  %s total=%d log_size=%d shift=%d width=%d updates=%d entries: %d Entropy: %g Conflict: %g\t ",
		r.Pattern, r.TableSize, r.LogSize, r.Shift, r.Width, r.Updates, r.Entries, r.Entropy, r.Conflict)
	for _, o := range r.Occupancy {
		fmt.Fprintf(&sb, "%d->%d; ", o.Occupants, o.Buckets)
	}
	fmt.Fprintf(&sb, "%d%% unused\n", r.UnusedPercent)

	for _, c := range r.Candidates {
		fmt.Fprintf(&sb, "\tlog_size=%d shift=%d Entropy=%g Conflict=%g", c.LogSize, c.Shift, c.Entropy, c.Conflict)
		if c.Clean {
			sb.WriteString(" \t*")
		}
		sb.WriteByte('\n')
	}

	for _, h := range r.History {
		fmt.Fprintf(&sb, "\t#%d at %s trigger=%s table=%d log_size=%d shift=%d clean=%t took=%s\n",
			h.Seq, h.Span.Start().Format("15:04:05.000000"), h.Trigger, h.TableSize,
			h.CacheLogSize, h.Chosen.Shift, h.Chosen.Clean, h.Took())
	}
	return sb.String()
}
