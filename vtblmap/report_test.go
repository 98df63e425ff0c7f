package vtblmap_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/on-the-ground/dispatch_ive_go/vtblmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shapesMap(t *testing.T) *vtblmap.Map[string] {
	t.Helper()
	m := vtblmap.New[string](vtblmap.WithInitialShift(0), vtblmap.WithName("shapes"))
	for _, id := range []vtblmap.Identity{0x1000, 0x1010, 0x1020} {
		m.Get(id)
	}
	return m
}

func TestReport_Statistics(t *testing.T) {
	r := shapesMap(t).Report()

	assert.Equal(t, "shapes", r.Name)
	assert.Equal(t, 3, r.TableSize)
	assert.Equal(t, 3, r.LogSize)
	assert.Equal(t, 4, r.Shift)
	assert.Equal(t, 1, r.Updates)
	assert.Equal(t, 3, r.Entries)
	assert.InDelta(t, math.Log2(3), r.Entropy, 1e-12)
	assert.Zero(t, r.Conflict)

	assert.Equal(t, 4, r.IrrelevantBits)
	assert.Equal(t, 2, r.Width)
	assert.True(t, strings.HasSuffix(r.Pattern, "1000000XX0000"), r.Pattern)

	assert.Equal(t, []vtblmap.Occupancy{{Occupants: 1, Buckets: 3}}, r.Occupancy)
	assert.Equal(t, 5, r.Unused)
	assert.Equal(t, 62, r.UnusedPercent)
}

func TestReport_IdentitiesSortedByAddress(t *testing.T) {
	m := vtblmap.New[int]()
	for _, id := range []vtblmap.Identity{0x3000, 0x1000, 0x2000} {
		m.Get(id)
	}

	r := m.Report()
	require.Len(t, r.Identities, 3)
	assert.Equal(t, vtblmap.Identity(0x1000), r.Identities[0].ID)
	assert.Equal(t, vtblmap.Identity(0x2000), r.Identities[1].ID)
	assert.Equal(t, vtblmap.Identity(0x3000), r.Identities[2].ID)
}

func TestReport_CandidatesAndHistory(t *testing.T) {
	r := shapesMap(t).Report()

	// k = 3, n = 2: log sizes 2..3, shifts 4..(6 - log size)
	require.Len(t, r.Candidates, 1)
	assert.Equal(t, vtblmap.Candidate{LogSize: 2, Shift: 4, Entries: 3, Entropy: r.Candidates[0].Entropy, Clean: true}, r.Candidates[0])

	require.Len(t, r.History, 1)
	h := r.History[0]
	assert.Equal(t, 1, h.Seq)
	assert.Equal(t, vtblmap.Identity(0x1010), h.Trigger)
	assert.Equal(t, 2, h.TableSize)
	assert.Equal(t, 1, h.Chosen.LogSize)
	assert.Equal(t, 4, h.Chosen.Shift)
	assert.True(t, h.Chosen.Clean)
	assert.Equal(t, 3, h.CacheLogSize)
	assert.False(t, h.Span.Start().IsZero())
	assert.False(t, h.Span.End().Before(h.Span.Start()))
	assert.Equal(t, h.Span.Duration(), h.Took())
}

func TestReport_HistoryIsBounded(t *testing.T) {
	m := vtblmap.New[int](vtblmap.WithInitialShift(0), vtblmap.WithHistory(2))
	for _, id := range strided(0x100000, 6, 40) {
		m.Get(id)
	}

	r := m.Report()
	require.Equal(t, 4, r.Updates)
	require.Len(t, r.History, 2)
	assert.Equal(t, 3, r.History[0].Seq)
	assert.Equal(t, 4, r.History[1].Seq)
}

func TestReport_Empty(t *testing.T) {
	r := vtblmap.New[int](vtblmap.WithHistory(0)).Report()

	assert.Zero(t, r.TableSize)
	assert.Zero(t, r.Entries)
	assert.Empty(t, r.Occupancy)
	assert.Empty(t, r.Candidates)
	assert.Nil(t, r.History)
	assert.Equal(t, 100, r.UnusedPercent)
}

func TestDump_WritesTextReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, shapesMap(t).Dump(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "shapes\n"))
	assert.Contains(t, out, "total=3 log_size=3 shift=4 width=2 updates=1 entries: 3")
	assert.Contains(t, out, "1->3; 62% unused")
	assert.Contains(t, out, "\tlog_size=2 shift=4 ")
	assert.Contains(t, out, "trigger=0x1010")
	assert.Equal(t, 3, strings.Count(out, "Type:   "))
}
