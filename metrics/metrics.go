package metrics

import (
	"sync/atomic"
)

// Interface is the sink a dispatch cache reports to.
type Interface interface {
	IncHit()
	IncMiss()
	IncInsert()
	IncCollision()
	IncRearrange()
	SetTableSize(n int)
	SetLogSize(n int)
}

// Noop discards everything.
type Noop struct{}

func (Noop) IncHit()          {}
func (Noop) IncMiss()         {}
func (Noop) IncInsert()       {}
func (Noop) IncCollision()    {}
func (Noop) IncRearrange()    {}
func (Noop) SetTableSize(int) {}
func (Noop) SetLogSize(int)   {}

// Simple keeps plain atomic counters.
type Simple struct {
	Hit       atomic.Uint64
	Miss      atomic.Uint64
	Insert    atomic.Uint64
	Collision atomic.Uint64
	Rearrange atomic.Uint64
	TableSize atomic.Uint64
	LogSize   atomic.Uint64
}

// NewSimple creates a zeroed Simple.
func NewSimple() *Simple { return &Simple{} }

// IncHit counts a fast-path hit. Only reported when hit tracing is on.
func (m *Simple) IncHit() { m.Hit.Add(1) }

// IncMiss counts a lookup that did not find its identity in the slot.
func (m *Simple) IncMiss() { m.Miss.Add(1) }

// IncInsert counts a new identity entering the table.
func (m *Simple) IncInsert() { m.Insert.Add(1) }

// IncCollision counts a miss on a slot held by another identity.
func (m *Simple) IncCollision() { m.Collision.Add(1) }

func (m *Simple) IncRearrange() { m.Rearrange.Add(1) }

func (m *Simple) SetTableSize(n int) {
	if n >= 0 {
		m.TableSize.Store(uint64(n))
	}
}

func (m *Simple) SetLogSize(n int) {
	if n >= 0 {
		m.LogSize.Store(uint64(n))
	}
}
