package model

import (
	"sort"
)

// Meter is beats per bar over the beat measure, e.g. 6/8.
type Meter struct {
	Beats   Rat
	Measure Measure
}

func NewMeter(beats int64, measure Measure) Meter {
	return Meter{Beats: Int(beats), Measure: measure}
}

// Length is the length of one bar as a fraction of a whole note.
func (m Meter) Length() Rat {
	return m.Beats.Div(Int(int64(m.Measure)))
}

func (m Meter) Equal(o Meter) bool {
	return m.Measure == o.Measure && m.Beats.Equal(o.Beats)
}

func (m Meter) String() string {
	return m.Beats.Decimal() + "/" + Int(int64(m.Measure)).String()
}

// IsCompound is true for meters whose beats split into groups of three,
// e.g. 6/8 or 12/8.
func (m Meter) IsCompound() bool {
	return m.Beats.IsInt() && m.Beats.Int64()%3 == 0
}

// Parts is how many top level rhythmic parts a bar has: one per beat, or
// one per group of three beats for compound meters.
func (m Meter) Parts() int {
	beats := int(m.Beats.Int64())
	if m.IsCompound() {
		return beats / 3
	}
	return beats
}

// PartSize is the length of one part in ticks of measure.
func (m Meter) PartSize(measure Measure) Rat {
	size := NewRat(int64(measure), int64(m.Measure))
	if m.IsCompound() {
		size = size.MulInt(3)
	}
	return size
}

type Note struct {
	Value      string
	Type       string
	Position   Position
	Duration   *int
	Attributes []string
}

func (n Note) HasAttribute(attr string) bool {
	for _, a := range n.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

// CountAttribute counts repeated attributes, e.g. "smaller&smaller".
func (n Note) CountAttribute(attr string) int {
	count := 0
	for _, a := range n.Attributes {
		if a == attr {
			count++
		}
	}
	return count
}

type BpmChange struct {
	Bpm      float64
	Position Position
}

type MeterChange struct {
	Meter    Meter
	Position BarPosition
}

type Composition struct {
	Notes        []Note
	Bpm          float64
	Meter        Meter
	BpmChanges   []BpmChange
	MeterChanges []MeterChange
}

// BarCount is one past the last bar referenced by a note, a meter change or
// a bpm change.
func (c Composition) BarCount() int {
	last := 0
	for _, n := range c.Notes {
		if b := n.Position.BarIndex(); b > last {
			last = b
		}
	}
	for _, ch := range c.MeterChanges {
		if ch.Position.Bar > last {
			last = ch.Position.Bar
		}
	}
	for _, ch := range c.BpmChanges {
		if b := ch.Position.BarIndex(); b > last {
			last = b
		}
	}
	return last + 1
}

// BarMeter is the meter of the latest meter change at or before bar, or the
// composition meter.
func (c Composition) BarMeter(bar int) Meter {
	meter := c.Meter
	found := -1
	for _, ch := range c.MeterChanges {
		if ch.Position.Bar <= bar && ch.Position.Bar >= found {
			meter = ch.Meter
			found = ch.Position.Bar
		}
	}
	return meter
}

// PositionBpm is the tempo of the latest bpm change at or before p, or the
// composition tempo.
func (c Composition) PositionBpm(p Position) float64 {
	changes := c.SortedBpmChanges()
	bpm := c.Bpm
	for _, ch := range changes {
		if ComparePositions(ch.Position, p) > 0 {
			break
		}
		bpm = ch.Bpm
	}
	return bpm
}

// SortedBpmChanges returns the bpm changes ordered by position. Changes at
// the same position keep their input order.
func (c Composition) SortedBpmChanges() []BpmChange {
	changes := make([]BpmChange, len(c.BpmChanges))
	copy(changes, c.BpmChanges)
	sort.SliceStable(changes, func(i, j int) bool {
		return ComparePositions(changes[i].Position, changes[j].Position) < 0
	})
	return changes
}

// BarNotes returns the notes placed in bar, in input order.
func (c Composition) BarNotes(bar int) []Note {
	var res []Note
	for _, n := range c.Notes {
		if n.Position.BarIndex() == bar {
			res = append(res, n)
		}
	}
	return res
}
