package model

import "fmt"

// Measure is the denominator of the smallest tick of a position, e.g. 16 is
// a sixteenth-note grid.
type Measure int

const MaxMeasure Measure = 128

var Measures = []Measure{1, 2, 4, 8, 16, 32, 64, 128}

func IsMeasure(v int64) bool {
	for _, m := range Measures {
		if int64(m) == v {
			return true
		}
	}
	return false
}

// IsMeasureRat is IsMeasure for a value that may not be whole.
func IsMeasureRat(v Rat) bool {
	return v.IsInt() && IsMeasure(v.Int64())
}

func (m Measure) IsValid() bool { return IsMeasure(int64(m)) }

// Tuplet squeezes P ticks into the time of Q ticks. The zero value is
// NoTuplet.
type Tuplet uint8

const (
	NoTuplet Tuplet = iota
	Tuplet3x2
	Tuplet5x4
	Tuplet6x4
	Tuplet7x4
	Tuplet5x3
	Tuplet7x8
)

type ratio struct{ p, q int }

var tupletRatios = [...]ratio{
	NoTuplet:  {1, 1},
	Tuplet3x2: {3, 2},
	Tuplet5x4: {5, 4},
	Tuplet6x4: {6, 4},
	Tuplet7x4: {7, 4},
	Tuplet5x3: {5, 3},
	Tuplet7x8: {7, 8},
}

// Tuplets lists every real tuplet in lookup order. The subdivision resolver
// walks them in this order, so it is part of the behaviour.
var Tuplets = []Tuplet{Tuplet3x2, Tuplet5x4, Tuplet6x4, Tuplet7x4, Tuplet5x3, Tuplet7x8}

// TupletFromRatio returns the tuplet for p:q, or false when p:q is not one
// of the supported ratios.
func TupletFromRatio(p, q int) (Tuplet, bool) {
	for _, t := range Tuplets {
		if r := tupletRatios[t]; r.p == p && r.q == q {
			return t, true
		}
	}
	return NoTuplet, false
}

func (t Tuplet) IsValid() bool { return int(t) < len(tupletRatios) }

func (t Tuplet) P() int { return tupletRatios[t].p }
func (t Tuplet) Q() int { return tupletRatios[t].q }

func (t Tuplet) Multiplier() Rat {
	r := tupletRatios[t]
	return NewRat(int64(r.p), int64(r.q))
}

func (t Tuplet) String() string {
	if t == NoTuplet {
		return "-"
	}
	return fmt.Sprintf("%d:%d", t.P(), t.Q())
}
