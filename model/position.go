package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Position is either a BarPosition (the start of a bar) or a
// RegularPosition (a tick inside a bar).
type Position interface {
	BarIndex() int
	String() string
	isPosition()
}

type BarPosition struct {
	Bar int
}

// RegularPosition is Offset ticks of 1/Measure from the start of Bar,
// squeezed by Tuplet.
type RegularPosition struct {
	Bar     int
	Offset  int
	Measure Measure
	Tuplet  Tuplet
}

func (p BarPosition) BarIndex() int     { return p.Bar }
func (p RegularPosition) BarIndex() int { return p.Bar }

func (BarPosition) isPosition()     {}
func (RegularPosition) isPosition() {}

func (p BarPosition) String() string {
	return fmt.Sprintf("%d", p.Bar)
}

func (p RegularPosition) String() string {
	s := fmt.Sprintf("%d.%d/%d", p.Bar, p.Offset, p.Measure)
	if p.Tuplet != NoTuplet {
		s += fmt.Sprintf("*%d:%d", p.Tuplet.P(), p.Tuplet.Q())
	}
	return s
}

// DecimalPosition is the canonical (bar, fraction of a whole note) pair used
// for ordering. It is derived and never stored.
type DecimalPosition struct {
	Bar  int
	Frac Rat
}

func (d DecimalPosition) String() string {
	return fmt.Sprintf("[%d, %s]", d.Bar, d.Frac.norm())
}

func (d DecimalPosition) MarshalJSON() ([]byte, error) {
	frac, err := d.Frac.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("[%d,%s]", d.Bar, frac)), nil
}

func ToDecimal(p Position) DecimalPosition {
	switch v := p.(type) {
	case RegularPosition:
		return DecimalPosition{Bar: v.Bar, Frac: regularFrac(v)}
	default:
		return DecimalPosition{Bar: p.BarIndex(), Frac: Int(0)}
	}
}

func regularFrac(p RegularPosition) Rat {
	return NewRat(int64(p.Offset), int64(p.Measure)).Div(p.Tuplet.Multiplier())
}

func CompareDecimal(a, b DecimalPosition) int {
	switch {
	case a.Bar < b.Bar:
		return -1
	case a.Bar > b.Bar:
		return 1
	}
	return a.Frac.Cmp(b.Frac)
}

func ComparePositions(a, b Position) int {
	return CompareDecimal(ToDecimal(a), ToDecimal(b))
}

// ChangeMeasure moves p onto a grid of 1/m ticks without changing the
// instant it denotes.
func ChangeMeasure(p Position, m Measure) (Position, error) {
	rp, ok := p.(RegularPosition)
	if !ok {
		return BarPosition{Bar: p.BarIndex()}, nil
	}
	if rp.Measure == m {
		return rp, nil
	}
	offset := Int(int64(rp.Offset)).Mul(NewRat(int64(m), int64(rp.Measure)))
	if !offset.IsInt() {
		return nil, errors.Wrapf(ErrInvalidRescale, "position %s measure couldn't be changed to %d", rp, m)
	}
	result := RegularPosition{Bar: rp.Bar, Offset: int(offset.Int64()), Measure: m, Tuplet: rp.Tuplet}
	if !regularFrac(rp).Equal(regularFrac(result)) {
		return nil, errors.Wrapf(ErrInvalidRescale, "changing position %s measure to %d moved it to %s", rp, m, result)
	}
	return result, nil
}

// ChangeTuplet moves p onto the grid of tuplet t, keeping its measure.
func ChangeTuplet(p Position, t Tuplet) (Position, error) {
	rp, ok := p.(RegularPosition)
	if !ok {
		return BarPosition{Bar: p.BarIndex()}, nil
	}
	if rp.Tuplet == t {
		return rp, nil
	}
	offset := Int(int64(rp.Offset)).Mul(t.Multiplier()).Div(rp.Tuplet.Multiplier())
	if !offset.IsInt() {
		return nil, errors.Wrapf(ErrInvalidRescale, "position %s tuplet couldn't be changed to %s", rp, t)
	}
	result := RegularPosition{Bar: rp.Bar, Offset: int(offset.Int64()), Measure: rp.Measure, Tuplet: t}
	if !regularFrac(rp).Equal(regularFrac(result)) {
		return nil, errors.Wrapf(ErrInvalidRescale, "changing position %s tuplet to %s moved it to %s", rp, t, result)
	}
	return result, nil
}

// Rescale moves p onto the (m, t) grid. Dropping a tuplet happens before the
// measure change; adding one happens after it.
func Rescale(p Position, m Measure, t Tuplet) (Position, error) {
	if t == NoTuplet {
		res, err := ChangeTuplet(p, t)
		if err != nil {
			return nil, err
		}
		return ChangeMeasure(res, m)
	}
	res, err := ChangeMeasure(p, m)
	if err != nil {
		return nil, err
	}
	return ChangeTuplet(res, t)
}
