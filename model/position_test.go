package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatNormalizes(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(NewRat(1, 2), NewRat(3, 6))
	assert.Equal(NewRat(-1, 2), NewRat(1, -2))
	assert.Equal(Int(0), NewRat(0, 7))
	assert.True(Rat{}.Equal(Int(0)))
	assert.Equal("3/28", NewRat(3, 16).Div(NewRat(7, 4)).String())
	assert.Equal("3.5", NewRat(7, 2).Decimal())
	assert.Equal("0.125", NewRat(1, 8).Decimal())
	assert.Equal("6", Int(6).Decimal())
	assert.Equal(NewRat(1, 4), NewRat(9, 4).Mod(Int(1)))
}

func TestToDecimal(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(DecimalPosition{Bar: 2, Frac: Int(0)}, ToDecimal(BarPosition{Bar: 2}))
	assert.Equal(DecimalPosition{Bar: 1, Frac: NewRat(1, 4)}, ToDecimal(RegularPosition{Bar: 1, Offset: 4, Measure: 16}))
	assert.Equal(DecimalPosition{Bar: 0, Frac: NewRat(1, 6)}, ToDecimal(RegularPosition{Bar: 0, Offset: 1, Measure: 4, Tuplet: Tuplet3x2}))
}

func TestCompareAgreesWithDecimal(t *testing.T) {
	positions := []Position{
		BarPosition{Bar: 0},
		BarPosition{Bar: 1},
		RegularPosition{Bar: 0, Offset: 0, Measure: 4},
		RegularPosition{Bar: 0, Offset: 2, Measure: 8},
		RegularPosition{Bar: 0, Offset: 1, Measure: 4},
		RegularPosition{Bar: 0, Offset: 3, Measure: 8, Tuplet: Tuplet3x2},
		RegularPosition{Bar: 0, Offset: 6, Measure: 16, Tuplet: Tuplet3x2},
		RegularPosition{Bar: 1, Offset: 0, Measure: 16, Tuplet: Tuplet7x4},
	}
	for _, a := range positions {
		for _, b := range positions {
			name := fmt.Sprintf("%s vs %s", a, b)
			t.Run(name, func(t *testing.T) {
				equal := ToDecimal(a) == ToDecimal(b)
				assert.Equal(t, equal, ComparePositions(a, b) == 0)
				assert.Equal(t, -ComparePositions(b, a), ComparePositions(a, b))
			})
		}
	}
}

func TestChangeMeasure(t *testing.T) {
	assert := assert.New(t)

	res, err := ChangeMeasure(RegularPosition{Bar: 1, Offset: 3, Measure: 8}, 16)
	assert.NoError(err)
	assert.Equal(RegularPosition{Bar: 1, Offset: 6, Measure: 16}, res)

	res, err = ChangeMeasure(RegularPosition{Bar: 1, Offset: 4, Measure: 16}, 4)
	assert.NoError(err)
	assert.Equal(RegularPosition{Bar: 1, Offset: 1, Measure: 4}, res)

	_, err = ChangeMeasure(RegularPosition{Bar: 1, Offset: 3, Measure: 16}, 8)
	assert.True(errors.Is(err, ErrInvalidRescale))

	res, err = ChangeMeasure(BarPosition{Bar: 3}, 16)
	assert.NoError(err)
	assert.Equal(BarPosition{Bar: 3}, res)
}

func TestChangeTuplet(t *testing.T) {
	assert := assert.New(t)

	res, err := ChangeTuplet(RegularPosition{Bar: 0, Offset: 2, Measure: 8}, Tuplet3x2)
	assert.NoError(err)
	assert.Equal(RegularPosition{Bar: 0, Offset: 3, Measure: 8, Tuplet: Tuplet3x2}, res)

	res, err = ChangeTuplet(RegularPosition{Bar: 0, Offset: 3, Measure: 8, Tuplet: Tuplet3x2}, NoTuplet)
	assert.NoError(err)
	assert.Equal(RegularPosition{Bar: 0, Offset: 2, Measure: 8}, res)

	_, err = ChangeTuplet(RegularPosition{Bar: 0, Offset: 1, Measure: 8, Tuplet: Tuplet3x2}, NoTuplet)
	assert.True(errors.Is(err, ErrInvalidRescale))
}

func TestRescaleKeepsInstant(t *testing.T) {
	cases := []struct {
		in      RegularPosition
		measure Measure
		tuplet  Tuplet
		want    RegularPosition
	}{
		{RegularPosition{Bar: 0, Offset: 1, Measure: 4}, 16, Tuplet3x2, RegularPosition{Bar: 0, Offset: 6, Measure: 16, Tuplet: Tuplet3x2}},
		{RegularPosition{Bar: 0, Offset: 6, Measure: 16, Tuplet: Tuplet3x2}, 4, NoTuplet, RegularPosition{Bar: 0, Offset: 1, Measure: 4}},
		{RegularPosition{Bar: 2, Offset: 3, Measure: 16, Tuplet: Tuplet7x4}, 32, Tuplet7x4, RegularPosition{Bar: 2, Offset: 6, Measure: 32, Tuplet: Tuplet7x4}},
	}
	for _, c := range cases {
		t.Run(c.in.String(), func(t *testing.T) {
			res, err := Rescale(c.in, c.measure, c.tuplet)
			assert.NoError(t, err)
			assert.Equal(t, c.want, res)
			assert.Equal(t, ToDecimal(c.in), ToDecimal(res))
		})
	}

	_, err := Rescale(RegularPosition{Bar: 0, Offset: 1, Measure: 8, Tuplet: Tuplet3x2}, 8, NoTuplet)
	assert.True(t, errors.Is(err, ErrInvalidRescale))
}

func TestTupletLookup(t *testing.T) {
	assert := assert.New(t)
	tuplet, ok := TupletFromRatio(7, 4)
	assert.True(ok)
	assert.Equal(Tuplet7x4, tuplet)
	assert.Equal(NewRat(7, 4), tuplet.Multiplier())

	_, ok = TupletFromRatio(4, 3)
	assert.False(ok)
	assert.Equal(Int(1), NoTuplet.Multiplier())
	assert.True(IsMeasure(64))
	assert.False(IsMeasure(3))
}
