package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBarCount(t *testing.T) {
	c := Composition{
		Bpm:   120,
		Meter: NewMeter(4, 4),
		Notes: []Note{
			{Value: "sn", Position: RegularPosition{Bar: 2, Offset: 1, Measure: 4}},
		},
		BpmChanges: []BpmChange{{Bpm: 90, Position: BarPosition{Bar: 4}}},
	}
	assert.Equal(t, 5, c.BarCount())
	assert.Equal(t, 1, Composition{Bpm: 120, Meter: NewMeter(4, 4)}.BarCount())
}

func TestBarMeter(t *testing.T) {
	c := Composition{
		Bpm:   120,
		Meter: NewMeter(4, 4),
		MeterChanges: []MeterChange{
			{Meter: NewMeter(7, 8), Position: BarPosition{Bar: 3}},
			{Meter: NewMeter(6, 8), Position: BarPosition{Bar: 1}},
		},
	}
	assert := assert.New(t)
	assert.Equal(NewMeter(4, 4), c.BarMeter(0))
	assert.Equal(NewMeter(6, 8), c.BarMeter(2))
	assert.Equal(NewMeter(7, 8), c.BarMeter(9))
}

func TestPositionBpm(t *testing.T) {
	c := Composition{
		Bpm:   60,
		Meter: NewMeter(4, 4),
		BpmChanges: []BpmChange{
			{Bpm: 100, Position: RegularPosition{Bar: 1, Offset: 1, Measure: 2}},
			{Bpm: 80, Position: BarPosition{Bar: 1}},
		},
	}
	assert := assert.New(t)
	assert.Equal(60.0, c.PositionBpm(BarPosition{Bar: 0}))
	assert.Equal(80.0, c.PositionBpm(BarPosition{Bar: 1}))
	assert.Equal(80.0, c.PositionBpm(RegularPosition{Bar: 1, Offset: 1, Measure: 4}))
	assert.Equal(100.0, c.PositionBpm(RegularPosition{Bar: 1, Offset: 2, Measure: 4}))
}

func TestMeterParts(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(4, NewMeter(4, 4).Parts())
	assert.Equal(2, NewMeter(6, 8).Parts())
	assert.Equal(NewRat(3, 1), NewMeter(6, 8).PartSize(8))
	assert.Equal(NewRat(1, 1), NewMeter(4, 4).PartSize(4))
	assert.Equal(NewRat(3, 2), NewMeter(6, 4).Length())
	assert.Equal("3.5/4", Meter{Beats: NewRat(7, 2), Measure: 4}.String())
}
