package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/jsphweid/noted/model"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int {
	return &v
}

var tupletPosition = model.RegularPosition{Bar: 1, Offset: 17, Measure: 16, Tuplet: model.Tuplet3x2}

var noteDataset = []struct {
	text string
	note model.Note
}{
	{"value@1", model.Note{Value: "value", Position: model.BarPosition{Bar: 1}}},
	{"value:type@1.17/16*3:2~2?aaa&bbb", model.Note{
		Value: "value", Type: "type", Position: tupletPosition, Duration: intPtr(2), Attributes: []string{"aaa", "bbb"},
	}},
	{"value@1?aaa&", model.Note{Value: "value", Position: model.BarPosition{Bar: 1}, Attributes: []string{"aaa"}}},
	{"value:type@1.17/16*3:2~2", model.Note{Value: "value", Type: "type", Position: tupletPosition, Duration: intPtr(2)}},
	{"value:type@1.17/16*3:2?aaa&bbb", model.Note{
		Value: "value", Type: "type", Position: tupletPosition, Attributes: []string{"aaa", "bbb"},
	}},
	{"value:type@1.17/16~2?aaa&bbb", model.Note{
		Value:      "value",
		Type:       "type",
		Position:   model.RegularPosition{Bar: 1, Offset: 17, Measure: 16},
		Duration:   intPtr(2),
		Attributes: []string{"aaa", "bbb"},
	}},
	{"value:type@1?aaa&bbb", model.Note{
		Value: "value", Type: "type", Position: model.BarPosition{Bar: 1}, Attributes: []string{"aaa", "bbb"},
	}},
	{"value@1.17/16*3:2~2?aaa&bbb", model.Note{
		Value: "value", Position: tupletPosition, Duration: intPtr(2), Attributes: []string{"aaa", "bbb"},
	}},
	{"value@1.17/16*3:2", model.Note{Value: "value", Position: tupletPosition}},
	{"value:type@1.17/16", model.Note{Value: "value", Type: "type", Position: model.RegularPosition{Bar: 1, Offset: 17, Measure: 16}}},
}

func TestNoteFromString(t *testing.T) {
	for _, c := range noteDataset {
		t.Run(c.text, func(t *testing.T) {
			got, err := NoteFromString(c.text)
			assert.NoError(t, err)
			assert.Equal(t, c.note, got)
		})
	}
}

func TestNoteToString(t *testing.T) {
	for _, c := range noteDataset {
		t.Run(c.text, func(t *testing.T) {
			assert.Equal(t, strings.TrimSuffix(c.text, "&"), NoteToString(c.note))
		})
	}
}

func TestNoteToStringSortsAttributes(t *testing.T) {
	n := model.Note{Value: "sn", Position: model.BarPosition{Bar: 0}, Attributes: []string{"flam", "accent"}}
	assert.Equal(t, "sn@0?accent&flam", NoteToString(n))
}

func TestNoteToStringDropsDurationOnBarPosition(t *testing.T) {
	n := model.Note{Value: "sn", Position: model.BarPosition{Bar: 3}, Duration: intPtr(2)}
	assert.Equal(t, "sn@3", NoteToString(n))
}

func TestNoteFromStringInvalid(t *testing.T) {
	for _, input := range []string{"value@", "value@1:2", "value:type@1.17^3:2"} {
		t.Run(input, func(t *testing.T) {
			_, err := NoteFromString(input)
			assert.True(t, errors.Is(err, model.ErrInvalidFormat))
			assert.Contains(t, err.Error(), "invalid record format: "+input)
		})
	}
}

func TestPositionFromStringInvalid(t *testing.T) {
	cases := []struct {
		input   string
		message string
	}{
		{"01", "invalid integer"},
		{"1.01/4", "invalid integer"},
		{"1.0/5", "invalid measure format: 1.0/5"},
		{"1.0/8*4:3", "invalid tuplet format: 1.0/8*4:3"},
		{"1.0", "invalid position format"},
		{"0.4611686018427387904/128", "invalid integer"},
		{"1048577", "invalid integer"},
	}

	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			_, err := PositionFromString(c.input)
			assert.True(t, errors.Is(err, model.ErrInvalidFormat))
			assert.Contains(t, err.Error(), c.message)
		})
	}
}

func TestMeterChange(t *testing.T) {
	assert := assert.New(t)

	ch, err := MeterChangeFromString("3.5/4:meter@2")
	assert.NoError(err)
	assert.Equal(model.MeterChange{
		Meter:    model.Meter{Beats: model.NewRat(7, 2), Measure: 4},
		Position: model.BarPosition{Bar: 2},
	}, ch)
	assert.Equal("3.5/4:meter@2", MeterChangeToString(ch))

	ch, err = MeterChangeFromString("6/8:meter@4")
	assert.NoError(err)
	assert.Equal(model.NewMeter(6, 8), ch.Meter)

	for _, input := range []string{"3.50/4:meter@2", "4/3:meter@1", "4/4:meter@1.0/4", "4/4@1", "0/4:meter@0", "0.0/4:meter@1"} {
		_, err := MeterChangeFromString(input)
		assert.True(errors.Is(err, model.ErrInvalidFormat), input)
	}
}

func TestBpmChange(t *testing.T) {
	assert := assert.New(t)

	ch, err := BpmChangeFromString("92.5:bpm@2.1/4")
	assert.NoError(err)
	assert.Equal(model.BpmChange{Bpm: 92.5, Position: model.RegularPosition{Bar: 2, Offset: 1, Measure: 4}}, ch)
	assert.Equal("92.5:bpm@2.1/4", BpmChangeToString(ch))

	ch, err = BpmChangeFromString("120:bpm@3")
	assert.NoError(err)
	assert.Equal("120:bpm@3", BpmChangeToString(ch))

	for _, input := range []string{"120:bpm@3~2", "0:bpm@1", "0.0:bpm@1"} {
		_, err = BpmChangeFromString(input)
		assert.True(errors.Is(err, model.ErrInvalidFormat), input)
	}
}

func TestPositionFromStringLargestInteger(t *testing.T) {
	p, err := PositionFromString("1048576.1048576/128")
	assert.NoError(t, err)
	assert.Equal(t, model.RegularPosition{Bar: MaxInteger, Offset: MaxInteger, Measure: 128}, p)
}

func TestMeterFromString(t *testing.T) {
	m, err := MeterFromString("7/8")
	assert.NoError(t, err)
	assert.Equal(t, model.NewMeter(7, 8), m)

	_, err = MeterFromString("7")
	assert.True(t, errors.Is(err, model.ErrInvalidFormat))
}
