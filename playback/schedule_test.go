package playback

import (
	"errors"
	"testing"

	"github.com/jsphweid/noted/codec"
	"github.com/jsphweid/noted/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, text string) model.Composition {
	c, err := codec.ParseCompositionString(text)
	require.NoError(t, err)
	return c
}

func TestMatchSample(t *testing.T) {
	cases := []struct {
		note string
		want string
	}{
		{"sn@0", "sn"},
		{"sn@0?accent", "sn"},
		{"sn@0?ghost", "sn_ghost"},
		{"sn@0?drag", "sn_drag"},
		{"sn@0?flam&ghost", "sn_flam"},
		{"hho@0", "hh_open"},
		{"cr@0", "crash"},
	}

	for _, c := range cases {
		t.Run(c.note, func(t *testing.T) {
			n, err := codec.NoteFromString(c.note)
			require.NoError(t, err)
			s, ok := MatchSample(n)
			assert.True(t, ok)
			assert.Equal(t, c.want, s.Name)
		})
	}

	_, ok := MatchSample(model.Note{Value: "xx", Position: model.BarPosition{Bar: 0}})
	assert.False(t, ok)
}

func TestBuildSchedule(t *testing.T) {
	c := parse(t, `60:bpm@0
bd@0.0/4 sn@0.1/4?flam sn@0.2/4?ghost sn@0.3/4?drag
K:annot@0.0/4 xx@0.1/4
cr@1.0/4`)

	s, err := BuildSchedule(c, Options{})
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(0.0, s.Start)
	assert.Equal(8.0, s.End)
	assert.Equal(8.0, s.Length())

	want := []struct {
		sample string
		time   float64
	}{
		{"bd", 0.2},
		{"sn_flam", 1.16},
		{"sn_ghost", 2.2},
		{"sn_drag", 3.02},
		{"crash", 4.19},
	}
	require.Len(t, s.Events, len(want))
	for i, w := range want {
		assert.Equal(w.sample, s.Events[i].Sample.Name)
		assert.InDelta(w.time, s.Events[i].Time, 1e-9)
		assert.Zero(s.Events[i].Duration)
	}
}

func TestBuildScheduleChokes(t *testing.T) {
	c := parse(t, "hho@0.0/8 hhc@0.1/8 hho@0.4/8 hhp@0.6/8")

	s, err := BuildSchedule(c, Options{})
	require.NoError(t, err)
	require.Len(t, s.Events, 4)

	assert := assert.New(t)
	assert.Equal("hh_open", s.Events[0].Sample.Name)
	assert.InDelta(MinChokeDuration, s.Events[0].Duration, 1e-9)
	assert.Zero(s.Events[1].Duration)
	assert.InDelta(0.5, s.Events[2].Duration, 1e-9)
	assert.Zero(s.Events[3].Duration)
}

func TestBuildScheduleBarRange(t *testing.T) {
	c := parse(t, "sn@0.0/4 bd@1.1/4 sn@2.0/4")

	s, err := BuildSchedule(c, Options{StartBar: 1, EndBar: 2, Repeat: true})
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(2.0, s.Start)
	assert.Equal(4.0, s.End)
	assert.True(s.Repeat)
	require.Len(t, s.Events, 1)
	assert.Equal("bd", s.Events[0].Note.Value)
	assert.InDelta(2.7, s.Events[0].Time, 1e-9)

	_, err = BuildSchedule(c, Options{StartBar: 1, EndBar: 5})
	assert.True(errors.Is(err, model.ErrOutOfBounds))

	_, err = BuildSchedule(c, Options{StartBar: 2, EndBar: 1})
	assert.True(errors.Is(err, model.ErrOutOfBounds))
}
