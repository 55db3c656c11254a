package midi

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/noted/codec"
	"github.com/jsphweid/noted/model"
	"github.com/jsphweid/noted/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func schedule(t *testing.T, text string) (playback.Schedule, model.Composition) {
	c, err := codec.ParseCompositionString(text)
	require.NoError(t, err)
	s, err := playback.BuildSchedule(c, playback.Options{})
	require.NoError(t, err)
	return s, c
}

func TestVelocity(t *testing.T) {
	n := model.Note{Value: "sn", Position: model.BarPosition{Bar: 0}}
	assert.Equal(t, velocityNormal, Velocity(n))

	n.Attributes = []string{"ghost"}
	assert.Equal(t, velocityGhost, Velocity(n))

	n.Attributes = []string{"accent", "ghost"}
	assert.Equal(t, velocityAccent, Velocity(n))
}

func TestExport(t *testing.T) {
	s, c := schedule(t, "bd@0.0/4 sn@0.1/4?ghost hhc@0.2/4?accent")

	var buf bytes.Buffer
	_, err := Export(s, c).WriteTo(&buf)
	require.NoError(t, err)

	read, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	hits := Hits(read)
	require.Len(t, hits, 3)

	assert := assert.New(t)
	assert.Equal(Hit{Key: 36, Velocity: velocityNormal}, Hit{Key: hits[0].Key, Velocity: hits[0].Velocity})
	assert.Equal(Hit{Key: 38, Velocity: velocityGhost}, Hit{Key: hits[1].Key, Velocity: hits[1].Velocity})
	assert.Equal(Hit{Key: 42, Velocity: velocityAccent}, Hit{Key: hits[2].Key, Velocity: hits[2].Velocity})

	assert.InDelta(0.2, hits[0].Seconds, 0.001)
	assert.InDelta(0.7, hits[1].Seconds, 0.001)
	assert.InDelta(1.2, hits[2].Seconds, 0.001)
}

func TestExportSkipsUnknownValues(t *testing.T) {
	s := playback.Schedule{Events: []playback.Event{
		{Note: model.Note{Value: "gong", Position: model.BarPosition{Bar: 0}}, Time: 0.2},
	}}
	assert.Empty(t, Hits(Export(s, model.Composition{Bpm: 120, Meter: model.NewMeter(4, 4)})))
}

func TestExportSkipsUnwritableMeter(t *testing.T) {
	s := playback.Schedule{}
	common := Export(s, model.Composition{Bpm: 120, Meter: model.NewMeter(4, 4)})
	wide := Export(s, model.Composition{Bpm: 120, Meter: model.NewMeter(300, 4)})

	require.Len(t, common.Tracks, 1)
	require.Len(t, wide.Tracks, 1)
	assert.Equal(t, len(common.Tracks[0])-1, len(wide.Tracks[0]))
}

func TestWriteAndReadFile(t *testing.T) {
	s, c := schedule(t, "bd@0.0/4 bd@0.2/4")
	path := filepath.Join(t.TempDir(), "groove.mid")

	require.NoError(t, WriteFile(Export(s, c), path))

	read, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, Hits(read), 2)
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "garbage.mid")
	require.NoError(t, os.WriteFile(path, []byte("not a midi file"), 0o644))
	_, err = ReadFile(path)
	assert.Error(t, err)
}

func TestSender(t *testing.T) {
	var sent []gomidi.Message
	sender := NewSender(func(msg gomidi.Message) error {
		sent = append(sent, msg)
		return nil
	})

	n := model.Note{Value: "sn", Position: model.BarPosition{Bar: 0}, Attributes: []string{"accent"}}
	require.NoError(t, sender.Send(playback.Event{Note: n}))
	require.NoError(t, sender.Send(playback.Event{Note: model.Note{Value: "gong"}}))

	require.Len(t, sent, 2)
	var ch, key, vel uint8
	assert.True(t, sent[0].GetNoteStart(&ch, &key, &vel))
	assert.Equal(t, []uint8{DrumChannel, 38, velocityAccent}, []uint8{ch, key, vel})
	assert.True(t, sent[1].GetNoteEnd(&ch, &key))
}
