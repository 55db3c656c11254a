package midi

import (
	"log"
	"math"

	"github.com/jsphweid/noted/codec"
	"github.com/jsphweid/noted/constants"
	"github.com/jsphweid/noted/model"
	"github.com/jsphweid/noted/playback"
	"github.com/jsphweid/noted/util"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/exp/slices"
)

const (
	// Schedule seconds are written as ticks of this fixed tempo.
	ReferenceBpm = 120
	Resolution   = smf.MetricTicks(960)

	// Gate is how long a hit that rings out is held.
	Gate = 0.1
)

// Keys is the General MIDI percussion key of every drum value.
var Keys = map[string]uint8{
	constants.HihatClosed: 42,
	constants.HihatOpen:   46,
	constants.HihatPedal:  44,
	constants.Snare:       38,
	constants.SideStick:   37,
	constants.Bassdrum:    36,
	constants.HighTom:     48,
	constants.LowTom:      47,
	constants.FloorTom:    43,
	constants.Ride:        51,
	constants.RideBell:    53,
	constants.Crash:       49,
	constants.Cowbell:     56,
}

const (
	velocityGhost  uint8 = 40
	velocityNormal uint8 = 96
	velocityAccent uint8 = 127
)

func Velocity(n model.Note) uint8 {
	switch {
	case n.HasAttribute(constants.AttrAccent):
		return velocityAccent
	case n.HasAttribute(constants.AttrGhost):
		return velocityGhost
	default:
		return velocityNormal
	}
}

func ticks(seconds float64) int64 {
	seconds = util.Max(seconds, 0)
	return int64(math.Round(seconds * ReferenceBpm / 60 * float64(Resolution)))
}

type timedMessage struct {
	tick int64
	off  bool
	msg  gomidi.Message
}

// Export writes one pass of s as a single drum track. Times are relative to
// the start of the schedule with its lead-in kept.
func Export(s playback.Schedule, c model.Composition) *smf.SMF {
	var msgs []timedMessage
	for _, e := range s.Events {
		key, ok := Keys[e.Note.Value]
		if !ok {
			log.Printf("[warn] no midi key for %s\n", codec.NoteToString(e.Note))
			continue
		}

		at := e.Time - s.Start
		gate := e.Duration
		if gate <= 0 {
			gate = Gate
		}

		msgs = append(msgs,
			timedMessage{tick: ticks(at), msg: gomidi.NoteOn(DrumChannel, key, Velocity(e.Note))},
			timedMessage{tick: ticks(at + gate), off: true, msg: gomidi.NoteOff(DrumChannel, key)},
		)
	}

	// Offs go first so a repeated hit on the same key is not cut short.
	slices.SortStableFunc(msgs, func(a, b timedMessage) bool {
		if a.tick != b.tick {
			return a.tick < b.tick
		}
		return a.off && !b.off
	})

	var track smf.Track
	track.Add(0, smf.MetaTempo(ReferenceBpm))
	if meter := c.BarMeter(s.StartBar); meter.Beats.IsInt() && meter.Beats.Int64() > 0 && meter.Beats.Int64() <= math.MaxUint8 {
		track.Add(0, smf.MetaMeter(uint8(meter.Beats.Int64()), uint8(meter.Measure)))
	} else {
		log.Printf("[warn] meter %s can't be written as a time signature\n", meter)
	}

	var last int64
	for _, m := range msgs {
		track.Add(uint32(m.tick-last), m.msg)
		last = m.tick
	}
	track.Close(0)

	res := smf.New()
	res.TimeFormat = Resolution
	// Add only fails for a track without an end of track event.
	_ = res.Add(track)
	return res
}
