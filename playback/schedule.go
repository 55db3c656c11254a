// Package playback turns a composition into timed sample hits and plays
// them through a Sender.
package playback

import (
	"log"

	"github.com/jsphweid/noted/codec"
	"github.com/jsphweid/noted/model"
	"github.com/jsphweid/noted/timing"
	"github.com/jsphweid/noted/util"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

const (
	// LeadIn delays every hit so that negative sample offsets still start
	// after the transport does.
	LeadIn = 0.2

	// MinChokeDuration is the shortest a choked sample rings.
	MinChokeDuration = 0.3
)

type Options struct {
	StartBar int
	// EndBar is exclusive. Zero plays to the end of the composition.
	EndBar int
	Repeat bool
}

type Event struct {
	Note   model.Note
	Sample Sample

	// Time is in transport seconds, lead-in included.
	Time float64

	// Duration is zero when the sample rings out.
	Duration float64
}

type Schedule struct {
	Events []Event

	StartBar int

	// Start and End are the composition times of the played bar range.
	Start  float64
	End    float64
	Repeat bool
}

// Length is how long one pass of the schedule takes.
func (s Schedule) Length() float64 {
	return s.End - s.Start
}

// BuildSchedule resolves the hits of the notes in the bar range of opts.
// Typed notes such as annotations make no sound and are skipped.
func BuildSchedule(c model.Composition, opts Options) (Schedule, error) {
	timeline := timing.NewTimeline(c)

	endBar := opts.EndBar
	if endBar == 0 {
		endBar = timeline.BarCount
	}
	if opts.StartBar < 0 || endBar < opts.StartBar {
		return Schedule{}, errors.Wrapf(model.ErrOutOfBounds, "bar range %d-%d", opts.StartBar, endBar)
	}

	start, err := timeline.BarTime(opts.StartBar)
	if err != nil {
		return Schedule{}, err
	}
	end, err := timeline.BarTime(endBar)
	if err != nil {
		return Schedule{}, err
	}

	var notes []model.Note
	for _, n := range c.Notes {
		if bar := n.Position.BarIndex(); bar >= opts.StartBar && bar < endBar {
			notes = append(notes, n)
		}
	}
	slices.SortStableFunc(notes, func(a, b model.Note) bool {
		return model.ComparePositions(a.Position, b.Position) < 0
	})

	schedule := Schedule{StartBar: opts.StartBar, Start: start, End: end, Repeat: opts.Repeat}
	for _, n := range notes {
		if n.Type != "" {
			continue
		}

		sample, ok := MatchSample(n)
		if !ok {
			log.Printf("[warn] no sample for %s\n", codec.NoteToString(n))
			continue
		}

		at, err := timeline.Time(n.Position)
		if err != nil {
			return Schedule{}, err
		}
		at += sample.Offset

		var duration float64
		if next, ok := nextChoke(notes, n, sample); ok {
			nextAt, err := timeline.Time(next.Position)
			if err != nil {
				return Schedule{}, err
			}
			duration = util.Max(nextAt-at, MinChokeDuration)
		}

		schedule.Events = append(schedule.Events, Event{
			Note:     n,
			Sample:   sample,
			Time:     at + LeadIn,
			Duration: duration,
		})
	}

	return schedule, nil
}

// nextChoke finds the first note after n that cuts its sample short.
func nextChoke(notes []model.Note, n model.Note, sample Sample) (model.Note, bool) {
	if len(sample.ChokedBy) == 0 {
		return model.Note{}, false
	}
	for _, other := range notes {
		if sample.chokedBy(other.Value) && model.ComparePositions(other.Position, n.Position) > 0 {
			return other, true
		}
	}
	return model.Note{}, false
}
