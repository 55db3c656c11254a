package timing

import (
	"github.com/jsphweid/noted/model"
	"golang.org/x/exp/slices"
)

// Timeline is the time keys of one composition snapshot. It is recomputed,
// never updated, when the composition changes.
type Timeline struct {
	Keys     []TimeKey
	BarCount int
}

func NewTimeline(c model.Composition) Timeline {
	barCount := c.BarCount()
	return Timeline{Keys: CreateTimeKeys(c, barCount), BarCount: barCount}
}

func (t Timeline) Time(p model.Position) (float64, error) {
	return PositionTime(p, t.Keys)
}

func (t Timeline) BarTime(bar int) (float64, error) {
	return PositionTime(model.BarPosition{Bar: bar}, t.Keys)
}

func (t Timeline) Duration() float64 {
	if len(t.Keys) == 0 {
		return 0
	}
	return t.Keys[len(t.Keys)-1].Seconds
}

type NoteTime struct {
	Note    model.Note
	Seconds float64
}

// NoteTimes resolves every note of c, ordered by position.
func (t Timeline) NoteTimes(c model.Composition) ([]NoteTime, error) {
	notes := make([]model.Note, len(c.Notes))
	copy(notes, c.Notes)
	slices.SortStableFunc(notes, func(a, b model.Note) bool {
		return model.ComparePositions(a.Position, b.Position) < 0
	})

	res := make([]NoteTime, 0, len(notes))
	for _, n := range notes {
		seconds, err := t.Time(n.Position)
		if err != nil {
			return nil, err
		}
		res = append(res, NoteTime{Note: n, Seconds: seconds})
	}
	return res, nil
}
