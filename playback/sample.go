package playback

import (
	"github.com/jsphweid/noted/constants"
	"github.com/jsphweid/noted/model"
	"golang.org/x/exp/slices"
)

// Sample is one sound of the kit. A note plays the sample of its value
// whose attributes overlap the note's attributes the most.
type Sample struct {
	Name       string
	Value      string
	Attributes []string

	// Offset moves the hit in seconds, so grace notes start before the beat.
	Offset float64

	// ChokedBy lists the values that cut this sample short.
	ChokedBy []string
}

var Samples = []Sample{
	{Name: "hh_close", Value: constants.HihatClosed},
	{Name: "hh_open", Value: constants.HihatOpen, ChokedBy: []string{constants.HihatClosed, constants.HihatPedal}},
	{Name: "hh_pedal", Value: constants.HihatPedal},
	{Name: "sn", Value: constants.Snare},
	{Name: "sn_side_stick", Value: constants.SideStick},
	{Name: "sn_ghost", Value: constants.Snare, Attributes: []string{constants.AttrGhost}},
	{Name: "sn_drag", Value: constants.Snare, Attributes: []string{constants.AttrDrag}, Offset: -0.180},
	{Name: "sn_flam", Value: constants.Snare, Attributes: []string{constants.AttrFlam}, Offset: -0.040},
	{Name: "bd", Value: constants.Bassdrum},
	{Name: "tom_ht", Value: constants.HighTom},
	{Name: "tom_lt", Value: constants.LowTom},
	{Name: "tom_ft", Value: constants.FloorTom},
	{Name: "ride", Value: constants.Ride},
	{Name: "ride_bell", Value: constants.RideBell},
	{Name: "crash", Value: constants.Crash, Offset: -0.010},
	{Name: "cowbell", Value: constants.Cowbell},
}

func overlap(attrs, sampleAttrs []string) int {
	count := 0
	for _, a := range attrs {
		if slices.Contains(sampleAttrs, a) {
			count++
		}
	}
	return count
}

// MatchSample picks the sample for n. Among samples of the same value the
// first one wins unless a later one shares at least as many attributes with
// the note, and at least one.
func MatchSample(n model.Note) (Sample, bool) {
	var match *Sample
	for i := range Samples {
		s := &Samples[i]
		if s.Value != n.Value {
			continue
		}
		if match == nil {
			match = s
			continue
		}
		if o := overlap(n.Attributes, s.Attributes); o > 0 && o >= overlap(n.Attributes, match.Attributes) {
			match = s
		}
	}
	if match == nil {
		return Sample{}, false
	}
	return *match, true
}

func (s Sample) chokedBy(value string) bool {
	return slices.Contains(s.ChokedBy, value)
}
