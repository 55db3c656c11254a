// Package midi writes playback schedules as General MIDI drum tracks and
// sends them to live MIDI ports.
package midi

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DrumChannel is channel 10, counted from zero.
const DrumChannel uint8 = 9

func ReadFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			e = errors.New(fmt.Sprint(r))
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, errors.Wrap(err, "Error reading midi file")
	}

	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, errors.Wrap(err, "Error parsing midi file")
	}

	return res, nil
}

func WriteFile(s *smf.SMF, filepath string) error {
	return errors.Wrap(s.WriteFile(filepath), "Error writing midi file")
}

// Hit is a drum note start read back from a file.
type Hit struct {
	Key      uint8
	Velocity uint8
	Seconds  float64
}

// Hits lists the note starts on the drum channel, track by track.
func Hits(s *smf.SMF) []Hit {
	var res []Hit
	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			if !event.Message.GetNoteOn(&channel, &key, &velocity) || channel != DrumChannel || velocity == 0 {
				continue
			}
			res = append(res, Hit{
				Key:      key,
				Velocity: velocity,
				Seconds:  float64(s.TimeAt(absTicks)) / 1e6,
			})
		}
	}
	return res
}

// SendFunc is what gomidi.SendTo returns for an out port.
type SendFunc func(msg gomidi.Message) error
