package midi

import (
	"log"

	"github.com/jsphweid/noted/playback"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Sender plays schedule events on a MIDI out port. Drum sounds on channel
// 10 decay on their own, so the note off follows the note on right away.
type Sender struct {
	send SendFunc
}

func NewSender(send SendFunc) *Sender {
	return &Sender{send: send}
}

// OpenSender opens out port number port of the registered driver.
func OpenSender(port int) (*Sender, drivers.Out, error) {
	out, err := gomidi.OutPort(port)
	if err != nil {
		return nil, nil, err
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, nil, err
	}
	return NewSender(send), out, nil
}

func (s *Sender) Send(e playback.Event) error {
	key, ok := Keys[e.Note.Value]
	if !ok {
		log.Printf("[warn] no midi key for %s\n", e.Note.Value)
		return nil
	}
	if err := s.send(gomidi.NoteOn(DrumChannel, key, Velocity(e.Note))); err != nil {
		return err
	}
	return s.send(gomidi.NoteOff(DrumChannel, key))
}
