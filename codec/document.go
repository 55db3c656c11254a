package codec

import (
	"bufio"
	"io"
	"strings"

	"github.com/jsphweid/noted/constants"
	"github.com/jsphweid/noted/model"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Document is the JSON shape of a composition. Every record is kept in its
// string encoding.
type Document struct {
	Bpm          float64  `json:"bpm"`
	Meter        string   `json:"meter"`
	Notes        []string `json:"notes"`
	BpmChanges   []string `json:"bpmChanges,omitempty"`
	MeterChanges []string `json:"meterChanges,omitempty"`
}

func NewDocument(c model.Composition) Document {
	doc := Document{
		Bpm:   c.Bpm,
		Meter: c.Meter.String(),
		Notes: make([]string, 0, len(c.Notes)),
	}
	for _, n := range c.Notes {
		doc.Notes = append(doc.Notes, NoteToString(n))
	}
	for _, ch := range c.BpmChanges {
		doc.BpmChanges = append(doc.BpmChanges, BpmChangeToString(ch))
	}
	for _, ch := range c.MeterChanges {
		doc.MeterChanges = append(doc.MeterChanges, MeterChangeToString(ch))
	}
	return doc
}

// Composition decodes d. A zero bpm or an empty meter take the defaults.
func (d Document) Composition() (model.Composition, error) {
	c := EmptyComposition()
	if d.Bpm < 0 {
		return model.Composition{}, errors.Wrapf(model.ErrInvalidFormat, "invalid bpm: %s", FormatBpm(d.Bpm))
	}
	if d.Bpm != 0 {
		c.Bpm = d.Bpm
	}
	if d.Meter != "" {
		meter, err := MeterFromString(d.Meter)
		if err != nil {
			return model.Composition{}, err
		}
		c.Meter = meter
	}

	for _, s := range d.Notes {
		n, err := NoteFromString(s)
		if err != nil {
			return model.Composition{}, err
		}
		c.Notes = append(c.Notes, n)
	}
	for _, s := range d.BpmChanges {
		ch, err := BpmChangeFromString(s)
		if err != nil {
			return model.Composition{}, err
		}
		c.BpmChanges = append(c.BpmChanges, ch)
	}
	for _, s := range d.MeterChanges {
		ch, err := MeterChangeFromString(s)
		if err != nil {
			return model.Composition{}, err
		}
		c.MeterChanges = append(c.MeterChanges, ch)
	}
	return c, nil
}

func EmptyComposition() model.Composition {
	return model.Composition{
		Bpm:   constants.DefaultBpm,
		Meter: model.NewMeter(constants.DefaultMeterBeats, constants.DefaultMeterMeasure),
	}
}

// ParseComposition reads the text form of a composition: whitespace
// separated records with '#' line comments. A bpm or meter record placed
// exactly at bar 0 sets the composition default instead of adding a change.
func ParseComposition(r io.Reader) (model.Composition, error) {
	c := EmptyComposition()

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}

		for _, record := range strings.Fields(text) {
			if err := addRecord(&c, record); err != nil {
				return model.Composition{}, errors.Wrapf(err, "line %d", line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return model.Composition{}, err
	}

	return c, nil
}

func ParseCompositionString(s string) (model.Composition, error) {
	return ParseComposition(strings.NewReader(s))
}

func addRecord(c *model.Composition, record string) error {
	switch {
	case bpmChangeRegex.MatchString(record):
		ch, err := BpmChangeFromString(record)
		if err != nil {
			return err
		}
		if ch.Position == (model.BarPosition{Bar: 0}) {
			c.Bpm = ch.Bpm
			return nil
		}
		c.BpmChanges = append(c.BpmChanges, ch)
	case meterChangeRegex.MatchString(record):
		ch, err := MeterChangeFromString(record)
		if err != nil {
			return err
		}
		if ch.Position.Bar == 0 {
			c.Meter = ch.Meter
			return nil
		}
		c.MeterChanges = append(c.MeterChanges, ch)
	default:
		n, err := NoteFromString(record)
		if err != nil {
			return err
		}
		c.Notes = append(c.Notes, n)
	}
	return nil
}

// FormatComposition writes c in the text form ParseComposition reads, one
// bar per line.
func FormatComposition(w io.Writer, c model.Composition) error {
	bw := bufio.NewWriter(w)

	header := []string{
		BpmChangeToString(model.BpmChange{Bpm: c.PositionBpm(model.BarPosition{Bar: 0}), Position: model.BarPosition{Bar: 0}}),
		MeterChangeToString(model.MeterChange{Meter: c.BarMeter(0), Position: model.BarPosition{Bar: 0}}),
	}
	if _, err := bw.WriteString(strings.Join(header, " ") + "\n"); err != nil {
		return err
	}

	barCount := c.BarCount()
	for bar := 0; bar < barCount; bar++ {
		records := barRecords(c, bar, bar)
		if len(records) == 0 {
			continue
		}
		if _, err := bw.WriteString(strings.Join(records, " ") + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func FormatCompositionString(c model.Composition) string {
	var sb strings.Builder
	// strings.Builder never fails to write.
	_ = FormatComposition(&sb, c)
	return sb.String()
}

// barRecords returns the sorted records of bar, moved to targetBar.
func barRecords(c model.Composition, bar, targetBar int) []string {
	var records []string
	for _, ch := range c.MeterChanges {
		if ch.Position.Bar == bar && bar != 0 {
			ch.Position.Bar = targetBar
			records = append(records, MeterChangeToString(ch))
		}
	}
	for _, ch := range c.BpmChanges {
		if ch.Position.BarIndex() == bar && ch.Position != (model.BarPosition{Bar: 0}) {
			ch.Position = moveToBar(ch.Position, targetBar)
			records = append(records, BpmChangeToString(ch))
		}
	}
	for _, n := range c.BarNotes(bar) {
		n.Position = moveToBar(n.Position, targetBar)
		records = append(records, NoteToString(n))
	}
	slices.Sort(records)
	return records
}

func moveToBar(p model.Position, bar int) model.Position {
	switch v := p.(type) {
	case model.RegularPosition:
		v.Bar = bar
		return v
	default:
		return model.BarPosition{Bar: bar}
	}
}

// BarKey identifies the rendered content of one bar. Two bars with the
// same key engrave the same way, which is what repeat detection relies on.
// With resetBar the bar index is left out so equal bars at different
// indices share a key.
func BarKey(c model.Composition, bar int, resetBar bool) string {
	targetBar := bar
	if resetBar {
		targetBar = 0
	}

	var notes []string
	for _, n := range c.BarNotes(bar) {
		n.Position = moveToBar(n.Position, targetBar)
		notes = append(notes, NoteToString(n))
	}
	slices.Sort(notes)

	var changes []string
	for _, ch := range c.BpmChanges {
		if rp, ok := ch.Position.(model.RegularPosition); ok && rp.Bar == bar {
			rp.Bar = targetBar
			changes = append(changes, BpmChangeToString(model.BpmChange{Bpm: ch.Bpm, Position: rp}))
		}
	}
	slices.Sort(changes)

	return strings.Join([]string{
		model.Int(int64(targetBar)).String(),
		strings.Join(notes, " "),
		c.BarMeter(bar).String(),
		FormatBpm(c.PositionBpm(model.BarPosition{Bar: bar})),
		strings.Join(changes, " "),
	}, " ")
}

// NotesKey identifies a set of notes regardless of their order.
func NotesKey(notes []model.Note) string {
	res := make([]string, 0, len(notes))
	for _, n := range notes {
		res = append(res, NoteToString(n))
	}
	slices.Sort(res)
	return strings.Join(res, " ")
}
