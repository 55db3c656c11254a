// Package codec reads and writes the text records compositions are authored
// in:
//
//	position      BAR(.OFFSET/MEASURE(*P:Q)?)?           1.17/16*3:2
//	note          VALUE(:TYPE)?@POSITION(~DUR)?(?A&B)?   sn:annot@1.2/8~2?accent
//	meter change  BEATS/MEASURE:meter@BAR                6/8:meter@4
//	bpm change    BPM:bpm@POSITION                       92.5:bpm@2.1/4
package codec

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jsphweid/noted/model"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

var (
	positionRegex    = regexp.MustCompile(`^(\d+)(?:\.(\d+)/(\d+)(?:\*(\d+):(\d+))?)?(?:~(\d+))?$`)
	noteRegex        = regexp.MustCompile(`^(.+?)(?::(.+))?@(\d+(?:\.\d+/\d+(?:\*\d+:\d+)?(?:~(\d+))?)?)(?:\?(.+))?$`)
	meterChangeRegex = regexp.MustCompile(`^(\d+(?:\.\d+)?)/(\d+):meter?@(\d+)$`)
	bpmChangeRegex   = regexp.MustCompile(`^(\d+(?:\.\d+)?):bpm?@(\d+(?:\.\d+/\d+(?:\*\d+:\d+)?)?)$`)
)

// MaxInteger bounds every integer field so that position arithmetic stays
// well inside int64.
const MaxInteger = 1 << 20

// parseInteger accepts only the canonical spelling of a non-negative
// integer up to MaxInteger, so "01" is rejected.
func parseInteger(input string) (int, error) {
	v, err := strconv.Atoi(input)
	if err != nil || strconv.Itoa(v) != input || v > MaxInteger {
		return 0, errors.Wrapf(model.ErrInvalidFormat, "invalid integer: %q", input)
	}
	return v, nil
}

// parseDecimal reads a canonical decimal such as "3" or "3.5" exactly.
func parseDecimal(input string) (model.Rat, error) {
	whole, frac, hasFrac := strings.Cut(input, ".")
	n, err := parseInteger(whole)
	if err != nil {
		return model.Rat{}, errors.Wrapf(model.ErrInvalidFormat, "invalid number: %q", input)
	}
	if !hasFrac {
		return model.Int(int64(n)), nil
	}
	if frac == "" || strings.HasSuffix(frac, "0") || len(frac) > 9 {
		return model.Rat{}, errors.Wrapf(model.ErrInvalidFormat, "invalid number: %q", input)
	}
	digits, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return model.Rat{}, errors.Wrapf(model.ErrInvalidFormat, "invalid number: %q", input)
	}
	scale := int64(1)
	for range frac {
		scale *= 10
	}
	return model.Int(int64(n)).Add(model.NewRat(digits, scale)), nil
}

func parseMeasure(input, record string) (model.Measure, error) {
	v, err := parseInteger(input)
	if err != nil {
		return 0, err
	}
	if !model.IsMeasure(int64(v)) {
		return 0, errors.Wrapf(model.ErrInvalidFormat, "invalid measure format: %s", record)
	}
	return model.Measure(v), nil
}

func PositionFromString(input string) (model.Position, error) {
	matches := positionRegex.FindStringSubmatch(input)
	if matches == nil {
		return nil, errors.Wrapf(model.ErrInvalidFormat, "invalid position format: %s", input)
	}
	bar, err := parseInteger(matches[1])
	if err != nil {
		return nil, err
	}
	if matches[2] == "" {
		return model.BarPosition{Bar: bar}, nil
	}

	offset, err := parseInteger(matches[2])
	if err != nil {
		return nil, err
	}
	measure, err := parseMeasure(matches[3], input)
	if err != nil {
		return nil, err
	}
	res := model.RegularPosition{Bar: bar, Offset: offset, Measure: measure}
	if matches[4] == "" {
		return res, nil
	}

	p, err := parseInteger(matches[4])
	if err != nil {
		return nil, err
	}
	q, err := parseInteger(matches[5])
	if err != nil {
		return nil, err
	}
	tuplet, ok := model.TupletFromRatio(p, q)
	if !ok {
		return nil, errors.Wrapf(model.ErrInvalidFormat, "invalid tuplet format: %s", input)
	}
	res.Tuplet = tuplet
	return res, nil
}

func PositionToString(p model.Position) string {
	return p.String()
}

func NoteFromString(input string) (model.Note, error) {
	matches := noteRegex.FindStringSubmatch(input)
	if matches == nil {
		return model.Note{}, errors.Wrapf(model.ErrInvalidFormat, "invalid record format: %s", input)
	}
	position, err := PositionFromString(matches[3])
	if err != nil {
		return model.Note{}, err
	}

	note := model.Note{Value: matches[1], Type: matches[2], Position: position}

	if matches[4] != "" {
		duration, err := parseInteger(matches[4])
		if err != nil {
			return model.Note{}, err
		}
		note.Duration = &duration
	}

	for _, attr := range strings.Split(matches[5], "&") {
		if attr != "" {
			note.Attributes = append(note.Attributes, attr)
		}
	}

	return note, nil
}

func NoteToString(n model.Note) string {
	var sb strings.Builder
	sb.WriteString(n.Value)
	if n.Type != "" {
		sb.WriteString(":" + n.Type)
	}
	sb.WriteString("@" + n.Position.String())

	if _, ok := n.Position.(model.RegularPosition); ok && n.Duration != nil {
		sb.WriteString("~" + strconv.Itoa(*n.Duration))
	}

	if attrs := SortedAttributes(n.Attributes); len(attrs) > 0 {
		sb.WriteString("?" + strings.Join(attrs, "&"))
	}

	return sb.String()
}

// SortedAttributes returns a sorted copy of attrs without empty entries.
func SortedAttributes(attrs []string) []string {
	var res []string
	for _, a := range attrs {
		if a != "" {
			res = append(res, a)
		}
	}
	slices.Sort(res)
	return res
}

func MeterChangeFromString(input string) (model.MeterChange, error) {
	matches := meterChangeRegex.FindStringSubmatch(input)
	if matches == nil {
		return model.MeterChange{}, errors.Wrapf(model.ErrInvalidFormat, "invalid meter change format: %s", input)
	}
	beats, err := parseDecimal(matches[1])
	if err != nil {
		return model.MeterChange{}, err
	}
	if beats.Sign() <= 0 {
		return model.MeterChange{}, errors.Wrapf(model.ErrInvalidFormat, "meter needs at least one beat: %s", input)
	}
	measure, err := parseMeasure(matches[2], input)
	if err != nil {
		return model.MeterChange{}, errors.Wrapf(model.ErrInvalidFormat, "invalid meter format: %s", input)
	}
	bar, err := parseInteger(matches[3])
	if err != nil {
		return model.MeterChange{}, err
	}
	return model.MeterChange{
		Meter:    model.Meter{Beats: beats, Measure: measure},
		Position: model.BarPosition{Bar: bar},
	}, nil
}

func MeterChangeToString(c model.MeterChange) string {
	return c.Meter.String() + ":meter@" + c.Position.String()
}

func BpmChangeFromString(input string) (model.BpmChange, error) {
	matches := bpmChangeRegex.FindStringSubmatch(input)
	if matches == nil {
		return model.BpmChange{}, errors.Wrapf(model.ErrInvalidFormat, "invalid bpm change format: %s", input)
	}
	bpm, err := strconv.ParseFloat(matches[1], 64)
	if err != nil || bpm <= 0 {
		return model.BpmChange{}, errors.Wrapf(model.ErrInvalidFormat, "invalid bpm change format: %s", input)
	}
	position, err := PositionFromString(matches[2])
	if err != nil {
		return model.BpmChange{}, err
	}
	return model.BpmChange{Bpm: bpm, Position: position}, nil
}

func BpmChangeToString(c model.BpmChange) string {
	return FormatBpm(c.Bpm) + ":bpm@" + c.Position.String()
}

func FormatBpm(bpm float64) string {
	return strconv.FormatFloat(bpm, 'f', -1, 64)
}

// MeterFromString reads a bare meter such as "6/8".
func MeterFromString(input string) (model.Meter, error) {
	c, err := MeterChangeFromString(input + ":meter@0")
	if err != nil {
		return model.Meter{}, errors.Wrapf(model.ErrInvalidFormat, "invalid meter: %s", input)
	}
	return c.Meter, nil
}
