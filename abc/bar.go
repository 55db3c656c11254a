package abc

import (
	"regexp"
	"strings"

	"github.com/jsphweid/noted/codec"
	"github.com/jsphweid/noted/model"
	"github.com/jsphweid/noted/subdivision"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

const (
	rest  = "z"
	empty = "x"

	// placeholder marks a tick that holds a note of the other voice.
	placeholder = "EMPTY"
)

var (
	annotationRegex = regexp.MustCompile(`%%annotationfont[^"]*?"[\^_@].*?"`)
	graceRegex      = regexp.MustCompile(`\{.*\}`)
	graceLazyRegex  = regexp.MustCompile(`\{.*?\}`)
)

// NoteResolver renders a note to its ABC fragment. A false return leaves
// an invisible placeholder at the note's tick.
type NoteResolver interface {
	Resolve(n model.Note) (string, bool)
}

type ResolverFunc func(n model.Note) (string, bool)

func (f ResolverFunc) Resolve(n model.Note) (string, bool) { return f(n) }

// commonGrid picks the measure and tuplet every note of a part fits on.
func commonGrid(notes []model.Note, fallback model.Measure) (model.Measure, model.Tuplet, error) {
	if len(notes) == 1 {
		if rp, ok := notes[0].Position.(model.RegularPosition); ok {
			return rp.Measure, rp.Tuplet, nil
		}
	}
	if len(notes) == 0 {
		return fallback, model.NoTuplet, nil
	}

	positions := make([]model.Position, 0, len(notes))
	for _, n := range notes {
		positions = append(positions, n.Position)
	}
	measure, tuplet, ok := subdivision.FindCommon(positions)
	if !ok {
		names := make([]string, 0, len(positions))
		for _, p := range positions {
			names = append(names, p.String())
		}
		return 0, model.NoTuplet, errors.Wrapf(model.ErrUnresolvableSubdivision,
			"couldn't find common measurement for provided notes: %s", strings.Join(names, ", "))
	}
	return measure, tuplet, nil
}

func tickOffset(p model.Position) int {
	if rp, ok := p.(model.RegularPosition); ok {
		return rp.Offset
	}
	return 0
}

func lengthSuffix(measure model.Rat, dotted bool) string {
	if dotted {
		return "3/" + measure.MulInt(2).String()
	}
	return "/" + measure.String()
}

// BuildBar lays out one part of a bar: partSize beats of 1/measure starting
// partOffset beats into the bar. Consecutive empty ticks are merged into the
// longest legal note value.
func BuildBar(notes []model.Note, partSize, partOffset int, measure model.Measure, resolver NoteResolver) (string, error) {
	cm, ct, err := commonGrid(notes, measure)
	if err != nil {
		return "", err
	}

	if cm < 4 {
		cm = 4
	}
	mult := ct.Multiplier()
	span := model.Int(int64(partSize * int(measure)))
	for model.Int(int64(cm)).Mul(mult).Mod(span).Sign() != 0 && model.IsMeasure(int64(cm)*2) {
		cm *= 2
	}

	ticks := model.Int(int64(cm)).Mul(mult).MulInt(int64(partSize)).Div(model.Int(int64(measure)))
	if !ticks.IsInt() {
		return "", errors.Wrapf(model.ErrUnresolvableSubdivision,
			"common measure %d and tuplet %s doesn't fit into: %d/%d", cm, ct, partSize, measure)
	}
	totalTicks := int(ticks.Int64())

	base, err := model.Rescale(model.RegularPosition{Offset: partOffset, Measure: measure}, cm, ct)
	if err != nil {
		return "", err
	}
	baseOffset := tickOffset(base)

	ordered := make([]model.Note, len(notes))
	copy(ordered, notes)
	slices.SortStableFunc(ordered, func(a, b model.Note) bool {
		return codec.NoteToString(a) < codec.NoteToString(b)
	})

	buckets := make([][]string, totalTicks)
	for _, n := range ordered {
		p, err := model.Rescale(n.Position, cm, ct)
		if err != nil {
			return "", err
		}
		idx := tickOffset(p) - baseOffset
		if idx < 0 || idx >= totalTicks {
			continue
		}

		var value []string
		for _, v := range buckets[idx] {
			if v != placeholder {
				value = append(value, v)
			}
		}

		if resolved, ok := resolver.Resolve(n); ok {
			buckets[idx] = append(value, resolved)
		} else if len(value) == 0 {
			buckets[idx] = []string{placeholder}
		}
	}

	hasNotes := func(from, to int) bool {
		for _, b := range buckets[from:to] {
			for _, v := range b {
				if v != placeholder {
					return true
				}
			}
		}
		return false
	}

	beat := model.NewRat(int64(cm), int64(measure)).Mul(mult)
	if partSize%3 == 0 {
		beat = beat.MulInt(3)
	}

	var sb strings.Builder
	for i := 0; i < totalTicks; {
		grouping := 1
		resultMeasure := model.Int(int64(cm))

		for {
			multiplier := 2
			if grouping == 1 && ct != model.NoTuplet {
				multiplier = ct.P()
			}
			size := grouping * multiplier

			if i+size > totalTicks || i%size != 0 || hasNotes(i+1, i+size) {
				break
			}

			result := model.NewRat(int64(cm), int64(size))
			if ct != model.NoTuplet {
				result = result.Mul(mult)
				if ct.Q()%3 == 0 {
					result = result.Mul(model.NewRat(3, 2))
				}
			}
			if !model.IsMeasureRat(result) {
				break
			}
			// Nothing shorter than a quarter is merged, except tuplet ticks.
			if result.Cmp(model.Int(4)) < 0 && (grouping > 1 || ct == model.NoTuplet) {
				break
			}

			grouping = size
			resultMeasure = result
		}

		isDotted := grouping > 1 && ct != model.NoTuplet && ct.Q()%3 == 0
		isTuplet := grouping == 1 && ct != model.NoTuplet

		if !model.IsMeasureRat(resultMeasure) {
			return "", errors.Wrapf(model.ErrUnresolvableSubdivision, "not a valid measure: %s", resultMeasure)
		}

		if isTuplet && i%ct.P() == 0 {
			sb.WriteString("\n%%beamslope 1\n")
			sb.WriteString(" (" + ct.String())
		}

		suffix := lengthSuffix(resultMeasure, isDotted)
		sb.WriteString(renderTick(buckets[i], suffix, isTuplet, model.Int(int64(i)).Mod(beat).Sign() == 0))

		if isTuplet && i%ct.P() == ct.P()-1 {
			sb.WriteString("\n%%beamslope 0\n")
		}

		i += grouping
	}

	return strings.ReplaceAll(sb.String(), "\n\n", "\n"), nil
}

// renderTick renders the fragments of one tick in ABC order: grace notes,
// annotations, separator, accent, then the note or chord with its length.
func renderTick(fragments []string, suffix string, isTuplet, isStrongBeat bool) string {
	isAccented := false
	var annotations, graceNotes, regularNotes []string

	for _, v := range fragments {
		if strings.Contains(v, accent) {
			isAccented = true
		}
		for _, m := range annotationRegex.FindAllString(v, -1) {
			annotations = append(annotations, "\n"+m+"\n")
		}
		graceNotes = append(graceNotes, graceRegex.FindAllString(v, -1)...)
	}

	for _, v := range fragments {
		note := v + suffix
		note = strings.ReplaceAll(note, accent, "")
		note = annotationRegex.ReplaceAllString(note, "")
		note = graceLazyRegex.ReplaceAllString(note, "")
		note = strings.TrimSpace(note)
		if !slices.Contains(regularNotes, note) {
			regularNotes = append(regularNotes, note)
		}
	}

	separator := ""
	if isStrongBeat && !isTuplet {
		separator = " "
	}
	prefix := strings.Join(graceNotes, "") + strings.Join(annotations, "") + separator
	if isAccented {
		prefix += accent
	}

	switch {
	case len(regularNotes) == 0:
		return separator + rest + suffix
	case len(regularNotes) == 1 && strings.Contains(regularNotes[0], placeholder):
		return separator + empty + suffix
	case len(regularNotes) == 1:
		return prefix + strings.ReplaceAll(regularNotes[0], "\n", "")
	default:
		return prefix + "[" + strings.ReplaceAll(strings.Join(regularNotes, ""), "\n", "") + "]"
	}
}
