package abc

import (
	"math"
	"regexp"

	"github.com/jsphweid/noted/model"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// FullNote is the length of a whole note in abc2svg time units.
const FullNote = 1536

type SymbolType string

const (
	SymbolAnnotation SymbolType = "annot"
	SymbolBar        SymbolType = "bar"
	SymbolBeam       SymbolType = "beam"
	SymbolDeco       SymbolType = "deco"
	SymbolClef       SymbolType = "clef"
	SymbolMeter      SymbolType = "meter"
	SymbolNote       SymbolType = "note"
	SymbolGrace      SymbolType = "grace"
	SymbolSlur       SymbolType = "slur"
	SymbolRest       SymbolType = "rest"
)

// Symbol is what the rendering backend reports for every engraved symbol.
type Symbol struct {
	Type         SymbolType
	Time         float64
	Duration     float64
	OrigDuration float64
	Dots         int
	InTuplet     bool

	// BarLength is the length of the current bar in time units.
	BarLength float64

	// Set on bar symbols only.
	BarNum  int
	BarType string
}

var barRepeatRegex = regexp.MustCompile(`:+$`)

// SymbolPosition recovers the in-bar grid of a note or rest symbol. The
// returned position has bar 0.
func SymbolPosition(s Symbol) (model.RegularPosition, error) {
	if s.Dots > 1 {
		return model.RegularPosition{}, errors.Wrapf(model.ErrInvalidFormat, "double dotted notes not supported")
	}
	if s.InTuplet && s.Dots > 0 {
		return model.RegularPosition{}, errors.Wrapf(model.ErrInvalidFormat, "tuplet notes with dots not supported")
	}

	// A dotted value sits on the grid of a third of its length.
	dot := 1.0
	if s.Dots == 1 {
		dot = 3
	}

	tuplet := model.NoTuplet
	if s.InTuplet {
		found := false
		for _, t := range model.Tuplets {
			if math.Abs(s.Duration-s.OrigDuration/t.Multiplier().Float64()) < 1 {
				tuplet = t
				found = true
				break
			}
		}
		if !found {
			return model.RegularPosition{}, errors.Wrapf(model.ErrInvalidFormat,
				"tuplet not detected, dur: %v, dur_orig: %v", s.Duration, s.OrigDuration)
		}
	}

	var measure model.Measure
	for _, m := range model.Measures {
		if s.OrigDuration/dot == float64(FullNote)/float64(m) {
			measure = m
			break
		}
	}
	if measure == 0 {
		return model.RegularPosition{}, errors.Wrapf(model.ErrInvalidFormat, "measure not detected, dur_orig: %v", s.OrigDuration)
	}

	offset := math.Round(math.Mod(s.Time, s.BarLength) / (s.Duration / dot))

	return model.RegularPosition{Offset: int(offset), Measure: measure, Tuplet: tuplet}, nil
}

type barStart struct {
	bar     int
	time    float64
	repeats int
}

// Cursor turns the symbol stream of one render into playback cursor
// positions. Repeated bars yield one position per pass.
type Cursor struct {
	bars []barStart
	seen map[float64]bool
}

func NewCursor() *Cursor {
	return &Cursor{seen: make(map[float64]bool)}
}

// Add consumes the next symbol. Note and rest symbols return the positions
// they are played at; the first symbol at a given time wins.
func (c *Cursor) Add(s Symbol) ([]model.RegularPosition, error) {
	switch s.Type {
	case SymbolBar:
		bar := 0
		if s.BarNum > 0 {
			bar = s.BarNum - 1
		}
		c.setBar(barStart{bar: bar, time: s.Time, repeats: len(barRepeatRegex.FindString(s.BarType)) + 1})
		return nil, nil
	case SymbolNote, SymbolRest:
	default:
		return nil, nil
	}

	if c.seen[s.Time] {
		return nil, nil
	}
	c.seen[s.Time] = true

	p, err := SymbolPosition(s)
	if err != nil {
		return nil, err
	}

	bars := make([]barStart, len(c.bars))
	copy(bars, c.bars)
	slices.SortStableFunc(bars, func(a, b barStart) bool { return a.time < b.time })

	// Every repeat before the current bar shifts it by the extra passes.
	relative := 0
	relativeRepeats := 1
	var before []barStart
	for _, b := range bars {
		if b.time <= s.Time {
			relative = b.bar
			relativeRepeats = b.repeats
			before = append(before, b)
		}
	}
	shift := 0
	if len(before) > 0 {
		for _, b := range before[:len(before)-1] {
			shift += b.repeats - 1
		}
	}
	p.Bar = relative + shift

	res := make([]model.RegularPosition, 0, relativeRepeats)
	for i := 0; i < relativeRepeats; i++ {
		rp := p
		rp.Bar += i
		res = append(res, rp)
	}
	return res, nil
}

func (c *Cursor) setBar(b barStart) {
	for i := range c.bars {
		if c.bars[i].bar == b.bar {
			c.bars[i] = b
			return
		}
	}
	c.bars = append(c.bars, b)
}
