// Package abc engraves compositions as ABC notation text for abc2svg.
package abc

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jsphweid/noted/codec"
	"github.com/jsphweid/noted/constants"
	"github.com/jsphweid/noted/model"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

const (
	ghost  = "!ghost!"
	accent = "!^accent!"

	DefaultAnnotationFont     = "sans-serif"
	DefaultAnnotationFontSize = 12
	DefaultPageWidth          = 500
	DefaultHighlightColor     = "#97d7ff"
)

// Staff pitches of the drum kit.
const (
	noteHihatOnLine  = "f"
	noteHihatClosed  = "g"
	noteHihatOpen    = "g,,"
	noteHihatPedal   = "d,"
	noteSnare        = "c"
	noteSnareOnLine  = "B"
	noteSnareBelow   = "A"
	noteSideStick    = "c,,"
	noteBassdrum     = "F"
	noteBassdrumLine = "E"
	noteHighTom      = "e"
	noteLowTom       = "d"
	noteFloorTom     = "A"
	noteRide         = "f"
	noteRideBell     = "f,,"
	noteCrash        = "a"
)

const (
	headX        = "Xhead"
	headTriangle = "Trihead"
	headCircleX  = "CircleXhead"
)

const lowerVoiceTuplets = "%%tuplets 2 0 2 2     % Always square brackets with ratio value on bottom"

type StaffStyle string

const (
	StaffFull            StaffStyle = "full"
	StaffOneLine         StaffStyle = "one_line"
	StaffOneLineOffset   StaffStyle = "one_line_offset"
	StaffThreeLine       StaffStyle = "three_line"
	StaffThreeLineOffset StaffStyle = "three_line_offset"
)

type Layout string

const (
	LayoutFull    Layout = "full"
	LayoutNormal  Layout = "normal"
	LayoutMinimal Layout = "minimal"
)

type drumMapping struct {
	value string
	note  string
	heads string
	print string
}

type noteMap []drumMapping

func (m noteMap) get(value string) (drumMapping, bool) {
	for _, e := range m {
		if e.value == value {
			return e, true
		}
	}
	return drumMapping{}, false
}

var noteMaps = map[StaffStyle]noteMap{
	StaffFull: {
		{value: constants.HihatClosed, note: noteHihatClosed, heads: headX},
		{value: constants.HihatOpen, note: noteHihatOpen, heads: headCircleX, print: noteHihatClosed},
		{value: constants.HihatPedal, note: noteHihatPedal, heads: headX},
		{value: constants.Snare, note: noteSnare},
		{value: constants.SideStick, note: noteSideStick, heads: headX, print: noteSnare},
		{value: constants.Bassdrum, note: noteBassdrum},
		{value: constants.HighTom, note: noteHighTom},
		{value: constants.LowTom, note: noteLowTom},
		{value: constants.FloorTom, note: noteFloorTom},
		{value: constants.Ride, note: noteRide, heads: headX},
		{value: constants.RideBell, note: noteRideBell, heads: headTriangle, print: noteRide},
		{value: constants.Crash, note: noteCrash, heads: headX},
	},
	StaffOneLine: {
		{value: constants.Snare, note: noteSnareOnLine},
	},
	StaffOneLineOffset: {
		{value: constants.Snare, note: noteSnare},
		{value: constants.Bassdrum, note: noteSnareBelow},
	},
	StaffThreeLine: {
		{value: constants.HihatClosed, note: noteHihatOnLine, heads: headX},
		{value: constants.HihatOpen, note: noteHihatOpen, heads: headCircleX, print: noteHihatOnLine},
		{value: constants.Snare, note: noteSnareOnLine},
		{value: constants.Bassdrum, note: noteBassdrumLine},
	},
	StaffThreeLineOffset: {
		{value: constants.HihatClosed, note: noteHihatClosed, heads: headX},
		{value: constants.HihatOpen, note: noteHihatOpen, heads: headCircleX, print: noteHihatClosed},
		{value: constants.Snare, note: noteSnare},
		{value: constants.Bassdrum, note: noteBassdrum},
	},
}

var staffLines = map[StaffStyle]string{
	StaffFull:            "5",
	StaffOneLine:         "1",
	StaffOneLineOffset:   "1",
	StaffThreeLine:       "|.|.|",
	StaffThreeLineOffset: "|.|.|",
}

var lowerNotes = []string{constants.HihatPedal, constants.Bassdrum}

type Font struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type Options struct {
	// StartBar and EndBar limit the engraved bars to [StartBar, EndBar). An
	// EndBar of zero means through the last bar.
	StartBar int `json:"startBar"`
	EndBar   int `json:"endBar"`

	UseLowerVoice  bool       `json:"useLowerVoice"`
	PageWidth      int        `json:"pageWidth"`
	PageScale      float64    `json:"pageScale"`
	AnnotationFont Font       `json:"annotationFont"`
	HighlightColor string     `json:"highlightColor"`
	SingleLine     bool       `json:"singleLine"`
	Stretch        bool       `json:"stretch"`
	StaffStyle     StaffStyle `json:"staffStyle"`
	Layout         Layout     `json:"layout"`
	DetectRepeats  bool       `json:"detectRepeats"`

	// ID is written to the %%fullsvg directive. A random one is used when
	// empty.
	ID string `json:"id"`
}

func (o Options) withDefaults(c model.Composition) Options {
	if o.EndBar <= 0 {
		o.EndBar = c.BarCount()
	}
	if o.PageWidth == 0 {
		o.PageWidth = DefaultPageWidth
	}
	if o.PageScale == 0 {
		o.PageScale = 1
	}
	if o.AnnotationFont.Name == "" {
		o.AnnotationFont.Name = DefaultAnnotationFont
	}
	if o.AnnotationFont.Size == 0 {
		o.AnnotationFont.Size = DefaultAnnotationFontSize
	}
	if o.HighlightColor == "" {
		o.HighlightColor = DefaultHighlightColor
	}
	if _, ok := noteMaps[o.StaffStyle]; !ok {
		o.StaffStyle = StaffFull
	}
	if o.ID == "" {
		o.ID = strings.ReplaceAll(uuid.NewString(), "-", "")[:15]
	}
	return o
}

func renderAnnotation(n model.Note, font Font) string {
	smaller, larger := 1.0, 1.0
	if count := n.CountAttribute(constants.AttrAnnotSmaller); count > 0 {
		smaller = float64(count) * 0.75
	}
	if count := n.CountAttribute(constants.AttrAnnotLarger); count > 0 {
		larger = float64(count) * 1.25
	}
	size := int(float64(font.Size) * smaller * larger)

	box := "nobox"
	if n.HasAttribute(constants.AttrAnnotBorder) {
		box = "box"
	}
	placement := "^"
	if n.HasAttribute(constants.AttrAnnotBelow) {
		placement = "_"
	}

	return fmt.Sprintf("\n%%%%annotationfont * %d %s\n\"%s%s\"", size, box, placement, n.Value)
}

// optimizeDirectives drops %% directives that are overridden by the next
// line or repeat the value already in effect.
func optimizeDirectives(input string) string {
	last := make(map[string]string)
	lines := strings.Split(strings.TrimSpace(input), "\n")

	var res []string
	for i, l := range lines {
		if !strings.HasPrefix(l, "%%") {
			res = append(res, l)
			continue
		}

		directive := strings.SplitN(l, " ", 2)[0]
		value := strings.TrimSpace(strings.Replace(l, directive, "", 1))

		if i+1 < len(lines) && strings.HasPrefix(lines[i+1], directive) {
			continue
		}
		if v, ok := last[directive]; ok && v == value {
			continue
		}
		last[directive] = value
		res = append(res, l)
	}
	return strings.Join(res, "\n")
}

var (
	barStartRegex     = regexp.MustCompile(`^(\|:*)\n`)
	firstBarlineRegex = regexp.MustCompile(`^\|([^:])`)
	repeatEndRegex    = regexp.MustCompile(`:+$`)
)

func markRepeat(bar string) string {
	return barStartRegex.ReplaceAllString(bar, "${1}:\n") + ":"
}

func samePosition(a, b model.Note) bool {
	return model.ComparePositions(a.Position, b.Position) == 0
}

type annotation struct {
	note     model.Note
	merge    bool
	rendered bool
}

// barRenderer engraves one bar into both voices.
type barRenderer struct {
	noteMap     noteMap
	font        Font
	upper       []model.Note
	lower       []model.Note
	annotations []*annotation
}

func newBarRenderer(notes []model.Note, opts Options) *barRenderer {
	r := &barRenderer{noteMap: noteMaps[opts.StaffStyle], font: opts.AnnotationFont}

	var lowerNames []string
	if opts.UseLowerVoice {
		lowerNames = lowerNotes
	}

	for _, n := range notes {
		if n.Type != "" || !constants.IsDrumNote(n.Value) {
			continue
		}
		if slices.Contains(lowerNames, n.Value) {
			r.lower = append(r.lower, n)
		} else {
			r.upper = append(r.upper, n)
		}
	}

	hits := append(append([]model.Note{}, r.upper...), r.lower...)
	for _, n := range notes {
		if n.Type != constants.TypeAnnot {
			continue
		}
		a := &annotation{note: n}
		for _, o := range hits {
			if samePosition(o, n) {
				a.merge = true
				break
			}
		}
		r.annotations = append(r.annotations, a)
		// Annotations without a note of their own go to the upper voice.
		if !a.merge {
			r.upper = append(r.upper, n)
		}
	}

	return r
}

func (r *barRenderer) resolve(n model.Note) (string, bool) {
	if n.Type == constants.TypeAnnot {
		return renderAnnotation(n, r.font) + rest, true
	}

	mapping, ok := r.noteMap.get(n.Value)
	if !ok {
		log.Printf("[warn] couldn't map note value: %s", codec.NoteToString(n))
		return "", false
	}

	res := mapping.note
	if n.HasAttribute(constants.AttrAccent) {
		res = accent + res
	}
	if n.HasAttribute(constants.AttrGhost) {
		res = ghost + res
	}
	if n.HasAttribute(constants.AttrFlam) {
		res = "{" + mapping.note + "}" + res
	}
	if n.HasAttribute(constants.AttrDrag) {
		res = "{" + mapping.note + mapping.note + "}" + res
	}

	for _, a := range r.annotations {
		if a.merge && !a.rendered && samePosition(n, a.note) {
			res = renderAnnotation(a.note, r.font) + res
			a.rendered = true
		}
	}

	return res, true
}

// voice resolves only the notes that belong to one voice.
func (r *barRenderer) voice(notes []model.Note) NoteResolver {
	return ResolverFunc(func(n model.Note) (string, bool) {
		for _, v := range notes {
			if v.Value == n.Value && samePosition(v, n) {
				return r.resolve(n)
			}
		}
		return "", false
	})
}

func partIndex(p model.Position, partLength model.Rat) int {
	q := model.ToDecimal(p).Frac.Div(partLength)
	return int(q.Num() / q.Den())
}

func engravable(m model.Meter) bool {
	return m.Beats.IsInt() && m.Beats.Sign() > 0
}

// Render engraves c as an ABC document with an upper and a lower voice.
func Render(c model.Composition, opts Options) (string, error) {
	opts = opts.withDefaults(c)

	if !engravable(c.Meter) {
		return "", errors.Wrapf(model.ErrUnsupportedMeter, "only meters with a positive whole number of beats are supported: %s", c.Meter)
	}

	startMeter := c.BarMeter(opts.StartBar)
	startBpm := c.PositionBpm(model.BarPosition{Bar: opts.StartBar})

	var upper, lower []string
	meter := startMeter
	bpm := startBpm
	barKey := ""
	hasBarKey := false

	for i := opts.StartBar; i < opts.EndBar; i++ {
		notes := c.BarNotes(i)

		barMeter := c.BarMeter(i)
		if !engravable(barMeter) {
			return "", errors.Wrapf(model.ErrUnsupportedMeter, "only meters with a positive whole number of beats are supported: %s at bar %d", barMeter, i)
		}
		meterChanged := !barMeter.Equal(meter)
		meter = barMeter

		beats := int(meter.Beats.Int64())
		barBpm := c.PositionBpm(model.RegularPosition{Bar: i, Offset: beats, Measure: meter.Measure})
		bpmChanged := barBpm != bpm
		bpm = barBpm

		for _, ch := range c.BpmChanges {
			if _, ok := ch.Position.(model.RegularPosition); ok && ch.Position.BarIndex() == i {
				log.Printf("[warn] only straight bar positions (without offset) supported for bpm changes: %s", codec.BpmChangeToString(ch))
			}
		}

		if opts.DetectRepeats {
			key := codec.BarKey(c, i, true)
			if hasBarKey && key == barKey {
				upper[len(upper)-1] = markRepeat(upper[len(upper)-1])
				lower[len(lower)-1] = markRepeat(lower[len(lower)-1])
				continue
			}
			barKey = key
			hasBarKey = true
		}

		r := newBarRenderer(notes, opts)

		barHeader := "|\n"
		if meterChanged {
			barHeader += "M:" + meter.String() + "\n"
		}
		if bpmChanged {
			barHeader += "Q:1/4=" + codec.FormatBpm(bpm) + "\n"
		}
		upperBar := barHeader
		lowerBar := barHeader

		parts := meter.Parts()
		partSize := beats / parts
		partLength := meter.PartSize(1)
		for j := 0; j < parts; j++ {
			var partNotes []model.Note
			for _, n := range append(append([]model.Note{}, r.upper...), r.lower...) {
				if partIndex(n.Position, partLength) == j {
					partNotes = append(partNotes, n)
				}
			}

			u, err := BuildBar(partNotes, partSize, partSize*j, meter.Measure, r.voice(r.upper))
			if err != nil {
				return "", errors.Wrapf(err, "bar %d", i)
			}
			l, err := BuildBar(partNotes, partSize, partSize*j, meter.Measure, r.voice(r.lower))
			if err != nil {
				return "", errors.Wrapf(err, "bar %d", i)
			}
			upperBar += u
			lowerBar += l
		}

		upper = append(upper, upperBar)
		lower = append(lower, lowerBar)
	}

	if len(upper) > 0 {
		upper[0] = firstBarlineRegex.ReplaceAllString(upper[0], "${1}")
		lower[0] = firstBarlineRegex.ReplaceAllString(lower[0], "${1}")
	}

	for i := range upper {
		if repeat := len(repeatEndRegex.FindString(upper[i])) + 1; repeat > 1 {
			upper[i] = barStartRegex.ReplaceAllString(upper[i], fmt.Sprintf("${1}\"Play %dx\"\n", repeat))
		}
	}

	return header(opts, startMeter, startBpm) +
		"V:upper stem=up\n" +
		"%%voicemap drum\n" +
		voiceBody(upper) + "\n" +
		"V:lower stem=down\n" +
		"%%voicemap drum\n" +
		lowerVoiceTuplets + "\n" +
		voiceBody(lower) + "\n", nil
}

func voiceBody(bars []string) string {
	body := strings.Join(bars, "")
	body = strings.ReplaceAll(body, "\n\n", "\n")
	body = strings.ReplaceAll(body, ":|:", ":|[|:")
	return optimizeDirectives(body) + "|"
}

func boolFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func header(opts Options, meter model.Meter, bpm float64) string {
	hideFields := "TQ"
	clef := "perc"
	switch opts.Layout {
	case LayoutFull:
		hideFields = "T"
	case LayoutMinimal:
		hideFields = "TCOPQwWNHRBDFSZM"
		clef = "none"
	}

	var maps []string
	for _, e := range noteMaps[opts.StaffStyle] {
		heads := ""
		if e.heads != "" {
			heads = "heads=" + e.heads
		}
		printed := e.print
		if printed == "" {
			printed = e.note
		}
		maps = append(maps, fmt.Sprintf("%%%%map drum %s %s print=%s", e.note, heads, printed))
	}

	lines := []string{
		"",
		"%abc",
		"%%fullsvg " + opts.ID,
		"%%pagewidth " + strconv.Itoa(opts.PageWidth),
		"%%leftmargin 0        % No margins",
		"%%rightmargin 0       % No margins",
		"%%topmargin 0         % No margins",
		"%%botmargin 0         % No margins",
		"%%topspace 0          % No margins between pages",
		"%%maxshrink 0         % Do not shrink notes",
		"%%linewarn 0",
		"%%singleline " + boolFlag(opts.SingleLine) + " % Render all in single line",
		"%%stretchlast " + boolFlag(opts.Stretch) + " % Stretch last bar to fit the page width",
		"%%flatbeams 1         % Flat beam slopes for grace notes",
		"%%beamslope 0         % Flat beam slopes",
		"%%tuplets 2 0 2 1     % Always square brackets with ratio value on top",
		"%%equalbars 1         % Same bar width on different lines",
		"%%notespacingfactor 2 % Spacing between notes depends on their duration",
		"%%linebreak <none>",
		fmt.Sprintf("%%%%annotationfont %s %d", opts.AnnotationFont.Name, opts.AnnotationFont.Size),
		"%%pagescale " + strconv.FormatFloat(opts.PageScale, 'f', -1, 64),
		"%%beginsvg",
		"<style>",
		"  .position-cursor {",
		"    fill: transparent;",
		"  }",
		"  .position-cursor.highlight {",
		"    fill: " + opts.HighlightColor + " !important;",
		"  }",
		"</style>",
		"<defs>",
		`  <path id="` + headX + `" d="m-3,-3 l6,6 m0,-6 l-6,6" class="stroke" style="stroke-width:1.2"/>`,
		`  <path id="` + headTriangle + `" d="m-3,2 l 6,0 l-3,-6 l-3,6 l6,0" class="stroke" style="stroke-width:1.2"/>`,
		`  <path id="` + headCircleX + `" d="m-3,-3 l6,6 m0,-6 l-6,6 m3,-3 m5,0 a5,5 0 1 0 -10,0 a 3,3 0 1 0 10,0" class="stroke" style="stroke-width:1.2"/>`,
		`  <g id="GhostDeco">`,
		`    <text dx="-8" dy="4" font-size="14px" font-family="serif">(</text>`,
		`    <text dx="3" dy="4" font-size="14px" font-family="serif">)</text>`,
		"  </g>",
		"</defs>",
		"%%endsvg",
		"%%deco ghost 3 GhostDeco 0 0 0",
	}
	lines = append(lines, maps...)
	lines = append(lines,
		"%%stafflines "+staffLines[opts.StaffStyle],
		"%%writefields "+hideFields+" false",
		"X:",
		"T:",
		"M:"+meter.String(),
		"L:1/1",
		"K:C clef="+clef,
		"Q:1/4="+codec.FormatBpm(bpm),
		"%%score (upper lower)",
	)
	return strings.Join(lines, "\n") + "\n"
}
