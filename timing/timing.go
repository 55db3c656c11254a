// Package timing maps symbolic positions to wall clock seconds.
package timing

import (
	"log"

	"github.com/jsphweid/noted/model"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// TimeKey is a breakpoint of the piecewise linear position to time mapping.
type TimeKey struct {
	Position model.DecimalPosition `json:"position"`
	Seconds  float64               `json:"seconds"`
}

// wholeNoteSeconds is how long frac of a whole note lasts: 60 seconds per
// minute, 4 beats per whole note.
func wholeNoteSeconds(bpm float64, frac model.Rat) float64 {
	return 60 / bpm * 4 * frac.Float64()
}

// CreateTimeKeys builds the time keys from [0, 0] to [barCount, 0]. A
// barCount of zero or less uses the composition's own bar count.
func CreateTimeKeys(c model.Composition, barCount int) []TimeKey {
	if barCount <= 0 {
		barCount = c.BarCount()
	}

	changes := c.SortedBpmChanges()

	var keys []TimeKey
	bpm := c.Bpm
	lastFrac := model.Int(0)
	elapsed := 0.0

	for bar := 0; bar < barCount; bar++ {
		meter := c.BarMeter(bar)
		length := meter.Length()

		keys = append(keys, TimeKey{Position: model.DecimalPosition{Bar: bar, Frac: model.Int(0)}, Seconds: elapsed})

		for len(changes) > 0 && changes[0].Position.BarIndex() == bar {
			change := changes[0]
			changes = changes[1:]

			frac := model.ToDecimal(change.Position).Frac
			if frac.Cmp(length) > 0 {
				log.Printf("[warn] bpm change past the end of bar %d skipped: %vbpm at %s\n", bar, change.Bpm, change.Position)
				continue
			}
			delta := wholeNoteSeconds(bpm, frac.Sub(lastFrac))

			bpm = change.Bpm
			lastFrac = frac
			elapsed += delta

			// Drop the key for the same offset.
			if delta == 0 {
				keys = keys[:len(keys)-1]
			}

			keys = append(keys, TimeKey{Position: model.DecimalPosition{Bar: bar, Frac: frac}, Seconds: elapsed})
		}

		elapsed += wholeNoteSeconds(bpm, length.Sub(lastFrac))
		lastFrac = model.Int(0)

		keys = append(keys, TimeKey{Position: model.DecimalPosition{Bar: bar, Frac: length}, Seconds: elapsed})
	}

	// The next bar starts when the last one ends, so the end of the
	// composition resolves with a plain key lookup.
	keys = append(keys, TimeKey{Position: model.DecimalPosition{Bar: barCount, Frac: model.Int(0)}, Seconds: elapsed})

	return keys
}

// PositionTime returns the time of p, interpolating linearly between the
// keys of its bar.
func PositionTime(p model.Position, keys []TimeKey) (float64, error) {
	d := model.ToDecimal(p)

	for _, k := range keys {
		if model.CompareDecimal(d, k.Position) == 0 {
			return k.Seconds, nil
		}
	}

	var barKeys []TimeKey
	for _, k := range keys {
		if k.Position.Bar == d.Bar {
			barKeys = append(barKeys, k)
		}
	}
	sortKeys(barKeys)

	if len(barKeys) < 2 {
		return 0, errors.Wrapf(model.ErrOutOfBounds, "position %s is out of bounds", p)
	}

	var first, second *TimeKey
	for i := range barKeys {
		if barKeys[i].Position.Frac.Cmp(d.Frac) > 0 {
			second = &barKeys[i]
			break
		}
		first = &barKeys[i]
	}

	if first == nil {
		return 0, errors.Wrapf(model.ErrOutOfBounds, "position %s is out of meter bounds", p)
	}
	if second == nil {
		second = &barKeys[len(barKeys)-1]
	}

	if first.Position.Frac.Equal(d.Frac) || first.Position.Frac.Equal(second.Position.Frac) {
		return first.Seconds, nil
	}

	ratio := d.Frac.Sub(first.Position.Frac).Div(second.Position.Frac.Sub(first.Position.Frac))
	return first.Seconds + ratio.Float64()*(second.Seconds-first.Seconds), nil
}

func sortKeys(keys []TimeKey) {
	slices.SortStableFunc(keys, func(a, b TimeKey) bool {
		return model.CompareDecimal(a.Position, b.Position) < 0
	})
}
