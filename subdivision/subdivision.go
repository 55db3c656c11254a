// Package subdivision finds one grid that can hold a set of positions
// authored at different subdivisions.
package subdivision

import (
	"github.com/jsphweid/noted/model"
	"github.com/jsphweid/noted/util"
)

// FindCommon returns the coarsest (measure, tuplet) every position can be
// rescaled onto without rounding. ok is false for an empty input or when no
// grid fits.
func FindCommon(positions []model.Position) (measure model.Measure, tuplet model.Tuplet, ok bool) {
	if len(positions) == 0 {
		return 0, model.NoTuplet, false
	}

	fracs := make([]model.Rat, len(positions))
	for i, p := range positions {
		fracs[i] = model.ToDecimal(p).Frac
	}

	// Plain measures first, so tuplet free notation wins whenever it can.
	for _, m := range model.Measures {
		if allInt(fracs, model.Int(int64(m))) {
			return m, model.NoTuplet, true
		}
	}

	// Offsets over the largest measure.
	offsets := make([]model.Rat, len(fracs))
	for i, f := range fracs {
		offsets[i] = f.MulInt(int64(model.MaxMeasure))
	}

	multipliers := offsetMultipliers(positions)

	found := false
	for _, t := range append([]model.Tuplet{model.NoTuplet}, model.Tuplets...) {
		if !allInt(offsets, t.Multiplier()) {
			continue
		}

		scaled := make([]int64, len(offsets))
		for i, o := range offsets {
			scaled[i] = o.MulInt(int64(t.P())).Int64()
		}
		divisor, hasDivisor := util.GCD(util.Unique(scaled)...)
		if !hasDivisor {
			continue
		}

		// A single offset can leave the divisor larger than needed
		// (e.g. 3/16*7:4), so retry with each offset as a multiplier.
		var candidate model.Measure
		for _, om := range multipliers {
			value := model.NewRat(int64(model.MaxMeasure)*om*int64(t.Q()), divisor)
			if model.IsMeasureRat(value) {
				candidate = model.Measure(value.Int64())
				break
			}
		}
		if candidate == 0 {
			continue
		}

		// Never trade a coarser grid for a finer one.
		if found && measure < candidate {
			continue
		}
		measure, tuplet, found = candidate, t, true

		if t != model.NoTuplet && usesTuplet(positions, t) {
			break
		}
	}

	return measure, tuplet, found
}

func allInt(values []model.Rat, factor model.Rat) bool {
	for _, v := range values {
		if !v.Mul(factor).IsInt() {
			return false
		}
	}
	return true
}

func offsetMultipliers(positions []model.Position) []int64 {
	res := []int64{1}
	for _, p := range positions {
		if rp, ok := p.(model.RegularPosition); ok && rp.Offset != 0 {
			res = append(res, int64(rp.Offset))
		}
	}
	return append(res[:1], util.Unique(res[1:])...)
}

func usesTuplet(positions []model.Position, t model.Tuplet) bool {
	for _, p := range positions {
		if rp, ok := p.(model.RegularPosition); ok && rp.Tuplet == t {
			return true
		}
	}
	return false
}
