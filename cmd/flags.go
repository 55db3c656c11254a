package cmd

import (
	"time"

	"github.com/hako/durafmt"
	"github.com/spf13/pflag"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

func addBarRangeFlags(flags *pflag.FlagSet, start, end *int) {
	flags.IntVar(start, "start", 0, "first bar")
	flags.IntVar(end, "end", 0, "bar to stop before, 0 for through the last bar")
}

func formatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Millisecond)
	if d == 0 {
		return "0s"
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}
