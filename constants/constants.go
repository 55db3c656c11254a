package constants

import (
	"os"

	"github.com/jsphweid/noted/model"
)

const (
	AttrFlam   = "flam"
	AttrDrag   = "drag"
	AttrGhost  = "ghost"
	AttrAccent = "accent"

	AttrAnnotAbove   = "above"
	AttrAnnotBelow   = "below"
	AttrAnnotSmaller = "smaller"
	AttrAnnotLarger  = "larger"
	AttrAnnotBorder  = "border"
)

// TypeAnnot marks a note that is a text annotation rather than a hit.
const TypeAnnot = "annot"

const (
	HihatClosed = "hhc"
	HihatOpen   = "hho"
	HihatPedal  = "hhp"
	Snare       = "sn"
	SideStick   = "ss"
	Bassdrum    = "bd"
	HighTom     = "ht"
	LowTom      = "lt"
	FloorTom    = "ft"
	Ride        = "rd"
	RideBell    = "rb"
	Crash       = "cr"
	Cowbell     = "cb"
)

var DrumNotes = []string{
	HihatClosed, HihatOpen, HihatPedal, Snare, SideStick, Bassdrum,
	HighTom, LowTom, FloorTom, Ride, RideBell, Crash, Cowbell,
}

func IsDrumNote(v string) bool {
	for _, d := range DrumNotes {
		if d == v {
			return true
		}
	}
	return false
}

const (
	DefaultBpm                        = 120
	DefaultMeterBeats                 = 4
	DefaultMeterMeasure model.Measure = 4
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetPort() string {
	return getEnv("NOTED_PORT", "8080")
}

func GetTable() string {
	return getEnv("NOTED_TABLE", "noted-compositions")
}

// GetDynamoEndpoint is empty unless a local DynamoDB is configured.
func GetDynamoEndpoint() string {
	return os.Getenv("NOTED_DYNAMO_ENDPOINT")
}

func GetRegion() string {
	return getEnv("NOTED_REGION", "us-east-1")
}

func GetOutDir() string {
	return getEnv("NOTED_OUT", "./out")
}
