package domain

// VisemeCategory is a coarse mouth shape, not a real phoneme
type VisemeCategory string

const (
	VisemeRest VisemeCategory = "REST" // closed mouth
	VisemeA    VisemeCategory = "A"    // wide open
	VisemeB    VisemeCategory = "B"    // lips pressed, b/p/m
	VisemeF    VisemeCategory = "F"    // lip on teeth, f/v
	VisemeL    VisemeCategory = "L"    // tongue up
	VisemeO    VisemeCategory = "O"    // rounded
)

// VisemeCue is one timed mouth shape; Start and End are in seconds
type VisemeCue struct {
	Value VisemeCategory `json:"value"`
	Start float64        `json:"start"`
	End   float64        `json:"end"`
}

// LipSync is the ordered cue sequence for one message
type LipSync []VisemeCue
