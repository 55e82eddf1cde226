package lipsync

import (
	"fmt"
	"math"

	"github.com/satriahrh/arunika/avatar/domain"
)

// CueWidth is the fixed duration of one character's cue, in seconds
const CueWidth = 0.1

// Synthesize builds the cue sequence for text with the default mapper
func Synthesize(text string) domain.LipSync {
	return defaultMapper.Synthesize(text)
}

// Synthesize emits one cue per character: character i covers [i*CueWidth, (i+1)*CueWidth).
// Adjacent identical shapes are not merged.
func (m *Mapper) Synthesize(text string) domain.LipSync {
	runes := []rune(text)
	cues := make(domain.LipSync, len(runes))
	for i, r := range runes {
		cues[i] = domain.VisemeCue{
			Value: m.Classify(r),
			Start: float64(i) * CueWidth,
			End:   float64(i+1) * CueWidth,
		}
	}
	return cues
}

// Validate reports whether seq is a well-formed sequence for text
func Validate(seq domain.LipSync, text string) error {
	if n := len([]rune(text)); len(seq) != n {
		return fmt.Errorf("expected %d cues, got %d", n, len(seq))
	}
	if len(seq) == 0 {
		return nil
	}
	if seq[0].Start != 0 {
		return fmt.Errorf("first cue starts at %f", seq[0].Start)
	}
	for i, cue := range seq {
		if math.Abs(cue.End-cue.Start-CueWidth) > 1e-9 {
			return fmt.Errorf("cue %d has width %f", i, cue.End-cue.Start)
		}
		if i > 0 && seq[i-1].End != cue.Start {
			return fmt.Errorf("cue %d starts at %f but previous ends at %f", i, cue.Start, seq[i-1].End)
		}
	}
	return nil
}
