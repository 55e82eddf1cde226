// Package lipsync derives approximate mouth-shape timing from reply text.
// The mapping is a per-character heuristic and does not look at the audio.
package lipsync

import (
	"strings"
	"unicode"

	"github.com/satriahrh/arunika/avatar/domain"
)

const (
	vowels       = "aeiou"
	bilabials    = "bpm"
	labiodentals = "fv"
	laterals     = "l"
	rounded      = "o"
)

// Mapper classifies characters into viseme categories
type Mapper struct {
	roundedO bool
}

// Option configures a Mapper
type Option func(*Mapper)

// WithRoundedO checks for 'o' before the generic vowel class so it maps to O instead of A
func WithRoundedO() Option {
	return func(m *Mapper) {
		m.roundedO = true
	}
}

// NewMapper creates a Mapper. Without options 'o' is a plain vowel and O is never produced.
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var defaultMapper = NewMapper()

// Classify maps one character using the default table
func Classify(r rune) domain.VisemeCategory {
	return defaultMapper.Classify(r)
}

// Classify maps one character to its category. First match wins:
// vowels, b/p/m, f/v, l, o, then REST for everything else.
func (m *Mapper) Classify(r rune) domain.VisemeCategory {
	r = unicode.ToLower(r)

	if m.roundedO && strings.ContainsRune(rounded, r) {
		return domain.VisemeO
	}

	switch {
	case strings.ContainsRune(vowels, r):
		return domain.VisemeA
	case strings.ContainsRune(bilabials, r):
		return domain.VisemeB
	case strings.ContainsRune(labiodentals, r):
		return domain.VisemeF
	case strings.ContainsRune(laterals, r):
		return domain.VisemeL
	case strings.ContainsRune(rounded, r):
		// unreachable unless roundedO: 'o' is already a vowel
		return domain.VisemeO
	default:
		return domain.VisemeRest
	}
}
