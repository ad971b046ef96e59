package nlu

import (
	"strings"
	"time"
)

// Normalizer rewrites relative dates, clock times, and person counts into
// their canonical MM/DD, HH:MM, and N人 forms before entity extraction.
// Now is injectable so tests can pin the reference date.
type Normalizer struct {
	Now func() time.Time
}

// NewNormalizer returns a normalizer using the wall clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

// Apply rewrites every recognized expression in text with its normalized
// form. A trailing space keeps the rewritten value token-separated for the
// morphological analyzer.
func (n *Normalizer) Apply(text string) string {
	for orig, norm := range n.NormalizeDates(text) {
		text = strings.ReplaceAll(text, orig, norm+" ")
	}
	for orig, norm := range n.NormalizeTimes(text) {
		text = strings.ReplaceAll(text, orig, norm+" ")
	}
	for orig, norm := range n.NormalizePersonCounts(text) {
		text = strings.ReplaceAll(text, orig, norm+" ")
	}
	return text
}
