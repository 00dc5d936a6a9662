package intake

import "strings"

type Tone string

const (
	ToneDistress Tone = "distress"
	ToneNeutral  Tone = "neutral"
)

var distressMarkers = []string{"confused", "worried", "scared", "anxious", "don't know"}

// DetectTone expects already lowercased text. Markers match as plain
// substrings.
func DetectTone(text string) Tone {
	for _, m := range distressMarkers {
		if strings.Contains(text, m) {
			return ToneDistress
		}
	}
	return ToneNeutral
}
