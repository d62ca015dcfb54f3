package config

import (
	"github.com/agnivade/levenshtein"
)

// maxSuggestionDistance is the largest edit distance still offered as a
// "did you mean" suggestion.
const maxSuggestionDistance = 3

// Keys returns every settable configuration key path.
func Keys() []string {
	return []string{
		"home",
		"network",
		"app.name",
		"probe.max_attempts",
		"probe.interval_ms",
		"probe.overall_timeout_ms",
		"storage.address_file",
		"output.default_format",
		"output.color",
		"output.verbose",
		"logging.level",
		"logging.file",
	}
}

// Suggest returns the known key closest to the given one, or "" when
// nothing is close enough to be a plausible typo.
func Suggest(key string) string {
	best := ""
	bestDist := maxSuggestionDistance + 1
	for _, candidate := range Keys() {
		dist := levenshtein.ComputeDistance(key, candidate)
		if dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	return best
}
