package handleengine

import (
	"github.com/agext/levenshtein"

	"github.com/entativa/eid/internal/store"
)

// defaultSimilarityThreshold matches spec §4.4's default (0.85); a
// production deployment overrides it via config.HandleConfig.
const defaultSimilarityThreshold = 0.85

// Similarity computes normalized Levenshtein similarity over folded
// strings: s = 1 - edit(a, b) / max(|a|, |b|), grounded on manifests
// depending on github.com/agext/levenshtein (jordigilh-kubernaut,
// iota-uz-iota-sdk, jrepp-hermes, gravitational-teleport-plugins).
func Similarity(a, b string) float64 {
	af, bf := Fold(a), Fold(b)
	maxLen := len(af)
	if len(bf) > maxLen {
		maxLen = len(bf)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.Distance(af, bf, nil)
	return 1 - float64(dist)/float64(maxLen)
}

// BestMatch scores candidate against entry's canonical name, its own
// handle, and every alias, returning the maximum similarity (spec §4.4:
// "the winning s is the maximum"). The protected handle itself must be in
// the comparison set — scenario 1 models an entry as
// {name:"Elon Musk", handle:"elonmusk"} and expects a near-miss like
// "elonmusks" to be caught against the handle, which folding the name
// alone cannot produce.
func BestMatch(candidate string, entry store.ProtectedEntry) float64 {
	best := Similarity(candidate, entry.Name)
	if s := Similarity(candidate, entry.HandleLower); s > best {
		best = s
	}
	for _, alias := range entry.Aliases {
		if s := Similarity(candidate, alias); s > best {
			best = s
		}
	}
	return best
}

// ThresholdFor returns entry's similarity threshold, defaulting to
// defaultSimilarityThreshold when unset (zero value).
func ThresholdFor(entry store.ProtectedEntry) float64 {
	if entry.Threshold == 0 {
		return defaultSimilarityThreshold
	}
	return entry.Threshold
}
