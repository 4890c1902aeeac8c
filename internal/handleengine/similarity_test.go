package handleengine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entativa/eid/internal/store"
)

func TestSimilarityIdenticalStringsScoreOne(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("elonmusk", "ElonMusk"))
}

func TestSimilarityUnrelatedStringsScoreLow(t *testing.T) {
	assert.Less(t, Similarity("elonmusk", "zzzzzzzzzzzz"), 0.3)
}

func TestSimilarityBothEmptyScoresOne(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
}

func TestSimilarityIsSymmetric(t *testing.T) {
	a, b := "elonmusk", "elonmuskk"
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

func TestBestMatchPrefersHighestScoringAlias(t *testing.T) {
	entry := store.ProtectedEntry{
		Name:    "World Health Organization",
		Aliases: store.StringArray{"who", "worldhealthorg"},
	}
	// "worldhealthorg" alias should score far higher than the full name.
	score := BestMatch("worldhealthorg", entry)
	assert.Equal(t, 1.0, score)
}

func TestBestMatchComparesAgainstTheHandleItself(t *testing.T) {
	entry := store.ProtectedEntry{
		Name:        "Elon Musk",
		HandleLower: "elonmusk",
	}
	score := BestMatch("elonmusks", entry)
	assert.InDelta(t, 0.888, score, 0.001)
	assert.GreaterOrEqual(t, score, ThresholdFor(entry))
}

func TestThresholdForDefaultsWhenUnset(t *testing.T) {
	assert.Equal(t, defaultSimilarityThreshold, ThresholdFor(store.ProtectedEntry{}))
}

func TestThresholdForUsesEntryValueWhenSet(t *testing.T) {
	assert.Equal(t, 0.95, ThresholdFor(store.ProtectedEntry{Threshold: 0.95}))
}
