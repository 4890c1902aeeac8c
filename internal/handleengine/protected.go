package handleengine

import (
	"context"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// ProtectedMatch is the winning protected-entry comparison result (spec
// §4.4 step 4: "attach the winning entry plus score").
type ProtectedMatch struct {
	Entry store.ProtectedEntry
	Score float64
}

// CheckProtected scores candidate against every known protected entry,
// rejecting with similar_to_protected if any entry's threshold is met.
func CheckProtected(ctx context.Context, repo *store.HandleRepo, candidate string) (*ProtectedMatch, error) {
	entries, err := repo.ProtectedCandidates(ctx)
	if err != nil {
		return nil, err
	}
	var winner *ProtectedMatch
	for _, entry := range entries {
		score := BestMatch(candidate, entry)
		if score >= ThresholdFor(entry) {
			if winner == nil || score > winner.Score {
				winner = &ProtectedMatch{Entry: entry, Score: score}
			}
		}
	}
	if winner != nil {
		return winner, errs.Newf(errs.SimilarToProtected, "handle too similar to protected entry %q", winner.Entry.Name).
			WithDetail("entry_id", winner.Entry.ID).
			WithDetail("score", winner.Score)
	}
	return nil, nil
}
