package handleengine

import (
	"context"
	"fmt"
	"time"
)

// Generate produces the deterministic candidate list from spec §4.4:
// append {1..9}, append current year, append "_", prepend "_", append
// "official"/"real".
func Generate(base string) []string {
	year := time.Now().UTC().Year()
	out := make([]string, 0, 14)
	for i := 1; i <= 9; i++ {
		out = append(out, fmt.Sprintf("%s%d", base, i))
	}
	out = append(out,
		fmt.Sprintf("%s%d", base, year),
		base+"_",
		"_"+base,
		base+"official",
		base+"real",
	)
	return out
}

// Suggest filters Generate's output through check, returning the first
// five available handles.
func Suggest(ctx context.Context, base string, check func(ctx context.Context, candidate string) bool) []string {
	var result []string
	for _, candidate := range Generate(base) {
		if len(result) >= 5 {
			break
		}
		if check(ctx, candidate) {
			result = append(result, candidate)
		}
	}
	return result
}
