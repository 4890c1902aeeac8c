// Package handleengine is the handle allocation and anti-impersonation
// component (C4). The teacher repo has no handle concept to ground this
// on; it is new code authored in the teacher's terse logic-struct style,
// directly implementing spec §4.4's validation pipeline.
package handleengine

import (
	"regexp"
	"strings"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

const (
	MinLen = 3
	MaxLen = 30
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{1,28}[A-Za-z0-9]$`)

var separators = map[byte]bool{'.': true, '-': true, '_': true}

// CheckFormat enforces spec §4.4's length/regex/no-double-separator rules.
func CheckFormat(h string) error {
	if len(h) < MinLen || len(h) > MaxLen {
		return errs.Newf(errs.InvalidFormat, "handle must be between %d and %d characters", MinLen, MaxLen)
	}
	if !handlePattern.MatchString(h) {
		return errs.New(errs.InvalidFormat, "handle contains invalid characters or placement")
	}
	for i := 1; i < len(h); i++ {
		if separators[h[i]] && separators[h[i-1]] {
			return errs.New(errs.InvalidFormat, "handle may not contain consecutive separators")
		}
	}
	return nil
}

// disallowedSubstrings are system-reserved words that make a handle
// inappropriate regardless of exact-match reservation (spec §4.4 step 5).
var disallowedSubstrings = []string{
	"admin", "root", "support", "moderator", "official-staff", "security",
}

// CheckModeration rejects handles containing a disallowed substring.
func CheckModeration(handleLower string) error {
	for _, word := range disallowedSubstrings {
		if strings.Contains(handleLower, word) {
			return errs.Newf(errs.Inappropriate, "handle contains disallowed term %q", word)
		}
	}
	return nil
}

// Fold normalizes a handle for lookups/comparisons (spec §4.4: "all
// lookups use the folded handle_lower").
func Fold(h string) string {
	return store.Normalize(h)
}
