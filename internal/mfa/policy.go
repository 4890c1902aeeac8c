package mfa

import (
	"github.com/entativa/eid/internal/store"
)

// Policy decides which MFA methods a given purpose may use and what trust
// level satisfies it, per spec §4.5 ("priority", "trust_level" fields).
type Policy struct {
	MinTrustLevel map[store.ChallengePurpose]int
}

// DefaultPolicy matches the teacher's flat, no-config approach generalized
// to a small static map, since the teacher has no MFA concept to ground
// this on directly.
var DefaultPolicy = Policy{
	MinTrustLevel: map[store.ChallengePurpose]int{
		store.PurposeLogin:          1,
		store.PurposePasswordChange: 2,
		store.PurposeSensitiveOp:    3,
	},
}

// Satisfies reports whether a method of the given trust level can serve purpose.
func (p Policy) Satisfies(purpose store.ChallengePurpose, methodTrustLevel int) bool {
	required, ok := p.MinTrustLevel[purpose]
	if !ok {
		return true
	}
	return methodTrustLevel >= required
}

// SelectPrimary picks the highest-priority verified method from methods
// that satisfies purpose, or nil if none qualify.
func SelectPrimary(methods []store.MFAMethod, purpose store.ChallengePurpose, policy Policy) *store.MFAMethod {
	var best *store.MFAMethod
	for i := range methods {
		m := &methods[i]
		if !m.IsVerified || m.LockedUntil != nil {
			continue
		}
		if !policy.Satisfies(purpose, m.TrustLevel) {
			continue
		}
		if best == nil || m.Priority < best.Priority {
			best = m
		}
	}
	return best
}
