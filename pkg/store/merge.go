package store

import "github.com/aretw0/redline/pkg/core"

// Merge is the poll merge policy, kept as a pure function so the policy is
// testable in isolation. While a gesture is active the fresh server set is
// dropped wholesale: a refresh must never clobber an in-flight optimistic
// mutation. Once idle, the server set replaces the local one; the backend
// is the source of truth between gestures.
func Merge(current, fresh []core.Annotation, gestureActive bool) (next []core.Annotation, accepted bool) {
	if gestureActive {
		return current, false
	}
	return fresh, true
}
