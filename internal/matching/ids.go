// Package matching turns swipes and answered match requests into matches.
//
// Every path that creates a match goes through Former.FormMatch. Uniqueness
// of a pair is guaranteed by the store's unique index on the canonical
// (user1_id, user2_id) pair, not by in-process locking, so any number of
// server replicas can run these services side by side.
package matching

import (
	"github.com/google/uuid"

	svcErr "github.com/oggyb/muzz-matchmaking/internal/errors"
)

// Canonical orders two user ids so the lower one comes first. It is the only
// ordering used for pairs anywhere in the module; a second ordering would let
// two callers write two rows for the same pair.
func Canonical(a, b string) (user1, user2 string) {
	if b < a {
		return b, a
	}
	return a, b
}

// ValidateUserID checks that id is a canonical UUID string.
func ValidateUserID(field, id string) error {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return svcErr.Validation("%s must be a lowercase UUID, got %q", field, id)
	}
	return nil
}

// validatePair checks both ids and rejects a user paired with themselves.
func validatePair(a, b string) error {
	if err := ValidateUserID("user_a", a); err != nil {
		return err
	}
	if err := ValidateUserID("user_b", b); err != nil {
		return err
	}
	if a == b {
		return svcErr.Validation("a user cannot be paired with themselves")
	}
	return nil
}
