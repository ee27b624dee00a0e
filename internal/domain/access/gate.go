package access

import "errors"

var ErrNotAuthorized = errors.New("caller is not authorized")

// Gate resolves the two privileged tiers: the singular system owner and the
// admin set the owner delegates to. Bundle-scoped rights (a bundle's own
// owner or borrower) are checked against the record itself, not the gate.
type Gate interface {
	IsAdmin(address string) bool
	OwnerAddress() string
}
