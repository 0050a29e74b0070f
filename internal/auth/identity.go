package auth

import "github.com/iliyamo/user-access/internal/model"

// Identity is the outcome of successful validation: the authenticated user,
// the session the presented token is bound to, and the user's current role
// grants loaded at validation time.
type Identity struct {
	UserID    uint64
	SessionID string
	Grants    []model.RoleGrant
}

// Grant returns the identity's grant for the section, if any. At most one
// exists per section (reconciler invariant).
func (id Identity) Grant(section model.RoleSection) (model.RoleGrant, bool) {
	for _, g := range id.Grants {
		if g.Section == section {
			return g, true
		}
	}
	return model.RoleGrant{}, false
}
