package auth

import "github.com/iliyamo/user-access/internal/model"

// Requirement characterizes a protected operation: the section it touches
// and the minimum permission rank it demands. Routes declare a static
// Requirement value; no runtime reflection is involved.
//
// A zero Permission defaults to read, mirroring how endpoints are usually
// declared with only a section.
type Requirement struct {
	Section    model.RoleSection
	Permission model.RolePermission
}

// Authorize decides allow/deny for an authenticated identity.
//
// A nil requirement (or one with no section) imposes no authorization
// constraint: authentication alone suffices. Otherwise the identity must
// hold a grant for the section whose rank is at least the required rank.
// Rank comparison, not equality, so admin on a section satisfies a read
// check.
func Authorize(id Identity, req *Requirement) error {
	if req == nil || req.Section == "" {
		return nil
	}
	required := req.Permission
	if required == "" {
		required = model.PermissionRead
	}

	grant, ok := id.Grant(req.Section)
	if !ok {
		return ErrForbidden
	}
	if grant.Permission.Rank() < required.Rank() {
		return ErrForbidden
	}
	return nil
}
