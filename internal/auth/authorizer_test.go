package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/user-access/internal/model"
)

func identityWith(grants ...model.RoleGrant) Identity {
	return Identity{UserID: 1, SessionID: "s", Grants: grants}
}

func TestAuthorizeNoRequirementAllowsAnyone(t *testing.T) {
	id := identityWith() // no grants at all
	assert.NoError(t, Authorize(id, nil))
	assert.NoError(t, Authorize(id, &Requirement{}))
}

func TestAuthorizeMissingSectionDenies(t *testing.T) {
	id := identityWith(model.RoleGrant{Section: model.SectionBilling, Permission: model.PermissionAdmin})
	err := Authorize(id, &Requirement{Section: model.SectionReports})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeDefaultsToRead(t *testing.T) {
	id := identityWith(model.RoleGrant{Section: model.SectionReports, Permission: model.PermissionRead})
	// No permission on the requirement: read is implied.
	assert.NoError(t, Authorize(id, &Requirement{Section: model.SectionReports}))
}

func TestAuthorizeRankComparison(t *testing.T) {
	// Monotonic in rank: any grant at or above the requirement allows,
	// anything below denies.
	grants := []model.RolePermission{model.PermissionRead, model.PermissionWrite, model.PermissionAdmin}
	required := []model.RolePermission{model.PermissionRead, model.PermissionWrite, model.PermissionAdmin}

	for _, g := range grants {
		for _, req := range required {
			id := identityWith(model.RoleGrant{Section: model.SectionBilling, Permission: g})
			err := Authorize(id, &Requirement{Section: model.SectionBilling, Permission: req})
			if g.Rank() >= req.Rank() {
				assert.NoError(t, err, "grant %s vs required %s", g, req)
			} else {
				assert.ErrorIs(t, err, ErrForbidden, "grant %s vs required %s", g, req)
			}
		}
	}
}
