package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-access/internal/model"
)

func grant(id uint64, section model.RoleSection, perm model.RolePermission) model.RoleGrant {
	return model.RoleGrant{ID: id, UserID: 1, Section: section, Permission: perm}
}

func TestDiffGrantsEqualSetsNoWrites(t *testing.T) {
	current := []model.RoleGrant{
		grant(10, model.SectionReports, model.PermissionRead),
		grant(11, model.SectionBilling, model.PermissionWrite),
	}
	desired := []model.RoleGrant{
		// Same canonical keys, different order, no row ids.
		grant(0, model.SectionBilling, model.PermissionWrite),
		grant(0, model.SectionReports, model.PermissionRead),
	}

	toAdd, toRemove := diffGrants(current, desired)
	assert.Empty(t, toAdd)
	assert.Empty(t, toRemove)
}

func TestDiffGrantsPermissionChangeIsReplace(t *testing.T) {
	// current = {reports.read}, desired = {reports.write, billing.read}:
	// the permission change shows up as an add plus a remove.
	current := []model.RoleGrant{grant(10, model.SectionReports, model.PermissionRead)}
	desired := []model.RoleGrant{
		grant(0, model.SectionReports, model.PermissionWrite),
		grant(0, model.SectionBilling, model.PermissionRead),
	}

	toAdd, toRemove := diffGrants(current, desired)

	require.Len(t, toAdd, 2)
	keys := []string{toAdd[0].Key(), toAdd[1].Key()}
	assert.Contains(t, keys, "reports.write")
	assert.Contains(t, keys, "billing.read")

	assert.Equal(t, []uint64{10}, toRemove)
}

func TestDiffGrantsRemovalOnly(t *testing.T) {
	current := []model.RoleGrant{
		grant(10, model.SectionReports, model.PermissionRead),
		grant(11, model.SectionBilling, model.PermissionWrite),
	}

	toAdd, toRemove := diffGrants(current, nil)
	assert.Empty(t, toAdd)
	assert.ElementsMatch(t, []uint64{10, 11}, toRemove)
}

func TestRejectDuplicateSections(t *testing.T) {
	// Two entries for the same section are rejected rather than collapsed;
	// the stored invariant is one grant per (user, section).
	desired := []model.RoleGrant{
		grant(0, model.SectionBilling, model.PermissionRead),
		grant(0, model.SectionBilling, model.PermissionWrite),
	}
	err := rejectDuplicateSections(desired)
	assert.ErrorIs(t, err, model.ErrInvalidRole)

	assert.NoError(t, rejectDuplicateSections([]model.RoleGrant{
		grant(0, model.SectionBilling, model.PermissionRead),
		grant(0, model.SectionReports, model.PermissionRead),
	}))
	assert.NoError(t, rejectDuplicateSections(nil))
}
