package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionRankOrder(t *testing.T) {
	assert.Less(t, PermissionNone.Rank(), PermissionRead.Rank())
	assert.Less(t, PermissionRead.Rank(), PermissionWrite.Rank())
	assert.Less(t, PermissionWrite.Rank(), PermissionAdmin.Rank())
}

func TestPermissionRankUnknown(t *testing.T) {
	assert.Equal(t, -1, RolePermission("owner").Rank())
}

func TestParseSection(t *testing.T) {
	sec, err := ParseSection("  Billing ")
	require.NoError(t, err)
	assert.Equal(t, SectionBilling, sec)

	_, err = ParseSection("warehouse")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestParsePermissionBothRepresentations(t *testing.T) {
	cases := []struct {
		in   any
		want RolePermission
	}{
		{"write", PermissionWrite},
		{"ADMIN", PermissionAdmin},
		{"2", PermissionWrite},
		{float64(1), PermissionRead},
		{3, PermissionAdmin},
	}
	for _, tc := range cases {
		got, err := ParsePermission(tc.in)
		require.NoError(t, err, "input %v", tc.in)
		assert.Equal(t, tc.want, got, "input %v", tc.in)
	}
}

func TestParsePermissionRejectsUnknown(t *testing.T) {
	for _, in := range []any{"owner", "99", 0, float64(-1), true, "none"} {
		_, err := ParsePermission(in)
		assert.ErrorIs(t, err, ErrInvalidRole, "input %v", in)
	}
}

func TestGrantKeyCanonical(t *testing.T) {
	// Grants built from symbolic names and from numeric ranks must land on
	// the same canonical key, otherwise the reconciler would diff across
	// mismatched representations.
	symbolic, err := NormalizeGrant("reports", "write")
	require.NoError(t, err)
	numeric, err := NormalizeGrant("reports", 2)
	require.NoError(t, err)

	assert.Equal(t, "reports.write", symbolic.Key())
	assert.Equal(t, symbolic.Key(), numeric.Key())
}

func TestNormalizeGrantDefaultsToRead(t *testing.T) {
	g, err := NormalizeGrant("billing", nil)
	require.NoError(t, err)
	assert.Equal(t, PermissionRead, g.Permission)
}

func TestNormalizeGrantRejectsBadSection(t *testing.T) {
	_, err := NormalizeGrant("warehouse", "read")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
