// Package model defines the domain records shared by repositories and the
// auth layer: users, sessions and role grants.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRole is returned when a role section or permission cannot be
// resolved to a known enum value, or when a desired grant set names the
// same section twice. Handlers translate it into HTTP 400.
var ErrInvalidRole = errors.New("invalid role representation")

// RoleSection enumerates the resource areas a grant can apply to. The set
// is closed; unknown sections are rejected at the boundary.
type RoleSection string

const (
	SectionUsers      RoleSection = "users"
	SectionBilling    RoleSection = "billing"
	SectionReports    RoleSection = "reports"
	SectionMonitoring RoleSection = "monitoring"
)

var sections = map[RoleSection]bool{
	SectionUsers:      true,
	SectionBilling:    true,
	SectionReports:    true,
	SectionMonitoring: true,
}

// RolePermission is a ranked capability level. The rank is a total order,
// so holding "write" on a section also satisfies a "read" requirement.
type RolePermission string

const (
	PermissionNone  RolePermission = "none"
	PermissionRead  RolePermission = "read"
	PermissionWrite RolePermission = "write"
	PermissionAdmin RolePermission = "admin"
)

// permissionRanks is the single source of truth for the permission order.
// PermissionNone exists only as the rank floor; it is never persisted.
var permissionRanks = map[RolePermission]int{
	PermissionNone:  0,
	PermissionRead:  1,
	PermissionWrite: 2,
	PermissionAdmin: 3,
}

// Rank returns the numeric rank of p, or -1 for unknown permissions so
// that comparisons against any valid requirement fail closed.
func (p RolePermission) Rank() int {
	r, ok := permissionRanks[p]
	if !ok {
		return -1
	}
	return r
}

// ParseSection resolves a symbolic section name.
func ParseSection(s string) (RoleSection, error) {
	sec := RoleSection(strings.ToLower(strings.TrimSpace(s)))
	if !sections[sec] {
		return "", fmt.Errorf("%w: unknown section %q", ErrInvalidRole, s)
	}
	return sec, nil
}

// ParsePermission resolves a symbolic permission name ("write") or a
// numeric rank (2, "2") to the canonical symbolic form. Both spellings
// appear in role-update payloads; everything downstream of this function
// works on the symbolic form only.
func ParsePermission(v any) (RolePermission, error) {
	switch t := v.(type) {
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if n, err := strconv.Atoi(s); err == nil {
			return permissionFromRank(n)
		}
		p := RolePermission(s)
		if _, ok := permissionRanks[p]; !ok || p == PermissionNone {
			return "", fmt.Errorf("%w: unknown permission %q", ErrInvalidRole, t)
		}
		return p, nil
	case float64: // JSON numbers decode as float64
		return permissionFromRank(int(t))
	case int:
		return permissionFromRank(t)
	default:
		return "", fmt.Errorf("%w: unsupported permission value %v", ErrInvalidRole, v)
	}
}

func permissionFromRank(n int) (RolePermission, error) {
	for p, r := range permissionRanks {
		if r == n && p != PermissionNone {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown permission rank %d", ErrInvalidRole, n)
}

// RoleGrant states that a user holds Permission on Section. At most one
// grant per (UserID, Section) is ever persisted; the reconciler enforces
// this as an application-level invariant.
type RoleGrant struct {
	ID         uint64
	UserID     uint64
	Section    RoleSection
	Permission RolePermission
}

// Key returns the canonical comparable form of a grant, "section.permission".
// The reconciler diffs current and desired sets on this key.
func (g RoleGrant) Key() string {
	return string(g.Section) + "." + string(g.Permission)
}

// NormalizeGrant builds a canonical RoleGrant from boundary input, accepting
// either symbolic names or numeric ranks for the permission. An absent
// permission defaults to read.
func NormalizeGrant(section string, permission any) (RoleGrant, error) {
	sec, err := ParseSection(section)
	if err != nil {
		return RoleGrant{}, err
	}
	if permission == nil {
		return RoleGrant{Section: sec, Permission: PermissionRead}, nil
	}
	perm, err := ParsePermission(permission)
	if err != nil {
		return RoleGrant{}, err
	}
	return RoleGrant{Section: sec, Permission: perm}, nil
}
