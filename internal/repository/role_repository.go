package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/user-access/internal/model"
)

// RoleRepo manages the 'user_role' table. Each row grants one permission
// on one section to one user; the table is effectively a map from section
// to permission per user, and SetRoles keeps it that way.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// advisoryLockTimeout bounds GET_LOCK waits so two concurrent
// reconciliations for one user queue instead of failing instantly.
const advisoryLockTimeoutSec = 5

// GrantsForUser returns all role grants held by the user.
func (r *RoleRepo) GrantsForUser(ctx context.Context, userID uint64) ([]model.RoleGrant, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, section, permission FROM user_role WHERE user_id=?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []model.RoleGrant
	for rows.Next() {
		var g model.RoleGrant
		if err := rows.Scan(&g.ID, &g.UserID, &g.Section, &g.Permission); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// SetRoles reconciles the user's stored grants with the desired set: it
// computes the minimal add/remove diff and applies it inside a single
// transaction while holding a per-user advisory lock, so concurrent
// reconciliations for the same user serialize and the table is never
// observed in a partially-applied state. Grants present in both sets are
// left untouched, which also makes the call idempotent.
//
// A desired set naming the same section twice is rejected with
// model.ErrInvalidRole before anything is written.
func (r *RoleRepo) SetRoles(ctx context.Context, userID uint64, desired []model.RoleGrant) error {
	if err := rejectDuplicateSections(desired); err != nil {
		return err
	}

	var one int
	if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM user WHERE id=? LIMIT 1", userID).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return ErrUserNotFound
		}
		return err
	}

	// Advisory locks are connection-scoped in MySQL, so pin a single
	// connection for the lock and the transaction together.
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	lockName := fmt.Sprintf("user_role.%d", userID)
	var locked sql.NullInt64
	if err := conn.QueryRowContext(ctx,
		"SELECT GET_LOCK(?, ?)", lockName, advisoryLockTimeoutSec).Scan(&locked); err != nil {
		return err
	}
	if !locked.Valid || locked.Int64 != 1 {
		return fmt.Errorf("role reconciliation for user %d: lock not acquired", userID)
	}
	defer func() {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), "SELECT RELEASE_LOCK(?)", lockName)
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.reconcileTx(ctx, tx, userID, desired); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *RoleRepo) reconcileTx(ctx context.Context, tx *sql.Tx, userID uint64, desired []model.RoleGrant) error {
	rows, err := tx.QueryContext(ctx,
		"SELECT id, user_id, section, permission FROM user_role WHERE user_id=?", userID)
	if err != nil {
		return err
	}
	var current []model.RoleGrant
	for rows.Next() {
		var g model.RoleGrant
		if err := rows.Scan(&g.ID, &g.UserID, &g.Section, &g.Permission); err != nil {
			rows.Close()
			return err
		}
		current = append(current, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	toAdd, toRemove := diffGrants(current, desired)

	if len(toAdd) > 0 {
		query := "INSERT INTO user_role (user_id, section, permission) VALUES "
		args := make([]interface{}, 0, len(toAdd)*3)
		for i, g := range toAdd {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?)"
			args = append(args, userID, string(g.Section), string(g.Permission))
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if len(toRemove) > 0 {
		placeholders := strings.Repeat("?,", len(toRemove))
		placeholders = placeholders[:len(placeholders)-1]
		args := make([]interface{}, len(toRemove))
		for i, id := range toRemove {
			args[i] = id
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM user_role WHERE id IN ("+placeholders+")", args...); err != nil {
			return err
		}
	}
	return nil
}

// diffGrants compares the two sets on the canonical "section.permission"
// key. Desired grants absent from current become inserts; current rows
// absent from desired become deletes (by row id). A permission change for
// an existing section therefore shows up as one insert plus one delete,
// which is observably "replace the grant for that section".
func diffGrants(current, desired []model.RoleGrant) (toAdd []model.RoleGrant, toRemove []uint64) {
	currentKeys := make(map[string]bool, len(current))
	for _, g := range current {
		currentKeys[g.Key()] = true
	}
	desiredKeys := make(map[string]bool, len(desired))
	for _, g := range desired {
		desiredKeys[g.Key()] = true
	}
	for _, g := range desired {
		if !currentKeys[g.Key()] {
			toAdd = append(toAdd, g)
		}
	}
	for _, g := range current {
		if !desiredKeys[g.Key()] {
			toRemove = append(toRemove, g.ID)
		}
	}
	return toAdd, toRemove
}

// rejectDuplicateSections enforces the one-grant-per-section invariant on
// input instead of silently collapsing conflicting entries.
func rejectDuplicateSections(desired []model.RoleGrant) error {
	seen := make(map[model.RoleSection]bool, len(desired))
	for _, g := range desired {
		if seen[g.Section] {
			return fmt.Errorf("%w: section %q appears more than once", model.ErrInvalidRole, g.Section)
		}
		seen[g.Section] = true
	}
	return nil
}
