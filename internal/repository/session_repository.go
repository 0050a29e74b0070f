package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/user-access/internal/model"
)

// SessionRepo persists one row per issued token pair in the 'user_session'
// table. The row is the single source of truth for "is this token still
// alive": TokenValidator consults Exists on every request, and revocation
// deletes the row so cryptographically valid tokens die immediately.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create generates a fresh session id, persists the record and returns the
// id. Client environment fields are clipped to their column widths before
// storage.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, platform, browser, requestIP string) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_session (id, user_id, platform, browser, request_ip) VALUES (?,?,?,?,?)",
		id, userID,
		clip(platform, model.SessionEnvParamMaxLen),
		clip(browser, model.SessionEnvParamMaxLen),
		clip(requestIP, model.SessionRequestIPMaxLen))
	if err != nil {
		return "", err
	}
	return id, nil
}

// Exists reports whether the session row is still present (i.e. the token
// pair bound to it has not been revoked).
func (r *SessionRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM user_session WHERE id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Revoke deletes the session. Idempotent: a missing row is not an error.
func (r *SessionRepo) Revoke(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM user_session WHERE id=?", id)
	return err
}

// RevokeAllForUser deletes every session owned by the user and returns the
// number of rows removed ("log out everywhere").
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM user_session WHERE user_id=?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetByID fetches a session row, mainly for diagnostics and tests.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, platform, browser, request_ip, created_at FROM user_session WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.UserID, &s.Platform, &s.Browser, &s.RequestIP, &s.CreatedAt)
	return s, err
}

func clip(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
