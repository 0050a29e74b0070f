package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-access/internal/model"
)

// memSessions is an in-memory session store covering both the issuer and
// validator interfaces.
type memSessions struct {
	mu   sync.Mutex
	rows map[string]model.Session
}

func newMemSessions() *memSessions {
	return &memSessions{rows: map[string]model.Session{}}
}

func (m *memSessions) Create(_ context.Context, userID uint64, platform, browser, requestIP string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.rows[id] = model.Session{ID: id, UserID: userID, Platform: platform, Browser: browser, RequestIP: requestIP}
	return id, nil
}

func (m *memSessions) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	return ok, nil
}

func (m *memSessions) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memSessions) RevokeAllForUser(_ context.Context, userID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.rows {
		if s.UserID == userID {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

type memRoles struct {
	grants map[uint64][]model.RoleGrant
}

func (m *memRoles) GrantsForUser(_ context.Context, userID uint64) ([]model.RoleGrant, error) {
	return m.grants[userID], nil
}

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func testEnv() ClientEnvironment {
	return ClientEnvironment{UserAgent: chromeUA, RequestIP: "203.0.113.7"}
}

func newTestStack(t *testing.T) (*memSessions, *memRoles, *Issuer, *Validator, *Codec) {
	t.Helper()
	sessions := newMemSessions()
	roles := &memRoles{grants: map[uint64][]model.RoleGrant{}}
	codec := NewCodec("test-secret")
	issuer := NewIssuer(codec, sessions, 15*time.Minute, 7*24*time.Hour)
	validator := NewValidator(codec, sessions, roles)
	return sessions, roles, issuer, validator, codec
}

func TestIssueAndValidate(t *testing.T) {
	_, roles, issuer, validator, _ := newTestStack(t)
	roles.grants[7] = []model.RoleGrant{{UserID: 7, Section: model.SectionBilling, Permission: model.PermissionWrite}}

	pair, err := issuer.Issue(context.Background(), 7, testEnv())
	require.NoError(t, err)
	require.NotEmpty(t, pair.SessionID)

	id, err := validator.Validate(context.Background(), pair.Access, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id.UserID)
	assert.Equal(t, pair.SessionID, id.SessionID)
	assert.Len(t, id.Grants, 1)

	// The refresh half is bound to the same session.
	rid, err := validator.Validate(context.Background(), pair.Refresh, TokenRefresh)
	require.NoError(t, err)
	assert.Equal(t, pair.SessionID, rid.SessionID)
}

func TestValidateRejectsWrongTokenType(t *testing.T) {
	_, _, issuer, validator, _ := newTestStack(t)

	pair, err := issuer.Issue(context.Background(), 7, testEnv())
	require.NoError(t, err)

	// A refresh token must not pass where an access token is required.
	_, err = validator.Validate(context.Background(), pair.Refresh, TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokedSessionFailsValidation(t *testing.T) {
	sessions, _, issuer, validator, codec := newTestStack(t)

	pair, err := issuer.Issue(context.Background(), 7, testEnv())
	require.NoError(t, err)
	require.NoError(t, sessions.Revoke(context.Background(), pair.SessionID))

	// The token still decodes: revocation is independent of cryptographic
	// validity.
	_, err = codec.Decode(pair.Access)
	require.NoError(t, err)

	_, err = validator.Validate(context.Background(), pair.Access, TokenAccess)
	assert.ErrorIs(t, err, ErrSessionRevoked)
	_, err = validator.Validate(context.Background(), pair.Refresh, TokenRefresh)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestRevokeAllForUser(t *testing.T) {
	sessions, _, issuer, validator, _ := newTestStack(t)

	p1, err := issuer.Issue(context.Background(), 7, testEnv())
	require.NoError(t, err)
	p2, err := issuer.Issue(context.Background(), 7, testEnv())
	require.NoError(t, err)
	other, err := issuer.Issue(context.Background(), 8, testEnv())
	require.NoError(t, err)

	n, err := sessions.RevokeAllForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, tok := range []string{p1.Access, p2.Access} {
		_, err = validator.Validate(context.Background(), tok, TokenAccess)
		assert.ErrorIs(t, err, ErrSessionRevoked)
	}

	// Sessions of other users are untouched.
	_, err = validator.Validate(context.Background(), other.Access, TokenAccess)
	assert.NoError(t, err)
}

func TestExpiredAccessTokenFailsValidation(t *testing.T) {
	sessions := newMemSessions()
	roles := &memRoles{grants: map[uint64][]model.RoleGrant{}}
	codec := NewCodec("test-secret")
	issuer := NewIssuer(codec, sessions, -time.Minute, time.Hour) // already expired
	validator := NewValidator(codec, sessions, roles)

	pair, err := issuer.Issue(context.Background(), 7, testEnv())
	require.NoError(t, err)

	_, err = validator.Validate(context.Background(), pair.Access, TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
