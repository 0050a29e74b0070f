package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-access/internal/auth"
	"github.com/iliyamo/user-access/internal/model"
)

type fakeSessions struct {
	live map[string]bool
}

func (f *fakeSessions) Exists(_ context.Context, id string) (bool, error) {
	return f.live[id], nil
}

type fakeRoles struct {
	grants []model.RoleGrant
}

func (f *fakeRoles) GrantsForUser(_ context.Context, _ uint64) ([]model.RoleGrant, error) {
	return f.grants, nil
}

func newValidator(t *testing.T, codec *auth.Codec, sessions *fakeSessions, roles *fakeRoles) *auth.Validator {
	t.Helper()
	return auth.NewValidator(codec, sessions, roles)
}

func run(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, called
}

func TestAuthenticateMissingHeader(t *testing.T) {
	codec := auth.NewCodec("secret")
	v := newValidator(t, codec, &fakeSessions{live: map[string]bool{}}, &fakeRoles{})

	rec, called := run(t, Authenticate(v), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthenticateValidToken(t *testing.T) {
	codec := auth.NewCodec("secret")
	raw, err := codec.Encode(7, "sess-1", auth.TokenAccess, time.Now().Add(time.Hour))
	require.NoError(t, err)

	sessions := &fakeSessions{live: map[string]bool{"sess-1": true}}
	roles := &fakeRoles{grants: []model.RoleGrant{{Section: model.SectionUsers, Permission: model.PermissionAdmin}}}
	v := newValidator(t, codec, sessions, roles)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Authenticate(v)(func(c echo.Context) error {
		id, ok := CurrentIdentity(c)
		require.True(t, ok)
		assert.Equal(t, uint64(7), id.UserID)
		assert.Equal(t, "sess-1", id.SessionID)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateRevokedSession(t *testing.T) {
	codec := auth.NewCodec("secret")
	raw, err := codec.Encode(7, "sess-1", auth.TokenAccess, time.Now().Add(time.Hour))
	require.NoError(t, err)

	// Signature is fine, but the session row is gone.
	v := newValidator(t, codec, &fakeSessions{live: map[string]bool{}}, &fakeRoles{})

	rec, called := run(t, Authenticate(v), "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Body.String(), "revoked")
}

func TestRequireRoleDeniesLowerRank(t *testing.T) {
	codec := auth.NewCodec("secret")
	raw, err := codec.Encode(7, "sess-1", auth.TokenAccess, time.Now().Add(time.Hour))
	require.NoError(t, err)

	sessions := &fakeSessions{live: map[string]bool{"sess-1": true}}
	roles := &fakeRoles{grants: []model.RoleGrant{{Section: model.SectionUsers, Permission: model.PermissionRead}}}
	v := newValidator(t, codec, sessions, roles)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/v1/users/7/roles", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := Authenticate(v)(RequireRole(model.SectionUsers, model.PermissionAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}))
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestRequireRoleAllowsHigherRank(t *testing.T) {
	codec := auth.NewCodec("secret")
	raw, err := codec.Encode(7, "sess-1", auth.TokenAccess, time.Now().Add(time.Hour))
	require.NoError(t, err)

	sessions := &fakeSessions{live: map[string]bool{"sess-1": true}}
	roles := &fakeRoles{grants: []model.RoleGrant{{Section: model.SectionUsers, Permission: model.PermissionAdmin}}}
	v := newValidator(t, codec, sessions, roles)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/users/7/roles", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// admin satisfies a read requirement: comparison is by rank.
	h := Authenticate(v)(RequireRole(model.SectionUsers, model.PermissionRead)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
