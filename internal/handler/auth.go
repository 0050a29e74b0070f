package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-access/internal/auth"
	"github.com/iliyamo/user-access/internal/config"
	"github.com/iliyamo/user-access/internal/middleware"
	"github.com/iliyamo/user-access/internal/model"
	"github.com/iliyamo/user-access/internal/queue"
	"github.com/iliyamo/user-access/internal/repository"
	queue_publisher "github.com/iliyamo/user-access/internal/service"
	"github.com/iliyamo/user-access/internal/utils"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for registration, login, token refresh
// and logout endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Users     *repository.UserRepo
	Sessions  *repository.SessionRepo
	Issuer    *auth.Issuer
	Validator *auth.Validator
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *repository.SessionRepo, i *auth.Issuer, v *auth.Validator) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Issuer: i, Validator: v}
}

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func tokenPair(p auth.TokenPair) (tokenPart, tokenPart) {
	return tokenPart{Token: p.Access, Expires: p.AccessExp},
		tokenPart{Token: p.Refresh, Expires: p.RefreshExp}
}

// clientEnvironment extracts the raw attributes recorded against a new
// session. RealIP honors X-Forwarded-For, which is how the reverse proxy
// hands us the originating address.
func clientEnvironment(c echo.Context) auth.ClientEnvironment {
	return auth.ClientEnvironment{
		UserAgent: c.Request().UserAgent(),
		RequestIP: c.RealIP(),
	}
}

// Register creates a user and returns a token pair immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name/last_name/email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.FirstName, req.LastName, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	pair, err := h.Issuer.Issue(ctx, uid, clientEnvironment(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	go h.publishRegistered(uid, req, pair.SessionID)

	access, refresh := tokenPair(pair)
	return c.JSON(http.StatusCreated, authResp{
		User:    userPart{ID: uid, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email},
		Access:  access,
		Refresh: refresh,
	})
}

// publishRegistered emits the user.registered event in the background.
// The session row carries the parsed platform/browser values.
func (h *AuthHandler) publishRegistered(uid uint64, req registerReq, sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ev := queue.UserRegisteredEvent{
		UserID:       uid,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		RegisteredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if s, err := h.Sessions.GetByID(ctx, sessionID); err == nil {
		ev.Platform = s.Platform
		ev.Browser = s.Browser
		ev.RequestIP = s.RequestIP
	}
	_ = queue_publisher.PublishUserRegistered(ctx, ev)
}

// Login verifies credentials and returns a new token pair on a new session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	pair, err := h.Issuer.Issue(ctx, u.ID, clientEnvironment(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	access, refresh := tokenPair(pair)
	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email},
		Access:  access,
		Refresh: refresh,
	})
}

// Refresh rotates a token pair: the presented refresh token must decode and
// its session must still be live; the old session is revoked and a fresh
// pair on a fresh session is returned. Rotation means a stolen refresh
// token dies the moment the legitimate client rotates.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Validator.Validate(ctx, strings.TrimSpace(req.RefreshToken), auth.TokenRefresh)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrSessionRevoked) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validation failed"})
	}

	u, err := h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	if err := h.Sessions.Revoke(ctx, id.SessionID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rotate failed"})
	}
	go publishRevoked(id.UserID, 1, "refresh_rotation")

	pair, err := h.Issuer.Issue(ctx, u.ID, clientEnvironment(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	access, refresh := tokenPair(pair)
	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email},
		Access:  access,
		Refresh: refresh,
	})
}

// Logout revokes the session the presented access token is bound to. Both
// tokens of the pair die with it. Idempotent at the store level, so a
// repeated logout still returns 204.
func (h *AuthHandler) Logout(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.Revoke(ctx, id.SessionID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	go publishRevoked(id.UserID, 1, "logout")
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll revokes every session of the authenticated user ("log out
// everywhere") and reports how many were removed.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n, err := h.Sessions.RevokeAllForUser(ctx, id.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	go publishRevoked(id.UserID, n, "logout_all")
	return c.JSON(http.StatusOK, echo.Map{"revoked": n})
}

func publishRevoked(userID uint64, n int64, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = queue_publisher.PublishSessionsRevoked(ctx, queue.SessionsRevokedEvent{
		UserID:    userID,
		Revoked:   n,
		Reason:    reason,
		RevokedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// Me returns the authenticated identity and its current role grants.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":  userPart{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email},
		"roles": grantList(id.Grants),
	})
}

type grantPart struct {
	Section    string `json:"section"`
	Permission string `json:"permission"`
}

func grantList(grants []model.RoleGrant) []grantPart {
	out := make([]grantPart, 0, len(grants))
	for _, g := range grants {
		out = append(out, grantPart{Section: string(g.Section), Permission: string(g.Permission)})
	}
	return out
}
