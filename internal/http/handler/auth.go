package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/http/middleware"
	"github.com/kudihq/kudi/internal/service"
)

const (
	sessionCookieName = "kudi_session"
	stateCookieName   = "kudi_oauth_state"
	sessionMaxAge     = 7 * 24 * 60 * 60
)

type AuthHandler struct {
	authService  service.AuthService
	orgService   service.OrganizationService
	dashboardURL string
	isProduction bool
}

func NewAuthHandler(
	authService service.AuthService,
	orgService service.OrganizationService,
	dashboardURL string,
	isProduction bool,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		orgService:   orgService,
		dashboardURL: dashboardURL,
		isProduction: isProduction,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	state, err := generateState()
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to generate state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate login"})
		return
	}

	authURL, err := h.authService.GetAuthorizationURL(state)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to get authorization URL", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate login"})
		return
	}

	c.SetCookie(
		stateCookieName,
		state,
		600,
		"/",
		"",
		h.isProduction,
		true,
	)

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func (h *AuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	code := c.Query("code")
	state := c.Query("state")
	errorParam := c.Query("error")
	inviteToken := c.Query("invite_token")

	if errorParam != "" {
		slog.WarnContext(ctx, "OAuth error", "error", errorParam)
		c.Redirect(http.StatusTemporaryRedirect, h.dashboardURL+"?auth_error="+errorParam)
		return
	}

	storedState, err := c.Cookie(stateCookieName)
	if err != nil || state != storedState {
		slog.WarnContext(ctx, "state mismatch")
		c.Redirect(http.StatusTemporaryRedirect, h.dashboardURL+"?auth_error=invalid_state")
		return
	}

	h.clearStateCookie(c)

	if code == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.dashboardURL+"?auth_error=no_code")
		return
	}

	user, session, err := h.authService.HandleCallback(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to handle callback", "error", err)
		if errors.Is(err, service.ErrInvalidCode) {
			c.Redirect(http.StatusTemporaryRedirect, h.dashboardURL+"?auth_error=invalid_code")
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, h.dashboardURL+"?auth_error=callback_failed")
		return
	}

	if inviteToken != "" {
		if _, err := h.orgService.AcceptInvite(ctx, inviteToken, user); err != nil {
			slog.WarnContext(ctx, "failed to accept invitation during callback",
				"error", err,
				"user_id", user.ID,
			)
			c.Redirect(http.StatusTemporaryRedirect, h.dashboardURL+"?auth_error=invite_failed")
			return
		}
	}

	h.setSessionCookie(c, session.ID)

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID, "email", user.Email)

	c.Redirect(http.StatusTemporaryRedirect, h.dashboardURL+"/dashboard")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID := middleware.GetSessionID(ctx)
	if sessionID == 0 {
		if cookie, err := c.Cookie(sessionCookieName); err == nil {
			sessionID, _ = strconv.ParseInt(cookie, 10, 64)
		}
	}
	if sessionID > 0 {
		if err := h.authService.Logout(ctx, sessionID); err != nil {
			slog.WarnContext(ctx, "failed to delete session", "error", err, "session_id", sessionID)
		}
	}

	h.clearSessionCookie(c)

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetUser(c.Request.Context())
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         strconv.FormatInt(user.ID, 10),
		"name":       user.Name,
		"email":      user.Email,
		"avatar_url": user.AvatarURL,
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, sessionID int64) {
	c.SetCookie(
		sessionCookieName,
		strconv.FormatInt(sessionID, 10),
		sessionMaxAge,
		"/",
		"",
		h.isProduction,
		true,
	)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetCookie(
		sessionCookieName,
		"",
		-1,
		"/",
		"",
		h.isProduction,
		true,
	)
}

func (h *AuthHandler) clearStateCookie(c *gin.Context) {
	c.SetCookie(
		stateCookieName,
		"",
		-1,
		"/",
		"",
		h.isProduction,
		true,
	)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
