// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/config"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/auth"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/storage"
	"github.com/sudeepthiperuri3/shop-sphere/internal/pkg/session"
)

const (
	sessionIDKey      = "session_id"
	sessionStorageKey = "session_storage"
	authStoreKey      = "auth_store"
	usernameKey       = "username"
)

// LoginPath is where gated routes send unauthenticated visitors
const LoginPath = "/login"

// Session resolves the browser session from the signed session cookie and
// attaches its storage namespace and restored auth store to the context.
// A missing or invalid cookie starts a new, empty session.
func Session(cfg *config.Config, backend storage.Storage, authenticator auth.Authenticator, logger logrus.FieldLogger) gin.HandlerFunc {
	manager := session.NewManager(cfg)

	return func(c *gin.Context) {
		var sessionID string
		if cookie, err := c.Cookie(cfg.Session.CookieName); err == nil && cookie != "" {
			if claims, err := manager.Parse(cookie); err == nil {
				sessionID = claims.SessionID
			} else {
				logger.WithError(err).Debug("Discarding invalid session cookie")
			}
		}

		if sessionID == "" {
			sessionID = session.NewSessionID()
			token, err := manager.Issue(sessionID)
			if err != nil {
				logger.WithError(err).Error("Failed to issue session cookie")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to start session",
				})
				c.Abort()
				return
			}

			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.Session.CookieName, token, int(cfg.Session.TTL.Seconds()), "/", "", cfg.Session.Secure, true)
		}

		st := storage.ForSession(backend, sessionID)
		store := auth.NewStore(c.Request.Context(), st, authenticator, logger.WithField(sessionIDKey, sessionID))

		c.Set(sessionIDKey, sessionID)
		c.Set(sessionStorageKey, st)
		c.Set(authStoreKey, store)
		if store.IsAuthenticated() {
			c.Set(usernameKey, store.Username())
		}

		c.Next()
	}
}

// RequireAuth gates a route on the session being logged in. Anonymous
// visitors are redirected to the login view with the requested path
// recorded in `from`.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := GetAuthStore(c)
		if !ok || !store.IsAuthenticated() {
			c.Redirect(http.StatusFound, LoginRedirect(c.Request.URL.Path))
			c.Abort()
			return
		}

		c.Next()
	}
}

// LoginRedirect builds the login URL remembering from
func LoginRedirect(from string) string {
	return LoginPath + "?from=" + url.QueryEscape(from)
}

// GetSessionID extracts the session id from gin context
func GetSessionID(c *gin.Context) (string, bool) {
	id, exists := c.Get(sessionIDKey)
	if !exists {
		return "", false
	}
	return id.(string), true
}

// GetSessionStorage extracts the session's storage namespace from gin context
func GetSessionStorage(c *gin.Context) (storage.Storage, bool) {
	st, exists := c.Get(sessionStorageKey)
	if !exists {
		return nil, false
	}
	return st.(storage.Storage), true
}

// GetAuthStore extracts the session's auth store from gin context
func GetAuthStore(c *gin.Context) (*auth.Store, bool) {
	store, exists := c.Get(authStoreKey)
	if !exists {
		return nil, false
	}
	return store.(*auth.Store), true
}

// GetUsername returns the logged-in username, empty for anonymous sessions
func GetUsername(c *gin.Context) string {
	return c.GetString(usernameKey)
}
