// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/config"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/auth"
)

// AuthHandler handles the landing, login and logout endpoints
type AuthHandler struct {
	config *config.Config
	logger logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		config: cfg,
		logger: logger,
	}
}

// LoginRequest represents the login intent
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	From     string `json:"from"`
}

// Landing handles GET /
func (h *AuthHandler) Landing(c *gin.Context) {
	store, ok := sessionAuth(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to " + h.config.App.Name,
		"data": gin.H{
			"authenticated": store.IsAuthenticated(),
			"username":      store.Username(),
			"shop":          HomePath,
			"login":         "/login",
		},
	})
}

// LoginView handles GET /login. Sessions that are already logged in are
// sent on to their destination.
func (h *AuthHandler) LoginView(c *gin.Context) {
	store, ok := sessionAuth(c)
	if !ok {
		return
	}

	from := safeRedirect(c.Query("from"))
	if store.IsAuthenticated() {
		c.Redirect(http.StatusFound, from)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Please sign in",
		"data": gin.H{
			"from": from,
		},
	})
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	store, ok := sessionAuth(c)
	if !ok {
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := store.Login(c.Request.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid username or password",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Login failed",
		})
		return
	}

	from := req.From
	if from == "" {
		from = c.Query("from")
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data": gin.H{
			"username": store.Username(),
			"redirect": safeRedirect(from),
		},
	})
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	store, ok := sessionAuth(c)
	if !ok {
		return
	}

	if err := store.Logout(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to clear auth record")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to logout",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
		"data": gin.H{
			"redirect": "/",
		},
	})
}
