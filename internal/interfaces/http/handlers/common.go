package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/auth"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/cart"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/product"
	"github.com/sudeepthiperuri3/shop-sphere/internal/interfaces/http/middleware"
)

// HomePath is the default destination after login
const HomePath = "/home"

// Catalog is the read side of the external product catalog
type Catalog interface {
	Products(ctx context.Context) ([]product.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]product.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Product(ctx context.Context, id int) (*product.Product, error)
	Reviews(ctx context.Context, productID int) ([]product.Review, error)
}

// sessionCart restores the cart of the request's session
func sessionCart(c *gin.Context, logger logrus.FieldLogger) (*cart.Store, bool) {
	st, ok := middleware.GetSessionStorage(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Session unavailable",
		})
		return nil, false
	}
	return cart.NewStore(c.Request.Context(), st, logger), true
}

// sessionAuth returns the auth store attached by the session middleware
func sessionAuth(c *gin.Context) (*auth.Store, bool) {
	store, ok := middleware.GetAuthStore(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Session unavailable",
		})
		return nil, false
	}
	return store, true
}

// parseProductID parses the :id path parameter
func parseProductID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// safeRedirect returns from when it is a local path worth returning to,
// HomePath otherwise
func safeRedirect(from string) string {
	if from == "" || strings.ContainsRune(from, '\\') || strings.IndexFunc(from, unicode.IsControl) >= 0 {
		return HomePath
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return HomePath
	}
	if !strings.HasPrefix(from, "/") || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return HomePath
	}
	// Decoded paths such as /%09/x or /%5Cx must not smuggle the same bytes
	if strings.ContainsRune(u.Path, '\\') || strings.IndexFunc(u.Path, unicode.IsControl) >= 0 {
		return HomePath
	}
	if u.Path == "/" || u.Path == middleware.LoginPath {
		return HomePath
	}
	return from
}
