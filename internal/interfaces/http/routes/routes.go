// internal/interfaces/http/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/config"
	"github.com/sudeepthiperuri3/shop-sphere/internal/interfaces/http/handlers"
	"github.com/sudeepthiperuri3/shop-sphere/internal/interfaces/http/middleware"
)

// Handlers groups the storefront handlers
type Handlers struct {
	Auth     *handlers.AuthHandler
	Product  *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
}

// SetupRoutes registers the storefront routes. session resolves the browser
// session and must run before any gate.
func SetupRoutes(r *gin.Engine, h *Handlers, session gin.HandlerFunc, redisClient *redis.Client, cfg *config.Config, logger logrus.FieldLogger) {
	site := r.Group("/")
	site.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	site.Use(session)

	SetupPublicRoutes(site, h, redisClient, cfg, logger)

	gated := site.Group("")
	gated.Use(middleware.RequireAuth())
	{
		SetupProductRoutes(gated, h)
		SetupCartRoutes(gated, h)
		SetupCheckoutRoutes(gated, h)
	}

	// Unknown paths are gated too, then land on the product list
	r.NoRoute(middleware.Timeout(cfg.Server.RequestTimeout), session, middleware.RequireAuth(), func(c *gin.Context) {
		c.Redirect(http.StatusFound, handlers.HomePath)
	})
}

// SetupPublicRoutes sets up the landing and login routes
func SetupPublicRoutes(rg *gin.RouterGroup, h *Handlers, redisClient *redis.Client, cfg *config.Config, logger logrus.FieldLogger) {
	rg.GET("/", h.Auth.Landing)
	rg.GET("/login", h.Auth.LoginView)
	rg.POST("/login", middleware.RateLimit(cfg, redisClient, "login", logger), h.Auth.Login)
	rg.POST("/logout", h.Auth.Logout)
}

// SetupProductRoutes sets up the product list and detail views
func SetupProductRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/home", h.Product.ListProducts)
	rg.GET("/product/:id", h.Product.GetProduct)
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, h *Handlers) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddToCart)
		cart.PUT("/items/:id", h.Cart.UpdateCartItem)
		cart.DELETE("/items/:id", h.Cart.RemoveFromCart)
	}
}

// SetupCheckoutRoutes sets up checkout related routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *Handlers) {
	checkout := rg.Group("/checkout")
	{
		checkout.GET("", h.Checkout.GetCheckout)
		checkout.POST("", h.Checkout.PlaceOrder)
		checkout.POST("/shipping", h.Checkout.ValidateShipping)
		checkout.POST("/payment", h.Checkout.ValidatePayment)
		checkout.GET("/receipt", h.Checkout.GetReceipt)
	}
}
