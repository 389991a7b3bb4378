package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudeepthiperuri3/shop-sphere/internal/config"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/auth"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/storage"
	"github.com/sudeepthiperuri3/shop-sphere/internal/pkg/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "ShopSphere"},
		Session: config.SessionConfig{
			Secret:     "0123456789abcdef0123456789abcdef",
			CookieName: "shopsphere_session",
			TTL:        time.Hour,
		},
		Security: config.SecurityConfig{
			RateLimitPerMinute: 2,
			CORSAllowedOrigins: []string{"https://shop.example", "*.preview.example"},
			CORSAllowedMethods: []string{"GET", "POST"},
			CORSAllowedHeaders: []string{"Content-Type"},
		},
	}
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRateLimit(t *testing.T) {
	mr, client := setupTestRedis(t)

	r := gin.New()
	r.POST("/login", RateLimit(testConfig(), client, "login", quietLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	mr.FastForward(time.Minute + time.Second)
	w = serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	r := gin.New()
	r.POST("/login", RateLimit(testConfig(), client, "login", quietLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)).Code)

	r = gin.New()
	r.POST("/login", RateLimit(testConfig(), nil, "login", quietLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)).Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(testConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://shop.example")
	w := serve(r, req)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://pr-1.preview.example")
	assert.Equal(t, "https://pr-1.preview.example", serve(r, req).Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evilpreview.example")
	assert.Empty(t, serve(r, req).Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://shop.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "3f2b8a54-3f0e-4e52-9d7c-4a6f2b1c9e11")
	assert.Equal(t, "3f2b8a54-3f0e-4e52-9d7c-4a6f2b1c9e11", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "<script>")
	assert.NotEqual(t, "<script>", serve(r, req).Body.String())
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"deadline":true}`, w.Body.String())
}

type stubAuthenticator struct{}

func (stubAuthenticator) Login(ctx context.Context, username, password string) (string, error) {
	return "tok", nil
}

func TestSessionAndRequireAuth(t *testing.T) {
	cfg := testConfig()
	backend := storage.NewMemoryStorage()

	r := gin.New()
	r.Use(Session(cfg, backend, stubAuthenticator{}, quietLogger()))
	r.POST("/login", func(c *gin.Context) {
		store, _ := GetAuthStore(c)
		require.NoError(t, store.Login(c.Request.Context(), "johnd", "pw"))
		c.Status(http.StatusOK)
	})
	r.GET("/cart", RequireAuth(), func(c *gin.Context) {
		sid, _ := GetSessionID(c)
		c.String(http.StatusOK, GetUsername(c)+"@"+sid)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/cart?x=1", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?from=%2Fcart", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "shopsphere_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	claims, err := session.NewManager(cfg).Parse(cookies[0].Value)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(cookies[0])
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies(), "a valid cookie is not reissued")

	raw, err := storage.ForSession(backend, claims.SessionID).Get(context.Background(), auth.StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"tok","username":"johnd"}`, string(raw))

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(cookies[0])
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "johnd@"+claims.SessionID, w.Body.String())
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("test")

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	serve(r, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/items/2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	body := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Body.String()
	assert.Contains(t, body, `test_http_requests_total{code="200",method="GET",route="/items/:id"} 2`)
	assert.Contains(t, body, `test_http_requests_total{code="404",method="GET",route="unmatched"} 1`)
	assert.Contains(t, body, "test_http_request_duration_seconds_bucket")
}

func TestLoggerTagsSessionAndShopper(t *testing.T) {
	logger, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(Logger(logger))
	r.GET("/cart", func(c *gin.Context) {
		c.Set(sessionIDKey, "sid-1")
		c.Set(usernameKey, "johnd")
		c.Status(http.StatusOK)
	})
	r.GET("/checkout", func(c *gin.Context) {
		c.Set(sessionIDKey, "sid-2")
		c.Redirect(http.StatusFound, LoginRedirect("/checkout"))
	})
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	serve(r, httptest.NewRequest(http.MethodGet, "/cart", nil))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "sid-1", entry.Data["session_id"])
	assert.Equal(t, "johnd", entry.Data["username"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])

	serve(r, httptest.NewRequest(http.MethodGet, "/checkout", nil))
	entry = hook.LastEntry()
	assert.Equal(t, "Anonymous shopper redirected", entry.Message)
	assert.Equal(t, "sid-2", entry.Data["session_id"])
	assert.NotContains(t, entry.Data, "username")

	serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	entry = hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.NotContains(t, entry.Data, "session_id")
}
