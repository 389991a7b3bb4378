// internal/infrastructure/catalog/client.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/config"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/product"
)

var (
	// ErrLoadFailed covers every failed catalog read: transport errors,
	// non-2xx answers and undecodable bodies alike.
	ErrLoadFailed = errors.New("failed to load catalog data")

	// ErrProductNotFound is returned when the catalog has no product for an id
	ErrProductNotFound = errors.New("product not found")

	// ErrLoginRejected is returned when the catalog refuses a login
	ErrLoginRejected = errors.New("login rejected")
)

// Client reads the third-party product catalog
type Client struct {
	baseURL      string
	httpClient   *http.Client
	reviewsDelay time.Duration
	logger       logrus.FieldLogger
}

// NewClient creates a catalog client from the catalog configuration
func NewClient(cfg config.CatalogConfig, logger logrus.FieldLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		reviewsDelay: cfg.ReviewsDelay,
		logger:       logger.WithField("component", "catalog"),
	}
}

// Products fetches the full product list
func (c *Client) Products(ctx context.Context) ([]product.Product, error) {
	var products []product.Product
	if err := c.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ProductsByCategory fetches the products of one category
func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]product.Product, error) {
	var products []product.Product
	if err := c.getJSON(ctx, "/products/category/"+url.PathEscape(category), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Categories fetches every category label
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "/products/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Product fetches a single product. The catalog answers unknown ids with an
// empty body, which is reported as ErrProductNotFound.
func (c *Client) Product(ctx context.Context, id int) (*product.Product, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/products/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrProductNotFound
	}
	if status < 200 || status > 299 {
		return nil, c.loadFailed("/products/"+strconv.Itoa(id), fmt.Errorf("unexpected status %d", status))
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrProductNotFound
	}

	var p product.Product
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, c.loadFailed("/products/"+strconv.Itoa(id), err)
	}
	return &p, nil
}

// Login exchanges credentials for the catalog's opaque auth token
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	body, status, err := c.do(ctx, http.MethodPost, "/auth/login", payload)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", fmt.Errorf("%w: status %d", ErrLoginRejected, status)
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrLoginRejected, err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrLoginRejected)
	}

	return resp.Token, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) error {
	body, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return c.loadFailed(path, fmt.Errorf("unexpected status %d", status))
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return c.loadFailed(path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, c.loadFailed(path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, c.loadFailed(path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, c.loadFailed(path, err)
	}

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}).Debug("Catalog request completed")

	return body, resp.StatusCode, nil
}

func (c *Client) loadFailed(path string, cause error) error {
	c.logger.WithError(cause).WithField("path", path).Warn("Catalog request failed")
	return fmt.Errorf("%w: %s: %v", ErrLoadFailed, path, cause)
}
