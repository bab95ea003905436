// Package nrdb fetches card identities from the NetrunnerDB public API.
package nrdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/models"
)

// DefaultURL is the public card endpoint.
const DefaultURL = "https://netrunnerdb.com/api/2.0/public/cards"

// Card is the subset of a NetrunnerDB card record the client reads.
type Card struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	TypeCode    string `json:"type_code"`
	SideCode    string `json:"side_code"`
	FactionCode string `json:"faction_code"`
}

// CardListResponse is the envelope returned by the cards endpoint.
type CardListResponse struct {
	Data    []Card `json:"data"`
	Success bool   `json:"success"`
}

// Client defines the interface for retrieving identities.
type Client interface {
	// FetchIdentities returns every corp and runner identity, sorted by name.
	FetchIdentities(ctx context.Context) ([]models.Identity, error)
	// BaseURL returns the configured endpoint
	BaseURL() string
}

// HTTPClient talks to NetrunnerDB over HTTP and caches the identity list.
type HTTPClient struct {
	baseURL    string
	cachePath  string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logger.Logger

	mu     sync.Mutex
	cached []models.Identity
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithCachePath stores fetched identities in a JSON file and reads them back
// on later starts.
func WithCachePath(path string) Option {
	return func(c *HTTPClient) { c.cachePath = path }
}

// WithRateLimit caps outbound requests per second. Zero or less disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *HTTPClient) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewHTTPClient creates a NetrunnerDB client.
func NewHTTPClient(baseURL string, timeout time.Duration, log logger.Logger, opts ...Option) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured endpoint
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// FetchIdentities returns identities from memory, then the cache file, then the API.
func (c *HTTPClient) FetchIdentities(ctx context.Context) ([]models.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil {
		return clone(c.cached), nil
	}

	if ids, err := c.readCache(); err == nil {
		c.log.Debug("Identities loaded from cache", "path", c.cachePath, "count", len(ids))
		c.cached = ids
		return clone(ids), nil
	}

	ids, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.cached = ids
	if err := c.writeCache(ids); err != nil {
		c.log.Warn("Failed to write identity cache", "path", c.cachePath, "error", err)
	}
	return clone(ids), nil
}

func (c *HTTPClient) fetch(ctx context.Context) ([]models.Identity, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	c.log.Debug("NetrunnerDB request", "method", "GET", "url", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NetrunnerDB: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("NetrunnerDB response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NetrunnerDB returned status %d", resp.StatusCode)
	}

	var cards CardListResponse
	if err := json.Unmarshal(body, &cards); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return Identities(cards.Data), nil
}

// Identities keeps corp and runner identity cards and sorts them by name.
func Identities(cards []Card) []models.Identity {
	ids := make([]models.Identity, 0)
	for _, card := range cards {
		if card.TypeCode != "identity" {
			continue
		}
		if card.SideCode != "corp" && card.SideCode != "runner" {
			continue
		}
		ids = append(ids, models.Identity{
			Code:    card.Code,
			Name:    card.Title,
			Side:    card.SideCode,
			Faction: card.FactionCode,
		})
	}
	sort.SliceStable(ids, func(i, j int) bool {
		if ids[i].Name != ids[j].Name {
			return ids[i].Name < ids[j].Name
		}
		return ids[i].Code < ids[j].Code
	})
	return ids
}

func (c *HTTPClient) readCache() ([]models.Identity, error) {
	if c.cachePath == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return nil, err
	}
	var ids []models.Identity
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}
	return ids, nil
}

func (c *HTTPClient) writeCache(ids []models.Identity) error {
	if c.cachePath == "" {
		return nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return os.WriteFile(c.cachePath, data, 0o644)
}

func clone(ids []models.Identity) []models.Identity {
	out := make([]models.Identity, len(ids))
	copy(out, ids)
	return out
}
