// Package helius fetches enhanced transactions and balances for a wallet
// from a Helius-compatible indexer REST API.
package helius

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wallet-flow-backend/internal/cache"
	"wallet-flow-backend/internal/models"
	"wallet-flow-backend/internal/stats"
	"wallet-flow-backend/internal/utils"
)

const component = "helius"

// Config holds indexer client settings
type Config struct {
	BaseURL    string         `toml:"base_url"`
	APIKey     string         `toml:"api_key"`
	PageLimit  int            `toml:"page_limit"`
	MaxPages   int            `toml:"max_pages"`
	WindowDays int            `toml:"window_days"`
	Timeout    time.Duration  `toml:"timeout"`
	CacheTTL   time.Duration  `toml:"cache_ttl"`
	Location   *time.Location `toml:"-"`
}

// DefaultConfig returns the indexer defaults: 100 per page, at most 20 pages
// reaching back 15 days.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "https://api.helius.xyz",
		PageLimit:  100,
		MaxPages:   20,
		WindowDays: stats.DefaultWindowDays,
		Timeout:    10 * time.Second,
		CacheTTL:   time.Minute,
	}
}

// Client is the indexer REST client. The HTTP client is shared across calls
// for connection pooling.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      cache.Cache
}

// New creates a client. c may be nil to disable response caching.
func New(cfg Config, c cache.Cache) *Client {
	defaults := DefaultConfig()
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = defaults.PageLimit
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaults.MaxPages
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = defaults.WindowDays
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20,
			MaxConnsPerHost:       50,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		cache:      c,
	}
}

// Cutoff returns the oldest instant a fetch reaches back to: now minus the
// window, truncated to the start of that local day.
func (c *Client) Cutoff(now time.Time) time.Time {
	back := now.Add(-time.Duration(c.config.WindowDays) * 24 * time.Hour)
	return stats.StartOfDay(back, c.config.Location)
}

// FetchTransactions pages backwards through the wallet's history, newest
// first, until a short page, the cutoff, or the page ceiling. Transactions
// older than the cutoff are dropped.
func (c *Client) FetchTransactions(ctx context.Context, wallet string, now time.Time) ([]models.Transaction, error) {
	cutoff := c.Cutoff(now)
	var (
		all        []models.Transaction
		before     string
		pages      int
		hitCeiling bool
	)

	for {
		if pages >= c.config.MaxPages {
			hitCeiling = true
			break
		}
		page, err := c.fetchPage(ctx, wallet, before)
		if err != nil {
			return nil, err
		}
		pages++

		if len(page) == 0 {
			break
		}

		reachedCutoff := false
		for _, tx := range page {
			if tx.Time().Before(cutoff) {
				reachedCutoff = true
				continue
			}
			all = append(all, tx)
		}

		utils.FetcherLogger.Debug("Page %d for %s: %d transactions (kept %d total)",
			pages, utils.ShortenAddress(wallet), len(page), len(all))

		if reachedCutoff || len(page) < c.config.PageLimit {
			break
		}
		before = page[len(page)-1].Signature
		if before == "" {
			break
		}
	}

	if hitCeiling {
		utils.FetcherLogger.Warn("Page ceiling (%d) reached for %s, history may be incomplete",
			c.config.MaxPages, utils.ShortenAddress(wallet))
	}
	utils.FetcherLogger.Info("Fetched %d transactions for %s in %d pages",
		len(all), utils.ShortenAddress(wallet), pages)

	models.SortTransactionsDesc(all)
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, wallet, before string) ([]models.Transaction, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(c.config.PageLimit))
	if before != "" {
		query.Set("before", before)
	}

	cursor := before
	if cursor == "" {
		cursor = "head"
	}

	var page []models.Transaction
	path := fmt.Sprintf("/v0/addresses/%s/transactions", url.PathEscape(wallet))
	if err := c.getJSON(ctx, path, query, cache.Key("tx", wallet, cursor), &page); err != nil {
		return nil, err
	}
	return page, nil
}

// getJSON performs a GET against the indexer, consulting the cache first,
// and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, cacheKey string, out interface{}) error {
	if c.config.APIKey == "" {
		return utils.NewAppError(utils.ErrorTypeConfig, "MISSING_API_KEY", "indexer API key is not configured", component)
	}

	if c.cache != nil {
		if data, err := c.cache.Get(ctx, cacheKey); err == nil {
			if err := json.Unmarshal(data, out); err == nil {
				utils.CacheLogger.Debug("Cache hit %s", cacheKey)
				return nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			utils.CacheLogger.Warn("Cache read failed for %s: %v", cacheKey, err)
		}
	}

	query.Set("api-key", c.config.APIKey)
	endpoint := c.config.BaseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeInternal, "REQUEST_BUILD_FAILED", "error creating request", component)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeNetwork, "REQUEST_FAILED", "indexer request failed", component).
			WithRetryable(true).
			WithContext("path", path)
	}
	defer resp.Body.Close()

	utils.FetcherLogger.Debug("GET %s -> %d in %v", path, resp.StatusCode, time.Since(start))

	if err := statusError(resp, path); err != nil {
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeNetwork, "READ_FAILED", "error reading indexer response", component).
			WithRetryable(true)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return utils.WrapError(err, utils.ErrorTypeInternal, "DECODE_FAILED", "error decoding indexer response", component).
			WithContext("path", path)
	}

	if c.cache != nil && c.config.CacheTTL > 0 {
		if err := c.cache.Set(ctx, cacheKey, data, c.config.CacheTTL); err != nil {
			utils.CacheLogger.Warn("Cache write failed for %s: %v", cacheKey, err)
		}
	}
	return nil
}

func statusError(resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return utils.NewAppError(utils.ErrorTypeAuth, "INVALID_API_KEY", "invalid API key", component).
			WithContext("status", resp.StatusCode)
	case http.StatusTooManyRequests:
		return utils.NewAppError(utils.ErrorTypeNetwork, "RATE_LIMITED", "indexer rate limit exceeded", component).
			WithRetryable(true).
			WithContext("status", resp.StatusCode)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return utils.NewAppError(utils.ErrorTypeNetwork, "HTTP_STATUS", fmt.Sprintf("indexer returned status %d", resp.StatusCode), component).
		WithDetails(string(body)).
		WithRetryable(resp.StatusCode >= 500).
		WithContext("status", resp.StatusCode).
		WithContext("path", path)
}
