// Package wiki implements a MediaWiki action API client with authentication,
// rate limiting, caching, and the siteinfo plumbing that feeds the title codec
// and parser-function hook table.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Dr4goniez/mwbot-ts-sub003/internal/infra"
	"github.com/Dr4goniez/mwbot-ts-sub003/metrics"
)

// MaxConcurrentRequests limits parallel API calls to prevent overwhelming the server
const MaxConcurrentRequests = 3

// Client handles communication with the MediaWiki API
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger

	// Authentication state
	mu          sync.RWMutex
	loggedIn    bool
	csrfToken   string
	tokenExpiry time.Time

	// Rate limiting - semaphore to control concurrent requests
	semaphore chan struct{}

	// Response cache and in-flight request coalescing
	cache    *infra.Cache
	dedup    *infra.RequestDeduplicator
	cacheTTL map[string]time.Duration

	// Fail fast when the API is persistently unresponsive
	breaker *infra.CircuitBreaker
}

// NewClient creates a new MediaWiki API client
func NewClient(config *Config, logger *slog.Logger) *Client {
	jar, _ := cookiejar.New(nil)

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	siteInfoTTL := config.SiteInfoTTL
	if siteInfoTTL <= 0 {
		siteInfoTTL = 60 * time.Minute
	}

	cacheTTL := map[string]time.Duration{
		"siteinfo":     siteInfoTTL,
		"page_info":    2 * time.Minute,
		"page_content": 5 * time.Minute,
		"search":       1 * time.Minute,
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Jar:       jar,
			Transport: transport,
		},
		logger:    logger,
		semaphore: make(chan struct{}, MaxConcurrentRequests),
		cache:     infra.NewCache(infra.DefaultMaxCacheEntries),
		dedup:     infra.NewRequestDeduplicator(),
		cacheTTL:  cacheTTL,
		breaker:   infra.NewCircuitBreaker(),
	}
}

// Close releases background resources held by the client
func (c *Client) Close() {
	c.cache.Close()
}

// getCached retrieves a cached value if it exists and hasn't expired
func (c *Client) getCached(key string) (interface{}, bool) {
	data, ok := c.cache.Get(key)
	metrics.RecordCacheAccess(ok)
	metrics.SetCacheSize(c.cache.Size())
	return data, ok
}

// setCache stores a value in the cache under the TTL class ttlKey
func (c *Client) setCache(key string, data interface{}, ttlKey string) {
	ttl := 5 * time.Minute
	if t, ok := c.cacheTTL[ttlKey]; ok {
		ttl = t
	}
	c.cache.Set(key, data, ttl)
	metrics.SetCacheSize(c.cache.Size())
}

// InvalidateCachePrefix removes all cache entries with keys starting with prefix
func (c *Client) InvalidateCachePrefix(prefix string) {
	c.cache.DeletePrefix(prefix)
}

// apiRequest makes a request to the MediaWiki API with rate limiting
func (c *Client) apiRequest(ctx context.Context, params url.Values) (map[string]interface{}, error) {
	action := params.Get("action")

	if !c.breaker.Allow() {
		stats := c.breaker.Stats()
		return nil, infra.ErrCircuitOpen{
			State:    stats.State,
			RetryAt:  stats.LastFailure.Add(30 * time.Second),
			Failures: stats.ConsecutiveFails,
		}
	}

	// Acquire semaphore slot (rate limiting)
	select {
	case c.semaphore <- struct{}{}:
		defer func() { <-c.semaphore }()
	default:
		metrics.RateLimitWaits.Inc()
		select {
		case c.semaphore <- struct{}{}:
			defer func() { <-c.semaphore }()
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled while waiting for rate limiter: %w", ctx.Err())
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	params.Set("format", "json")
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.APIRetries.WithLabelValues(action).Inc()
			backoff := time.Duration(attempt*attempt) * 100 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled during backoff: %w", ctx.Err())
			}
		}

		// Fresh request for each attempt (body is consumed on read)
		req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL, strings.NewReader(params.Encode()))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", c.config.UserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			c.logger.Warn("API request failed, retrying",
				"attempt", attempt+1,
				"max_retries", c.config.MaxRetries,
				"error", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			// Don't retry client errors (4xx) except rate limiting (429)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				metrics.RecordAPICall(action, time.Since(start).Seconds(), false, strconv.Itoa(resp.StatusCode))
				return nil, fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
					if seconds, parseErr := strconv.Atoi(retryAfter); parseErr == nil {
						c.logger.Warn("Rate limited, waiting",
							"retry_after", seconds,
							"attempt", attempt+1)
						select {
						case <-time.After(time.Duration(seconds) * time.Second):
						case <-ctx.Done():
							return nil, fmt.Errorf("context cancelled during rate limit wait: %w", ctx.Err())
						}
						continue
					}
				}
			}

			lastErr = fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
			c.logger.Warn("API returned non-OK status",
				"status", resp.StatusCode,
				"attempt", attempt+1)
			continue
		}

		var result map[string]interface{}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}

		// The server answered; an error member is an application-level
		// failure, not an availability problem.
		c.breaker.RecordSuccess()

		if errObj := getMap(result["error"]); errObj != nil {
			apiErr := &APIError{
				Code: getString(errObj["code"]),
				Info: getString(errObj["info"]),
			}
			metrics.RecordAPICall(action, time.Since(start).Seconds(), false, apiErr.Code)
			return nil, apiErr
		}

		metrics.RecordAPICall(action, time.Since(start).Seconds(), true, "")
		return result, nil
	}

	c.breaker.RecordFailure()
	metrics.RecordAPICall(action, time.Since(start).Seconds(), false, "exhausted")
	return nil, lastErr
}

// checkExistingSession verifies if we're already logged in via existing cookies
func (c *Client) checkExistingSession(ctx context.Context) bool {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "userinfo")

	resp, err := c.apiRequest(ctx, params)
	if err != nil {
		return false
	}

	userinfo := getMap(getMap(resp["query"])["userinfo"])
	if userinfo == nil {
		return false
	}

	// A user ID of 0 means anonymous
	userID := getInt(userinfo["id"])
	if userID == 0 {
		return false
	}

	c.logger.Debug("Found existing session", "user", getString(userinfo["name"]), "id", userID)
	return true
}

// resetCookies clears all cookies to allow fresh login
func (c *Client) resetCookies() {
	jar, _ := cookiejar.New(nil)
	c.httpClient.Jar = jar
	c.loggedIn = false
	c.csrfToken = ""
	c.tokenExpiry = time.Time{}
	c.logger.Debug("Cookies reset for fresh login")
}

// login authenticates with the wiki using bot password
func (c *Client) login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loggedIn && time.Now().Before(c.tokenExpiry) {
		return nil
	}

	if !c.config.HasCredentials() {
		metrics.AuthFailures.WithLabelValues("no_credentials").Inc()
		return &AuthenticationError{
			Code:      AuthCodeInvalidCredentials,
			Operation: "login",
			Reason:    "no credentials configured; set MEDIAWIKI_USERNAME and MEDIAWIKI_PASSWORD",
		}
	}

	// Reusing an existing cookie session prevents the
	// "Cannot log in when using BotPasswordSessionProvider" error
	if c.checkExistingSession(ctx) {
		c.loggedIn = true
		c.tokenExpiry = time.Now().Add(60 * time.Minute)
		c.logger.Info("Using existing session")
		return nil
	}

	if err := c.doLogin(ctx); err != nil {
		if strings.Contains(err.Error(), "BotPasswordSessionProvider") {
			c.logger.Warn("BotPasswordSessionProvider conflict detected, resetting cookies")
			c.resetCookies()
			if err := c.doLogin(ctx); err != nil {
				metrics.AuthFailures.WithLabelValues("login").Inc()
				return err
			}
		} else {
			metrics.AuthFailures.WithLabelValues("login").Inc()
			return err
		}
	}

	c.loggedIn = true
	c.tokenExpiry = time.Now().Add(60 * time.Minute)
	c.logger.Info("Successfully logged in", "username", c.config.Username)
	return nil
}

// doLogin fetches a login token and performs the login action once
func (c *Client) doLogin(ctx context.Context) error {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "tokens")
	params.Set("type", "login")

	resp, err := c.apiRequest(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to get login token: %w", err)
	}

	loginToken := getString(getMap(getMap(resp["query"])["tokens"])["logintoken"])
	if loginToken == "" {
		return fmt.Errorf("no login token in response")
	}

	params = url.Values{}
	params.Set("action", "login")
	params.Set("lgname", c.config.Username)
	params.Set("lgpassword", c.config.Password)
	params.Set("lgtoken", loginToken)

	resp, err = c.apiRequest(ctx, params)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	login := getMap(resp["login"])
	if login == nil {
		return fmt.Errorf("unexpected login response")
	}

	if result := getString(login["result"]); result != "Success" {
		if reason := login["reason"]; reason != nil {
			return fmt.Errorf("login failed: %s - %v", result, reason)
		}
		return fmt.Errorf("login failed: %s", result)
	}
	return nil
}

// getCSRFToken gets a CSRF token for editing
func (c *Client) getCSRFToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.csrfToken != "" && time.Now().Before(c.tokenExpiry) {
		token := c.csrfToken
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	if err := c.login(ctx); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "tokens")
	params.Set("type", "csrf")

	resp, err := c.apiRequest(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to get CSRF token: %w", err)
	}

	csrfToken := getString(getMap(getMap(resp["query"])["tokens"])["csrftoken"])
	if csrfToken == "" {
		metrics.AuthFailures.WithLabelValues("csrf_token").Inc()
		return "", &AuthenticationError{
			Code:      AuthCodeTokenExpired,
			Operation: "getCSRFToken",
			Reason:    "no CSRF token in response",
		}
	}

	c.mu.Lock()
	c.csrfToken = csrfToken
	c.tokenExpiry = time.Now().Add(60 * time.Minute)
	c.mu.Unlock()

	return csrfToken, nil
}

// EnsureLoggedIn ensures the client is logged in (for wikis requiring auth for read)
func (c *Client) EnsureLoggedIn(ctx context.Context) error {
	c.mu.RLock()
	loggedIn := c.loggedIn && time.Now().Before(c.tokenExpiry)
	c.mu.RUnlock()

	if loggedIn {
		return nil
	}
	return c.login(ctx)
}

// truncateContent truncates content if it exceeds the limit
func truncateContent(content string, limit int) (string, bool) {
	if len(content) <= limit {
		return content, false
	}
	msg := fmt.Sprintf("\n\n---\n[CONTENT TRUNCATED] Showing %d of %d characters.",
		limit, len(content))
	return content[:limit] + msg, true
}

// normalizeLimit ensures limit is within bounds
func normalizeLimit(limit, defaultVal, maxVal int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit > maxVal {
		return maxVal
	}
	return limit
}

// Loosely-typed accessors for the action API's JSON shapes. A nil/zero result
// stands in for a missing or mistyped member.

func getMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func getSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func getString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func getInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

func getBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		// The action API renders boolean flags as empty-string members.
		return true
	}
	return v != nil
}
