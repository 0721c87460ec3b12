package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dr4goniez/mwbot-ts-sub003/internal/infra"
)

// createMockClient creates a client pointed at a mock server with credentials
func createMockClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	config := &Config{
		BaseURL:    server.URL,
		Username:   "TestUser",
		Password:   "TestPass",
		Timeout:    5 * time.Second,
		MaxRetries: 1,
		UserAgent:  "TestClient/1.0",
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewClient(config, logger)
}

// siteinfoResponse is the canned siteinfo payload served by mockMediaWikiServer.
// It carries enough namespaces, magic words, and function hooks for the title
// codec and hook table to work against the fixture wiki.
func siteinfoResponse() map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"general": map[string]interface{}{
				"sitename":    "TestWiki",
				"mainpage":    "Main Page",
				"base":        "http://test.wiki/wiki/Main_Page",
				"generator":   "MediaWiki 1.41.0",
				"lang":        "en",
				"articlepath": "/wiki/$1",
				"server":      "http://test.wiki",
				"timezone":    "UTC",
			},
			"namespaces": map[string]interface{}{
				"0":   map[string]interface{}{"id": 0, "case": "first-letter", "*": ""},
				"1":   map[string]interface{}{"id": 1, "case": "first-letter", "*": "Talk", "canonical": "Talk"},
				"6":   map[string]interface{}{"id": 6, "case": "first-letter", "*": "File", "canonical": "File"},
				"10":  map[string]interface{}{"id": 10, "case": "first-letter", "*": "Template", "canonical": "Template"},
				"828": map[string]interface{}{"id": 828, "case": "case-sensitive", "*": "Module", "canonical": "Module"},
			},
			"namespacealiases": []interface{}{
				map[string]interface{}{"id": 6, "*": "Image"},
				map[string]interface{}{"id": 10, "*": "T"},
			},
			"magicwords": []interface{}{
				map[string]interface{}{"name": "if", "aliases": []interface{}{"if"}},
				map[string]interface{}{"name": "invoke", "aliases": []interface{}{"invoke"}},
				map[string]interface{}{"name": "urlencode", "aliases": []interface{}{"urlencode"}},
				map[string]interface{}{"name": "notoc", "aliases": []interface{}{"__NOTOC__"}},
			},
			"functionhooks":  []interface{}{"if", "invoke", "urlencode"},
			"interwikimap": []interface{}{
				map[string]interface{}{"prefix": "wikt", "url": "https://en.wiktionary.org/wiki/$1"},
				map[string]interface{}{"prefix": "commons", "url": "https://commons.wikimedia.org/wiki/$1"},
			},
		},
	}
}

// mockMediaWikiServer creates a test server that returns mock MediaWiki responses.
// It automatically handles login, token, and siteinfo requests and delegates
// everything else to handler.
func mockMediaWikiServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		action := r.FormValue("action")
		meta := r.FormValue("meta")

		if action == "query" && meta == "userinfo" {
			writeJSON(w, map[string]interface{}{
				"query": map[string]interface{}{
					"userinfo": map[string]interface{}{
						"id":   float64(1),
						"name": "TestUser",
					},
				},
			})
			return
		}

		if action == "query" && meta == "tokens" {
			tokens := map[string]interface{}{}
			switch r.FormValue("type") {
			case "login":
				tokens["logintoken"] = "test-login-token"
			case "csrf":
				tokens["csrftoken"] = "test-csrf-token"
			}
			writeJSON(w, map[string]interface{}{
				"query": map[string]interface{}{"tokens": tokens},
			})
			return
		}

		if action == "query" && meta == "siteinfo" {
			writeJSON(w, siteinfoResponse())
			return
		}

		if action == "login" {
			writeJSON(w, map[string]interface{}{
				"login": map[string]interface{}{"result": "Success"},
			})
			return
		}

		handler(w, r)
	}))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// mockOverrideServer is mockMediaWikiServer with per-endpoint overrides for
// the auto-handled requests. Recognized keys: "userinfo", "tokens",
// "siteinfo", "login".
func mockOverrideServer(t *testing.T, overrides map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		action := r.FormValue("action")
		meta := r.FormValue("meta")

		var key string
		switch {
		case action == "query" && meta == "userinfo":
			key = "userinfo"
		case action == "query" && meta == "tokens":
			key = "tokens"
		case action == "query" && meta == "siteinfo":
			key = "siteinfo"
		case action == "login":
			key = "login"
		}
		if h, ok := overrides[key]; key != "" && ok {
			h(w, r)
			return
		}

		switch key {
		case "userinfo":
			// Anonymous by default so login flows run in full.
			writeJSON(w, map[string]interface{}{
				"query": map[string]interface{}{
					"userinfo": map[string]interface{}{
						"id":   float64(0),
						"name": "",
						"anon": "",
					},
				},
			})
		case "tokens":
			tokens := map[string]interface{}{}
			switch r.FormValue("type") {
			case "login":
				tokens["logintoken"] = "test-login-token"
			case "csrf":
				tokens["csrftoken"] = "test-csrf-token"
			}
			writeJSON(w, map[string]interface{}{
				"query": map[string]interface{}{"tokens": tokens},
			})
		case "siteinfo":
			writeJSON(w, siteinfoResponse())
		case "login":
			writeJSON(w, map[string]interface{}{
				"login": map[string]interface{}{"result": "Success"},
			})
		default:
			writeJSON(w, map[string]interface{}{"query": map[string]interface{}{}})
		}
	}))
}

func TestAPIRequest_ErrorMember(t *testing.T) {
	server := mockMediaWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"error": map[string]interface{}{
				"code": "badtoken",
				"info": "Invalid CSRF token.",
			},
		})
	})
	defer server.Close()

	client := createMockClient(t, server)
	defer client.Close()

	params := url.Values{}
	params.Set("action", "edit")

	_, err := client.apiRequest(context.Background(), params)
	if err == nil {
		t.Fatal("Expected error for API error member")
	}
	if !IsAPIError(err, "badtoken") {
		t.Errorf("Expected badtoken API error, got: %v", err)
	}
}

func TestAPIRequest_ClientErrorNoRetry(t *testing.T) {
	var requests int32
	server := mockMediaWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not found"))
	})
	defer server.Close()

	client := createMockClient(t, server)
	client.config.MaxRetries = 3
	defer client.Close()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "nonexistent")

	_, err := client.apiRequest(context.Background(), params)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "client error 404") {
		t.Errorf("Expected client error 404, got: %v", err)
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("Expected 1 request (no retry on 4xx), got %d", n)
	}
}

func TestAPIRequest_RetryThenSuccess(t *testing.T) {
	var requests int32
	server := mockMediaWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{
			"query": map[string]interface{}{},
		})
	})
	defer server.Close()

	client := createMockClient(t, server)
	client.config.MaxRetries = 2
	defer client.Close()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")

	resp, err := client.apiRequest(context.Background(), params)
	if err != nil {
		t.Fatalf("Expected success after retry, got: %v", err)
	}
	if resp == nil {
		t.Fatal("Expected non-nil response")
	}
	if n := atomic.LoadInt32(&requests); n != 2 {
		t.Errorf("Expected 2 requests, got %d", n)
	}
}

func TestAPIRequest_RateLimitRetryAfter(t *testing.T) {
	var requests int32
	server := mockMediaWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(w, map[string]interface{}{
			"query": map[string]interface{}{},
		})
	})
	defer server.Close()

	client := createMockClient(t, server)
	client.config.MaxRetries = 2
	defer client.Close()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")

	_, err := client.apiRequest(context.Background(), params)
	if err != nil {
		t.Fatalf("Expected success after rate limit wait, got: %v", err)
	}
	if n := atomic.LoadInt32(&requests); n != 2 {
		t.Errorf("Expected 2 requests, got %d", n)
	}
}

func TestAPIRequest_ExhaustedRetries(t *testing.T) {
	server := mockMediaWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	client := createMockClient(t, server)
	client.config.MaxRetries = 0
	defer client.Close()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")

	_, err := client.apiRequest(context.Background(), params)
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("Expected status 500 in error, got: %v", err)
	}
}

func TestAPIRequest_CircuitBreakerOpens(t *testing.T) {
	server := mockMediaWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	client := createMockClient(t, server)
	client.config.MaxRetries = 0
	defer client.Close()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")

	// The breaker opens after five consecutive failed requests.
	for i := 0; i < 5; i++ {
		if _, err := client.apiRequest(context.Background(), params); err == nil {
			t.Fatalf("Expected failure on request %d", i+1)
		}
	}

	_, err := client.apiRequest(context.Background(), params)
	if err == nil {
		t.Fatal("Expected circuit breaker to reject the request")
	}
	var open infra.ErrCircuitOpen
	if !errors.As(err, &open) {
		t.Fatalf("Expected ErrCircuitOpen, got: %v", err)
	}
	if open.State != "open" {
		t.Errorf("State = %q, want open", open.State)
	}
	if open.Failures < 5 {
		t.Errorf("Failures = %d, want >= 5", open.Failures)
	}
}

func TestAPIRequest_BreakerIgnoresAPIErrors(t *testing.T) {
	server := mockMediaWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"error": map[string]interface{}{
				"code": "missingtitle",
				"info": "The page you specified doesn't exist.",
			},
		})
	})
	defer server.Close()

	client := createMockClient(t, server)
	defer client.Close()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")

	// Application-level errors count as answered requests, so the
	// breaker stays closed no matter how many arrive.
	for i := 0; i < 10; i++ {
		_, err := client.apiRequest(context.Background(), params)
		if !IsAPIError(err, "missingtitle") {
			t.Fatalf("Expected missingtitle API error on request %d, got: %v", i+1, err)
		}
	}
	if state := client.breaker.State(); state != infra.CircuitClosed {
		t.Errorf("Breaker state = %v, want closed", state)
	}
}

func TestAPIRequest_ContextCancelled(t *testing.T) {
	server := mockMediaWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"query": map[string]interface{}{}})
	})
	defer server.Close()

	client := createMockClient(t, server)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	params := url.Values{}
	params.Set("action", "query")

	_, err := client.apiRequest(ctx, params)
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}
