package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// hostRewriteTransport sends every request to target's host, so a test can
// point code with a fixed API base URL at an httptest server.
type hostRewriteTransport struct{ target *url.URL }

func (h hostRewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = h.target.Scheme
	req.URL.Host = h.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func TestWebSearchTool_Name(t *testing.T) {
	tool := NewWebSearchTool(&Config{})
	if tool.Name() != "web_search" {
		t.Errorf("expected name 'web_search', got '%s'", tool.Name())
	}
}

func TestWebSearchTool_Description(t *testing.T) {
	tool := NewWebSearchTool(&Config{})
	desc := tool.Description()
	if desc == "" {
		t.Error("description should not be empty")
	}
}

func TestWebSearchTool_Schema(t *testing.T) {
	tool := NewWebSearchTool(&Config{})
	schema := tool.Schema()

	var schemaMap map[string]interface{}
	if err := json.Unmarshal(schema, &schemaMap); err != nil {
		t.Fatalf("failed to unmarshal schema: %v", err)
	}

	// Check that required fields are present
	props, ok := schemaMap["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("schema should have properties")
	}

	if _, ok := props["query"]; !ok {
		t.Error("schema should have query property")
	}

	required, ok := schemaMap["required"].([]interface{})
	if !ok || len(required) == 0 {
		t.Error("schema should have required fields")
	}
}

func TestWebSearchTool_Execute_InvalidParams(t *testing.T) {
	tool := NewWebSearchTool(&Config{})

	tests := []struct {
		name   string
		params string
	}{
		{
			name:   "invalid JSON",
			params: `{invalid}`,
		},
		{
			name:   "missing query",
			params: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.Execute(context.Background(), json.RawMessage(tt.params))
			if err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWebSearchTool_Execute_DuckDuckGo(t *testing.T) {
	t.Skip("Skipping DuckDuckGo test as it requires URL injection for proper mocking")
	// Note: To properly test DuckDuckGo backend, we would need to:
	// 1. Make the DuckDuckGo API base URL configurable
	// 2. Inject the test server URL in the configuration
	// 3. This is left as a future improvement for better testability
}

func TestWebSearchTool_Execute_SearXNG(t *testing.T) {
	// Create a mock SearXNG server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("expected path /search, got %s", r.URL.Path)
		}

		query := r.URL.Query().Get("q")
		if query == "" {
			t.Error("query parameter is missing")
		}

		response := map[string]interface{}{
			"query": query,
			"results": []map[string]interface{}{
				{
					"title":   "Test Result 1",
					"url":     "https://example.com/1",
					"content": "This is the first test result",
				},
				{
					"title":   "Test Result 2",
					"url":     "https://example.com/2",
					"content": "This is the second test result",
				},
				{
					"title":   "Test Result 3",
					"url":     "https://example.com/3",
					"content": "This is the third test result",
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	// Create tool with SearXNG configuration
	tool := NewWebSearchTool(&Config{
		SearXNGURL:     server.URL,
		DefaultBackend: BackendSearXNG,
	})

	params := SearchParams{
		Query:       "test query",
		ResultCount: 3,
	}

	paramsJSON, _ := json.Marshal(params)

	content, err := tool.Execute(context.Background(), paramsJSON)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// Parse the response
	var response SearchResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if response.Query != "test query" {
		t.Errorf("expected query 'test query', got '%s'", response.Query)
	}

	if response.Backend != BackendSearXNG {
		t.Errorf("expected backend SearXNG, got %s", response.Backend)
	}

	if len(response.Results) != 3 {
		t.Errorf("expected 3 results, got %d", len(response.Results))
	}

	// Check first result
	if response.Results[0].Title != "Test Result 1" {
		t.Errorf("expected title 'Test Result 1', got '%s'", response.Results[0].Title)
	}
}

func TestWebSearchTool_Execute_Brave(t *testing.T) {
	// Create a mock Brave API server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check authentication
		apiKey := r.Header.Get("X-Subscription-Token")
		if apiKey != "test-api-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		// Web search response
		response := map[string]interface{}{
			"web": map[string]interface{}{
				"results": []map[string]interface{}{
					{
						"title":       "Brave Result 1",
						"url":         "https://example.com/brave1",
						"description": "First result from Brave",
					},
					{
						"title":       "Brave Result 2",
						"url":         "https://example.com/brave2",
						"description": "Second result from Brave",
					},
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	// Create tool with Brave configuration
	tool := NewWebSearchTool(&Config{
		BraveAPIKey:    "test-api-key",
		DefaultBackend: BackendBraveSearch,
	})

	// The Brave API base URL is fixed, so redirect the tool's requests to the
	// mock server through the HTTP client's transport.
	serverURL, _ := url.Parse(server.URL)
	tool.httpClient = &http.Client{Transport: hostRewriteTransport{target: serverURL}}

	params := SearchParams{
		Query:       "test query",
		ResultCount: 2,
		Backend:     BackendBraveSearch,
	}

	paramsJSON, _ := json.Marshal(params)

	_, err := tool.Execute(context.Background(), paramsJSON)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
}

func TestWebSearchTool_Caching(t *testing.T) {
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		response := map[string]interface{}{
			"query": r.URL.Query().Get("q"),
			"results": []map[string]interface{}{
				{
					"title":   "Cached Result",
					"url":     "https://example.com/cached",
					"content": "This result should be cached",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	// Create tool with short cache TTL
	tool := NewWebSearchTool(&Config{
		SearXNGURL:     server.URL,
		DefaultBackend: BackendSearXNG,
		CacheTTL:       2, // 2 seconds
	})

	params := SearchParams{
		Query:       "cache test",
		ResultCount: 1,
	}
	paramsJSON, _ := json.Marshal(params)

	// First call - should hit the server
	if _, err := tool.Execute(context.Background(), paramsJSON); err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 server call, got %d", callCount)
	}

	// Second call - should use cache
	if _, err := tool.Execute(context.Background(), paramsJSON); err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected still 1 server call (cached), got %d", callCount)
	}

	// Wait for cache to expire
	time.Sleep(3 * time.Second)

	// Third call - should hit the server again
	if _, err := tool.Execute(context.Background(), paramsJSON); err != nil {
		t.Fatalf("third Execute failed: %v", err)
	}

	if callCount != 2 {
		t.Errorf("expected 2 server calls after cache expiry, got %d", callCount)
	}
}

func TestWebSearchTool_SearchTypes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		categories := r.URL.Query().Get("categories")

		response := map[string]interface{}{
			"query": r.URL.Query().Get("q"),
			"results": []map[string]interface{}{
				{
					"title":   "Result for " + categories,
					"url":     "https://example.com/" + categories,
					"content": "Content for " + categories,
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	tool := NewWebSearchTool(&Config{
		SearXNGURL:     server.URL,
		DefaultBackend: BackendSearXNG,
	})

	tests := []struct {
		name        string
		searchType  SearchType
		expectedCat string
	}{
		{"web search", SearchTypeWeb, "general"},
		{"image search", SearchTypeImage, "images"},
		{"news search", SearchTypeNews, "news"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := SearchParams{
				Query:       "test",
				Type:        tt.searchType,
				ResultCount: 1,
			}
			paramsJSON, _ := json.Marshal(params)

			content, err := tool.Execute(context.Background(), paramsJSON)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}

			var response SearchResponse
			if err := json.Unmarshal([]byte(content), &response); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}

			if response.Type != tt.searchType {
				t.Errorf("expected type %s, got %s", tt.searchType, response.Type)
			}
		})
	}
}

func TestWebSearchTool_ResultCountLimit(t *testing.T) {
	tool := NewWebSearchTool(&Config{
		DefaultBackend:     BackendSearXNG,
		DefaultResultCount: 5,
	})

	tests := []struct {
		name          string
		requestCount  int
		expectedCount int
	}{
		{"default count", 0, 5},
		{"custom count", 3, 3},
		{"over limit", 25, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := SearchParams{
				Query:       "test",
				ResultCount: tt.requestCount,
			}

			// We can't easily test the actual limit without mocking,
			// but we can verify the parameter normalization
			if params.ResultCount == 0 {
				params.ResultCount = tool.config.DefaultResultCount
			} else if params.ResultCount > 20 {
				params.ResultCount = 20
			}

			if params.ResultCount != tt.expectedCount {
				t.Errorf("expected count %d, got %d", tt.expectedCount, params.ResultCount)
			}
		})
	}
}

func TestWebSearchTool_DefaultBackendSelection(t *testing.T) {
	tests := []struct {
		name            string
		config          *Config
		expectedBackend SearchBackend
	}{
		{
			name: "SearXNG when URL provided",
			config: &Config{
				SearXNGURL: "http://searxng.example.com",
			},
			expectedBackend: BackendSearXNG,
		},
		{
			name:            "DuckDuckGo when no config",
			config:          &Config{},
			expectedBackend: BackendDuckDuckGo,
		},
		{
			name: "Explicit backend",
			config: &Config{
				DefaultBackend: BackendBraveSearch,
				BraveAPIKey:    "key",
			},
			expectedBackend: BackendBraveSearch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := NewWebSearchTool(tt.config)
			if tool.config.DefaultBackend != tt.expectedBackend {
				t.Errorf("expected backend %s, got %s", tt.expectedBackend, tool.config.DefaultBackend)
			}
		})
	}
}

func TestWebSearchTool_SearchAdaptsToOutreachSearcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"query": r.URL.Query().Get("q"),
			"results": []map[string]interface{}{
				{"title": "Lead Co", "url": "https://example.com/lead", "content": "a prospective lead"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	tool := NewWebSearchTool(&Config{SearXNGURL: server.URL, DefaultBackend: BackendSearXNG})

	content, err := tool.Search(context.Background(), "lead co", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	var response SearchResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Query != "lead co" {
		t.Errorf("Query = %q, want lead co", response.Query)
	}
}

func TestSearchParams_Validation(t *testing.T) {
	// Create a mock server for testing
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"query": r.URL.Query().Get("q"),
			"results": []map[string]interface{}{
				{
					"title":   "Test Result",
					"url":     "https://example.com/test",
					"content": "Test content",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	tool := NewWebSearchTool(&Config{
		SearXNGURL:     server.URL,
		DefaultBackend: BackendSearXNG,
	})

	tests := []struct {
		name        string
		params      SearchParams
		shouldError bool
	}{
		{
			name: "valid params",
			params: SearchParams{
				Query:       "test query",
				Type:        SearchTypeWeb,
				ResultCount: 5,
			},
			shouldError: false,
		},
		{
			name: "empty query",
			params: SearchParams{
				Query: "",
			},
			shouldError: true,
		},
		{
			name: "minimal valid params",
			params: SearchParams{
				Query: "test",
			},
			shouldError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paramsJSON, _ := json.Marshal(tt.params)
			_, err := tool.Execute(context.Background(), paramsJSON)

			if tt.shouldError && err == nil {
				t.Error("expected error result but got success")
			}

			if !tt.shouldError && err != nil {
				t.Errorf("expected success but got error: %v", err)
			}
		})
	}
}
