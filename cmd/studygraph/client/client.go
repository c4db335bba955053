// Package client is a typed HTTP client for the studygraph server API.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client handles communication with a running studygraph server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base URL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SearchOptions are the optional search filters.
type SearchOptions struct {
	Label      string
	Difficulty string
	Limit      int
	Order      string
}

// Search finds nodes matching a term.
func (c *Client) Search(term string, opts SearchOptions) (*SearchResult, error) {
	params := url.Values{}
	params.Set("q", term)
	if opts.Label != "" {
		params.Set("label", opts.Label)
	}
	if opts.Difficulty != "" {
		params.Set("difficulty", opts.Difficulty)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Order != "" {
		params.Set("order", opts.Order)
	}

	var result SearchResult
	if err := c.get("/api/graph/search?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Node retrieves a single concept by name.
func (c *Client) Node(name string) (*NodeResult, error) {
	var result NodeResult
	if err := c.get("/api/graph/nodes/"+url.PathEscape(name), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// NodeContext retrieves a concept with its neighbourhood up to depth hops.
func (c *Client) NodeContext(name string, depth int) (*ContextResult, error) {
	endpoint := "/api/graph/nodes/" + url.PathEscape(name) + "/context"
	if depth > 0 {
		endpoint += "?depth=" + strconv.Itoa(depth)
	}

	var result ContextResult
	if err := c.get(endpoint, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Topic retrieves a topic with its subtopics.
func (c *Client) Topic(name string) (*TopicResult, error) {
	var result TopicResult
	if err := c.get("/api/graph/topics/"+url.PathEscape(name), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Prerequisites lists what must be learned before a concept.
func (c *Client) Prerequisites(name string) (*PrereqResult, error) {
	var result PrereqResult
	if err := c.get("/api/graph/nodes/"+url.PathEscape(name)+"/prerequisites", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Dependents lists the concepts a concept unlocks.
func (c *Client) Dependents(name string) (*DependentsResult, error) {
	var result DependentsResult
	if err := c.get("/api/graph/nodes/"+url.PathEscape(name)+"/dependents", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Similar lists the other concepts at a concept's difficulty.
func (c *Client) Similar(name string) (*SimilarityResult, error) {
	var result SimilarityResult
	if err := c.get("/api/graph/nodes/"+url.PathEscape(name)+"/similar", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LearningPath finds the shortest prerequisite chain between two concepts.
// Unresolved endpoints come back as a 404 that still carries the result
// envelope, so that outcome decodes instead of erroring.
func (c *Client) LearningPath(start, end string, maxDepth int) (*PathResult, error) {
	params := url.Values{}
	params.Set("start", start)
	params.Set("end", end)
	if maxDepth > 0 {
		params.Set("max_depth", strconv.Itoa(maxDepth))
	}

	resp, err := c.httpClient.Get(c.baseURL + "/api/graph/path?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("path request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, responseError(resp)
	}

	var result PathResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode path result: %w", err)
	}
	return &result, nil
}

// Levels lists every level in curriculum order.
func (c *Client) Levels() (*LevelsResult, error) {
	var result LevelsResult
	if err := c.get("/api/graph/levels", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks that the server is running.
func (c *Client) Health() error {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// get issues a GET against the server and decodes a 200 response into out.
func (c *Client) get(path string, out any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// responseError surfaces the server's error message when it sent one.
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
