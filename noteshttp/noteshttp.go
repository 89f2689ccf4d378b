// Package noteshttp implements [voxd.NotesClient] over the notes backend's
// local REST API.
package noteshttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"voxd"
)

const defaultBaseURL = "http://127.0.0.1:27123"

// Interface compliance check.
var _ voxd.NotesClient = (*Client)(nil)

// Client talks to the notes backend.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a notes [Client] with the given bearer token and options.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SearchNotes searches notes by title and content.
func (c *Client) SearchNotes(ctx context.Context, query string) ([]voxd.Node, error) {
	var nodes []voxd.Node
	err := c.do(ctx, http.MethodGet, "/api/notes/search?q="+url.QueryEscape(query), nil, &nodes)
	return nodes, err
}

// SearchFiles searches files by name and content.
func (c *Client) SearchFiles(ctx context.Context, query string) ([]voxd.Node, error) {
	var nodes []voxd.Node
	err := c.do(ctx, http.MethodGet, "/api/files/search?q="+url.QueryEscape(query), nil, &nodes)
	return nodes, err
}

// Tree returns the full file and folder tree.
func (c *Client) Tree(ctx context.Context) ([]voxd.Node, error) {
	var nodes []voxd.Node
	err := c.do(ctx, http.MethodGet, "/api/tree", nil, &nodes)
	return nodes, err
}

// Read fetches a node, including its content, by path.
func (c *Client) Read(ctx context.Context, path string) (voxd.Node, error) {
	var node voxd.Node
	err := c.do(ctx, http.MethodGet, "/api/files?path="+url.QueryEscape(path), nil, &node)
	return node, err
}

// Create makes a new file or folder at path.
func (c *Client) Create(ctx context.Context, path, nodeType, content string) (voxd.Node, error) {
	var node voxd.Node
	err := c.do(ctx, http.MethodPost, "/api/files", map[string]string{
		"path":    path,
		"type":    nodeType,
		"content": content,
	}, &node)
	return node, err
}

// Update replaces a file's content by id.
func (c *Client) Update(ctx context.Context, id, content string) (voxd.Node, error) {
	var node voxd.Node
	err := c.do(ctx, http.MethodPut, "/api/files/"+url.PathEscape(id), map[string]string{
		"content": content,
	}, &node)
	return node, err
}

// Delete removes a file or folder by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(id), nil, nil)
}

// do performs one API call, encoding body as JSON and decoding the response
// into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("notes: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("notes: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseHTTPError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("notes: decoding response: %w", err)
	}
	return nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("notes: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error == "" {
		return fmt.Errorf("notes: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("notes: %s", apiErr.Error)
}
