package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"voxd"
)

// Interface compliance check.
var _ voxd.Provider = (*Client)(nil)

// Client implements [voxd.Provider] for the Anthropic Messages API.
type Client struct {
	apiKey     string
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

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming request and returns a [voxd.Stream] over its text
// deltas.
func (c *Client) Stream(ctx context.Context, req voxd.Request) (voxd.Stream, error) {
	resp, err := c.post(ctx, buildRequest(req, true))
	if err != nil {
		return nil, err
	}
	return newStream(ctx, resp.Body), nil
}

// Structured performs a non-streaming completion whose system prompt demands
// a JSON document conforming to the request schema.
func (c *Client) Structured(ctx context.Context, req voxd.StructuredRequest) (json.RawMessage, error) {
	r := req.Request
	r.SystemPrompt = structuredSystemPrompt(r.SystemPrompt, req.Schema)

	resp, err := c.post(ctx, buildRequest(r, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("anthropic: decoding response: %w", err)
	}

	text := responseText(body)
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("anthropic: structured response is not valid JSON: %w", voxd.ErrSchema)
	}
	return json.RawMessage(text), nil
}

func (c *Client) post(ctx context.Context, apiReq apiRequest) (*http.Response, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	return resp, nil
}

func buildRequest(req voxd.Request, streaming bool) apiRequest {
	model := req.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	messages := make([]apiMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "user"
		if m.Role == voxd.RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, apiMessage{Role: role, Content: m.Content})
	}

	return apiRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Stream:      streaming,
		System:      req.SystemPrompt,
		Messages:    messages,
		Temperature: req.Temperature,
	}
}

func structuredSystemPrompt(base string, schema json.RawMessage) string {
	prompt := fmt.Sprintf(
		"Respond with a single JSON document conforming to this schema, with no surrounding text or markdown:\n%s",
		schema)
	if base == "" {
		return prompt
	}
	return base + "\n\n" + prompt
}

func responseText(body apiResponse) string {
	for _, block := range body.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return fmt.Errorf("anthropic: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("anthropic: %s: %s", apiErr.Error.Type, apiErr.Error.Message)
}
