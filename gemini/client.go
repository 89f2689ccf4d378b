package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"voxd"
)

// Interface compliance check.
var _ voxd.Provider = (*Client)(nil)

// Client implements [voxd.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the fallback model ID used when a request leaves Model
// empty. Default is gemini-3.1-pro-preview.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream starts a streaming completion and returns a [voxd.Stream] over its
// text deltas.
func (c *Client) Stream(ctx context.Context, req voxd.Request) (voxd.Stream, error) {
	contents := convertMessages(req.Messages)
	config := buildConfig(req)

	it := c.client.Models.GenerateContentStream(ctx, c.resolveModel(req.Model), contents, config)
	return newStream(ctx, it), nil
}

// Structured performs a single completion constrained by the request schema
// and returns the raw JSON document.
func (c *Client) Structured(ctx context.Context, req voxd.StructuredRequest) (json.RawMessage, error) {
	schema, err := parseSchema(req.Schema)
	if err != nil {
		return nil, err
	}

	config := buildConfig(req.Request)
	config.ResponseMIMEType = "application/json"
	config.ResponseSchema = schema

	resp, err := c.client.Models.GenerateContent(ctx, c.resolveModel(req.Model), convertMessages(req.Messages), config)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	text := resp.Text()
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("gemini: structured response is not valid JSON: %w", voxd.ErrSchema)
	}
	return json.RawMessage(text), nil
}

func (c *Client) resolveModel(model string) string {
	if model == "" {
		return c.model
	}
	return model
}

func buildConfig(req voxd.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// convertMessages converts voxd Messages to genai Contents.
func convertMessages(msgs []voxd.Message) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		role := "user"
		if msg.Role == voxd.RoleAssistant {
			role = "model"
		}
		result = append(result, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	return result
}

// parseSchema decodes a raw JSON schema document into the SDK's schema type.
func parseSchema(raw json.RawMessage) (*genai.Schema, error) {
	var schema genai.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("gemini: invalid response schema: %w", err)
	}
	return &schema, nil
}
