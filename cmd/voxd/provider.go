package main

import (
	"context"
	"fmt"

	"voxd"
	"voxd/anthropic"
	"voxd/gemini"
)

// buildRegistry constructs the provider registry from whichever API keys are
// present. Env var values are passed in as parameters; env is only read in
// run(). The fallback provider serves requests with no model set, preferring
// Gemini when both keys are available.
func buildRegistry(ctx context.Context, geminiKey, anthropicKey string) (*voxd.Registry, error) {
	registry := voxd.NewRegistry()

	if geminiKey != "" {
		client, err := gemini.New(ctx, geminiKey)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		registry.Register("gemini-", client)
		registry.SetFallback(client)
	}
	if anthropicKey != "" {
		client := anthropic.New(anthropicKey)
		registry.Register("claude-", client)
		if geminiKey == "" {
			registry.SetFallback(client)
		}
	}
	if geminiKey == "" && anthropicKey == "" {
		return nil, fmt.Errorf("no API key found: set GEMINI_API_KEY or ANTHROPIC_API_KEY")
	}
	return registry, nil
}
