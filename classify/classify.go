// Package classify implements intent classification over a structured
// completion call.
package classify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"voxd"
)

const systemPrompt = `You are an AI assistant that classifies user intents and responds appropriately.

For each user message, you must:
1. Classify the intent into one of five categories:
   - "direct_response": General conversation, greetings, questions you can answer from knowledge
   - "web_search": Questions about current events, real-time data, recent news, prices, weather
   - "end_dialog": Farewells, goodbyes, "thanks that's all", dismissals
   - "task_management": Creating, listing, completing, updating, or deleting tasks/todos
   - "notes": Creating, searching, reading, or organizing notes and files in the knowledge base

2. Provide a confidence score (0.0 to 1.0) for your classification

3. If intent is "web_search", extract a well-formed search query from the user's message

4. Generate an appropriate response:
   - For direct_response: Answer the question or continue the conversation
   - For web_search: Generate a placeholder (will be replaced with search results)
   - For end_dialog: Provide a friendly farewell message
   - For task_management: Generate a placeholder (will be handled by the task agent)
   - For notes: Generate a placeholder (will be handled by the notes agent)

Classification guidelines:
- Default to direct_response if unsure
- Use web_search only for genuinely time-sensitive or current information
- Common farewells: goodbye, bye, see you, thanks that's all, stop, end conversation
- Task management examples: "add task", "what's due today", "complete the milk task", "remind me to", "my tasks", "what do I need to do", "mark X as done"`

// classificationSchema constrains the structured completion. Types use the
// uppercase OpenAPI spelling the completion service expects.
const classificationSchema = `{
	"type": "OBJECT",
	"properties": {
		"intent": {
			"type": "STRING",
			"enum": ["direct_response", "web_search", "end_dialog", "task_management", "notes"],
			"description": "The classified intent of the user's message"
		},
		"confidence": {
			"type": "NUMBER",
			"description": "Confidence score for the classification, 0.0 to 1.0"
		},
		"search_query": {
			"type": "STRING",
			"description": "Well-formed search query, only when intent is web_search"
		},
		"response": {
			"type": "STRING",
			"description": "The response text to send to the user"
		}
	},
	"required": ["intent", "confidence", "response"]
}`

// Interface compliance check.
var _ voxd.Classifier = (*Classifier)(nil)

// Classifier classifies user turns with a schema-constrained completion.
type Classifier struct {
	provider voxd.Provider
	model    string
	logger   *zap.Logger
}

// New creates a Classifier using the given provider and model.
func New(provider voxd.Provider, model string, logger *zap.Logger) *Classifier {
	return &Classifier{provider: provider, model: model, logger: logger}
}

// Classify runs one structured completion over the history plus the new
// utterance. A completion failure or a schema-violating response is a hard
// failure for the call; there is no retry at this layer.
func (c *Classifier) Classify(ctx context.Context, history []voxd.Message, text string) (voxd.Classification, error) {
	messages := make([]voxd.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, voxd.Message{Role: voxd.RoleUser, Content: text})

	raw, err := c.provider.Structured(ctx, voxd.StructuredRequest{
		Request: voxd.Request{
			Model:        c.model,
			SystemPrompt: systemPrompt,
			Messages:     messages,
		},
		Schema: json.RawMessage(classificationSchema),
	})
	if err != nil {
		return voxd.Classification{}, fmt.Errorf("classification completion: %w", err)
	}

	var result voxd.Classification
	if err := json.Unmarshal(raw, &result); err != nil {
		return voxd.Classification{}, fmt.Errorf("classification output: %w: %v", voxd.ErrSchema, err)
	}
	if err := result.Validate(); err != nil {
		return voxd.Classification{}, err
	}

	c.logger.Info("intent classified",
		zap.String("intent", string(result.Intent)),
		zap.Float64("confidence", result.Confidence))
	return result, nil
}
