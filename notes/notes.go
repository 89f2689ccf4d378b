// Package notes implements the notes/knowledge-base sub-agent. Unlike the
// task variant, writes execute immediately with no confirmation step.
package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"voxd"
)

// Action is the closed set of decisions the completion can make for a turn.
type Action string

const (
	ActionNone  Action = "none"
	ActionQuery Action = "query"
	ActionWrite Action = "write"
	ActionExit  Action = "exit"
)

// Operation names the backend call to perform for query/write actions.
type Operation string

const (
	OpSearchNotes Operation = "search_notes"
	OpSearchFiles Operation = "search_files"
	OpGetTree     Operation = "get_tree"
	OpReadFile    Operation = "read_file"
	OpRecent      Operation = "recent"
	OpCreateFile  Operation = "create_file"
	OpUpdateFile  Operation = "update_file"
	OpDeleteFile  Operation = "delete_file"
)

const defaultRecentLimit = 10

const historyResultLimit = 2000

const decisionSchema = `{
	"type": "OBJECT",
	"properties": {
		"response": {
			"type": "STRING",
			"description": "Text response to speak to the user"
		},
		"action": {
			"type": "STRING",
			"enum": ["none", "query", "write", "exit"],
			"description": "Action to take: 'none' for conversation or clarification, 'query' for read-only operations, 'write' for mutations, 'exit' to end the notes session"
		},
		"operation": {
			"type": "STRING",
			"enum": ["search_notes", "search_files", "get_tree", "read_file", "recent", "create_file", "update_file", "delete_file"],
			"description": "Which operation to execute (required for query/write actions)"
		},
		"args": {
			"type": "OBJECT",
			"description": "Operation arguments: search_notes/search_files {query}; get_tree none; read_file {path}; recent {limit?}; create_file {path, content, type?}; update_file {path, content}; delete_file {path}",
			"properties": {
				"query":   {"type": "STRING"},
				"path":    {"type": "STRING"},
				"content": {"type": "STRING"},
				"type":    {"type": "STRING"},
				"limit":   {"type": "INTEGER"}
			}
		}
	},
	"required": ["response", "action"]
}`

type opArgs struct {
	Query   string `json:"query,omitempty"`
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
	Type    string `json:"type,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

type decision struct {
	Response  string    `json:"response"`
	Action    Action    `json:"action"`
	Operation Operation `json:"operation,omitempty"`
	Args      opArgs    `json:"args,omitempty"`
}

// Interface compliance check.
var _ voxd.SubAgent = (*Agent)(nil)

// Agent is the notes sub-agent, backed by the notes HTTP client.
type Agent struct {
	sessionID string
	model     string
	provider  voxd.Provider
	client    voxd.NotesClient
	logger    *zap.Logger
	now       func() time.Time

	active   bool
	messages []voxd.Message
}

// Option configures an [Agent].
type Option func(*Agent)

// WithClock overrides the time source used for date context in prompts.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// New creates a notes sub-agent for one session.
func New(sessionID, model string, provider voxd.Provider, client voxd.NotesClient, logger *zap.Logger, opts ...Option) *Agent {
	a := &Agent{
		sessionID: sessionID,
		model:     model,
		provider:  provider,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Kind returns voxd.KindNotes.
func (a *Agent) Kind() voxd.Kind { return voxd.KindNotes }

// Active reports whether the agent holds sticky routing.
func (a *Agent) Active() bool { return a.active }

// Activate makes the agent the exclusive recipient of subsequent turns.
func (a *Agent) Activate() { a.active = true }

// Pending always reports false: the notes variant has no confirmation step.
func (a *Agent) Pending() bool { return false }

// Process handles one user turn inside the notes flow.
func (a *Agent) Process(ctx context.Context, text string) (voxd.Response, error) {
	a.messages = append(a.messages, voxd.Message{Role: voxd.RoleUser, Content: text})

	dec, err := a.decide(ctx)
	if err != nil {
		a.logger.Error("notes decision failed", zap.String("session_id", a.sessionID), zap.Error(err))
		resp := voxd.Response{Text: "I'm having trouble processing that. Could you try again?"}
		a.record(resp)
		return resp, nil
	}

	a.logger.Info("notes action decided",
		zap.String("session_id", a.sessionID),
		zap.String("action", string(dec.Action)),
		zap.String("operation", string(dec.Operation)))

	resp := a.apply(ctx, dec)
	a.record(resp)
	return resp, nil
}

func (a *Agent) apply(ctx context.Context, dec decision) voxd.Response {
	switch dec.Action {
	case ActionQuery, ActionWrite:
		if dec.Operation == "" {
			return voxd.Response{Text: dec.Response}
		}
		return a.execute(ctx, dec)

	case ActionExit:
		a.active = false
		return voxd.Response{Text: dec.Response, ExitReason: "user_exit"}

	default:
		return voxd.Response{Text: dec.Response}
	}
}

// execute runs the backend operation. Queries are summarized through a
// second completion with the raw result kept as history context; writes
// speak the completion's own response text.
func (a *Agent) execute(ctx context.Context, dec decision) voxd.Response {
	result, err := a.run(ctx, dec.Operation, dec.Args)
	if err != nil {
		a.logger.Error("notes operation failed",
			zap.String("session_id", a.sessionID),
			zap.String("operation", string(dec.Operation)),
			zap.Error(err))
		return voxd.Response{Text: fmt.Sprintf("Operation failed: %s", err)}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return voxd.Response{Text: fmt.Sprintf("Operation failed: %s", err)}
	}

	if dec.Action == ActionWrite {
		return voxd.Response{Text: dec.Response}
	}

	summary, err := a.summarize(ctx, raw)
	if err != nil {
		a.logger.Error("summarization failed", zap.String("session_id", a.sessionID), zap.Error(err))
		return voxd.Response{Text: "I found the results but couldn't summarize them. Could you try again?"}
	}

	truncated := string(raw)
	if len(truncated) > historyResultLimit {
		truncated = truncated[:historyResultLimit]
	}
	return voxd.Response{
		Text:           summary,
		HistoryContext: fmt.Sprintf("[Op: %s %+v]\n[Result: %s]", dec.Operation, dec.Args, truncated),
	}
}

func (a *Agent) run(ctx context.Context, op Operation, args opArgs) (any, error) {
	switch op {
	case OpSearchNotes:
		return a.client.SearchNotes(ctx, args.Query)

	case OpSearchFiles:
		return a.client.SearchFiles(ctx, args.Query)

	case OpGetTree:
		return a.client.Tree(ctx)

	case OpReadFile:
		return a.client.Read(ctx, args.Path)

	case OpRecent:
		nodes, err := a.client.Tree(ctx)
		if err != nil {
			return nil, err
		}
		files := nodes[:0:0]
		for _, n := range nodes {
			if n.Type == "file" {
				files = append(files, n)
			}
		}
		sort.SliceStable(files, func(i, j int) bool {
			return files[i].UpdatedAt > files[j].UpdatedAt
		})
		limit := args.Limit
		if limit <= 0 {
			limit = defaultRecentLimit
		}
		if len(files) > limit {
			files = files[:limit]
		}
		return files, nil

	case OpCreateFile:
		nodeType := args.Type
		if nodeType == "" {
			nodeType = "file"
		}
		return a.client.Create(ctx, args.Path, nodeType, args.Content)

	case OpUpdateFile:
		node, err := a.client.Read(ctx, args.Path)
		if err != nil {
			return nil, err
		}
		return a.client.Update(ctx, node.ID, args.Content)

	case OpDeleteFile:
		node, err := a.client.Read(ctx, args.Path)
		if err != nil {
			return nil, err
		}
		if err := a.client.Delete(ctx, node.ID); err != nil {
			return nil, err
		}
		return map[string]string{"deleted": args.Path}, nil

	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

func (a *Agent) decide(ctx context.Context) (decision, error) {
	raw, err := a.provider.Structured(ctx, voxd.StructuredRequest{
		Request: voxd.Request{
			Model:        a.model,
			SystemPrompt: a.systemPrompt(),
			Messages:     a.messages,
		},
		Schema: json.RawMessage(decisionSchema),
	})
	if err != nil {
		return decision{}, fmt.Errorf("notes completion: %w", err)
	}

	var dec decision
	if err := json.Unmarshal(raw, &dec); err != nil {
		return decision{}, fmt.Errorf("notes output: %w: %v", voxd.ErrSchema, err)
	}
	return dec, nil
}

func (a *Agent) summarize(ctx context.Context, result json.RawMessage) (string, error) {
	text := string(result)
	if text == "[]" || text == "null" {
		return "Nothing found.", nil
	}
	if len(text) > 3000 {
		text = text[:3000] + "... (truncated)"
	}
	prompt := fmt.Sprintf(`Summarize these results in a brief, conversational response suitable for voice.
Be concise - just the key information.

Results:
%s
`, text)
	return voxd.CompleteText(ctx, a.provider, voxd.Request{
		Model:    a.model,
		Messages: []voxd.Message{{Role: voxd.RoleUser, Content: prompt}},
	})
}

func (a *Agent) record(resp voxd.Response) {
	a.messages = append(a.messages, voxd.Message{Role: voxd.RoleAssistant, Content: resp.HistoryText()})
}

func (a *Agent) systemPrompt() string {
	now := a.now()
	return fmt.Sprintf(`You are a notes and knowledge base assistant. Help users manage their notes and files via voice.

Current date: %s
Current time: %s

Available operations:

READ OPERATIONS (action="query"):
- search_notes: Search notes by title/content. Args: {query: "search text"}
- search_files: Search files by name/content. Args: {query: "search text"}
- get_tree: Show the full file/folder tree. No args needed.
- read_file: Read a file's content. Args: {path: "/folder/file.txt"}
- recent: List recently modified files. Args: {limit: 10} (optional, default 10)

WRITE OPERATIONS (action="write"):
- create_file: Create a new file or folder. Args: {path: "/folder/file.txt", content: "text", type: "file"} (type defaults to "file", use "folder" for folders)
- update_file: Update file content. Args: {path: "/folder/file.txt", content: "new text"}
- delete_file: Delete a file or folder. Args: {path: "/folder/file.txt"}

Guidelines:
- For reading/searching, use action="query" with the appropriate operation
- For creating/updating/deleting, use action="write" with the appropriate operation
- If the user's request is ambiguous, ask for clarification with action="none"
- When the user wants to end the notes session, use action="exit"
- Keep responses concise for voice
- Paths start with "/" (e.g., "/notes/meeting.md")`,
		now.Format("2006-01-02"),
		now.Format("2006-01-02 15:04"))
}
