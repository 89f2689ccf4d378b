package voxd

import (
	"context"
	"encoding/json"
)

// ToolRunner is the command-execution tool client. Run executes an argument
// vector and returns parsed JSON output. Failures are *ToolError values with
// distinguishable causes: executable not found, timeout exceeded, nonzero
// exit with captured stderr, or output not parseable as JSON.
type ToolRunner interface {
	Run(ctx context.Context, args ...string) (json.RawMessage, error)
	Help(ctx context.Context) (string, error)
	CheckAvailable(ctx context.Context) bool
}

// Node is one entry in the notes backend: a note file or a folder.
type Node struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	Type      string `json:"type"` // "file" or "folder"
	Content   string `json:"content,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// NotesClient is the HTTP tool client for the notes/files backend.
type NotesClient interface {
	SearchNotes(ctx context.Context, query string) ([]Node, error)
	SearchFiles(ctx context.Context, query string) ([]Node, error)
	Tree(ctx context.Context) ([]Node, error)
	Read(ctx context.Context, path string) (Node, error)
	Create(ctx context.Context, path, nodeType, content string) (Node, error)
	Update(ctx context.Context, id, content string) (Node, error)
	Delete(ctx context.Context, id string) error
}
