package mock

import (
	"context"
	"encoding/json"

	"voxd"
)

// Interface compliance checks.
var (
	_ voxd.ToolRunner  = (*ToolRunner)(nil)
	_ voxd.NotesClient = (*NotesClient)(nil)
)

// ToolRunner is a test double for voxd.ToolRunner.
// Set RunFn before calling Run; HelpFn and CheckAvailableFn have safe defaults.
type ToolRunner struct {
	RunFn            func(ctx context.Context, args ...string) (json.RawMessage, error)
	HelpFn           func(ctx context.Context) (string, error)
	CheckAvailableFn func(ctx context.Context) bool
}

// Run delegates to RunFn.
func (r *ToolRunner) Run(ctx context.Context, args ...string) (json.RawMessage, error) {
	return r.RunFn(ctx, args...)
}

// Help delegates to HelpFn; a nil HelpFn returns empty help.
func (r *ToolRunner) Help(ctx context.Context) (string, error) {
	if r.HelpFn == nil {
		return "", nil
	}
	return r.HelpFn(ctx)
}

// CheckAvailable delegates to CheckAvailableFn; a nil CheckAvailableFn
// reports true.
func (r *ToolRunner) CheckAvailable(ctx context.Context) bool {
	if r.CheckAvailableFn == nil {
		return true
	}
	return r.CheckAvailableFn(ctx)
}

// NotesClient is a test double for voxd.NotesClient.
// Set the function fields for the operations you need.
type NotesClient struct {
	SearchNotesFn func(ctx context.Context, query string) ([]voxd.Node, error)
	SearchFilesFn func(ctx context.Context, query string) ([]voxd.Node, error)
	TreeFn        func(ctx context.Context) ([]voxd.Node, error)
	ReadFn        func(ctx context.Context, path string) (voxd.Node, error)
	CreateFn      func(ctx context.Context, path, nodeType, content string) (voxd.Node, error)
	UpdateFn      func(ctx context.Context, id, content string) (voxd.Node, error)
	DeleteFn      func(ctx context.Context, id string) error
}

// SearchNotes delegates to SearchNotesFn.
func (c *NotesClient) SearchNotes(ctx context.Context, query string) ([]voxd.Node, error) {
	return c.SearchNotesFn(ctx, query)
}

// SearchFiles delegates to SearchFilesFn.
func (c *NotesClient) SearchFiles(ctx context.Context, query string) ([]voxd.Node, error) {
	return c.SearchFilesFn(ctx, query)
}

// Tree delegates to TreeFn.
func (c *NotesClient) Tree(ctx context.Context) ([]voxd.Node, error) {
	return c.TreeFn(ctx)
}

// Read delegates to ReadFn.
func (c *NotesClient) Read(ctx context.Context, path string) (voxd.Node, error) {
	return c.ReadFn(ctx, path)
}

// Create delegates to CreateFn.
func (c *NotesClient) Create(ctx context.Context, path, nodeType, content string) (voxd.Node, error) {
	return c.CreateFn(ctx, path, nodeType, content)
}

// Update delegates to UpdateFn.
func (c *NotesClient) Update(ctx context.Context, id, content string) (voxd.Node, error) {
	return c.UpdateFn(ctx, id, content)
}

// Delete delegates to DeleteFn.
func (c *NotesClient) Delete(ctx context.Context, id string) error {
	return c.DeleteFn(ctx, id)
}
