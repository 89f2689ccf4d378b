package noteshttp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxd/noteshttp"
)

func TestClient_SearchNotes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/notes/search", r.URL.Path)
		assert.Equal(t, "standup notes", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"n1","name":"standup.md","path":"/standup.md","type":"file"}]`))
	}))
	t.Cleanup(srv.Close)

	c := noteshttp.New("tok", noteshttp.WithBaseURL(srv.URL))
	nodes, err := c.SearchNotes(context.Background(), "standup notes")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "n1", nodes[0].ID)
	assert.Equal(t, "/standup.md", nodes[0].Path)
}

func TestClient_Read(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/files", r.URL.Path)
		assert.Equal(t, "/notes/meeting.md", r.URL.Query().Get("path"))
		_, _ = w.Write([]byte(`{"id":"n2","path":"/notes/meeting.md","type":"file","content":"agenda"}`))
	}))
	t.Cleanup(srv.Close)

	c := noteshttp.New("tok", noteshttp.WithBaseURL(srv.URL))
	node, err := c.Read(context.Background(), "/notes/meeting.md")
	require.NoError(t, err)
	assert.Equal(t, "agenda", node.Content)
}

func TestClient_Create(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/files", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "/x.md", body["path"])
		assert.Equal(t, "file", body["type"])
		assert.Equal(t, "hello", body["content"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"n3","path":"/x.md","type":"file"}`))
	}))
	t.Cleanup(srv.Close)

	c := noteshttp.New("tok", noteshttp.WithBaseURL(srv.URL))
	node, err := c.Create(context.Background(), "/x.md", "file", "hello")
	require.NoError(t, err)
	assert.Equal(t, "n3", node.ID)
}

func TestClient_Update(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/files/n4", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"n4","path":"/y.md","type":"file","content":"updated"}`))
	}))
	t.Cleanup(srv.Close)

	c := noteshttp.New("tok", noteshttp.WithBaseURL(srv.URL))
	node, err := c.Update(context.Background(), "n4", "updated")
	require.NoError(t, err)
	assert.Equal(t, "updated", node.Content)
}

func TestClient_Delete(t *testing.T) {
	t.Parallel()

	deleted := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/files/n5", r.URL.Path)
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c := noteshttp.New("tok", noteshttp.WithBaseURL(srv.URL))
	require.NoError(t, c.Delete(context.Background(), "n5"))
	assert.True(t, deleted)
}

func TestClient_APIError(t *testing.T) {
	t.Parallel()

	t.Run("structured error body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"file not found"}`))
		}))
		t.Cleanup(srv.Close)

		c := noteshttp.New("tok", noteshttp.WithBaseURL(srv.URL))
		_, err := c.Read(context.Background(), "/missing.md")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file not found")
	})

	t.Run("opaque error body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream broke"))
		}))
		t.Cleanup(srv.Close)

		c := noteshttp.New("tok", noteshttp.WithBaseURL(srv.URL))
		_, err := c.Tree(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 502")
		assert.Contains(t, err.Error(), "upstream broke")
	})
}
