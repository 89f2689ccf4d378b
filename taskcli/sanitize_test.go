package taskcli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"voxd/taskcli"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	t.Run("passes plain text through unchanged", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "hello world", taskcli.Sanitize([]byte("hello world")))
	})

	t.Run("strips ANSI color codes", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Task not found.", taskcli.Sanitize([]byte("\x1b[31mTask not found.\x1b[0m")))
	})

	t.Run("preserves tabs and newlines", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "a\tb\nc", taskcli.Sanitize([]byte("a\tb\nc")))
	})

	t.Run("removes control characters", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "abc", taskcli.Sanitize([]byte("a\x01b\x02c\x07")))
	})

	t.Run("normalizes CRLF to LF", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "a\nb", taskcli.Sanitize([]byte("a\r\nb\r\n")))
	})

	t.Run("resolves lone CR as terminal overwrite", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "progress done", taskcli.Sanitize([]byte("progress 50%\rprogress done")))
	})

	t.Run("CR overwrite preserves trailing chars when segment is shorter", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "xycdef", taskcli.Sanitize([]byte("abcdef\rxy")))
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "error", taskcli.Sanitize([]byte("  error \n")))
	})
}

func TestTruncateTail(t *testing.T) {
	t.Parallel()

	t.Run("short input unchanged", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "short", taskcli.TruncateTail("short", 100))
	})

	t.Run("keeps tail on overflow", func(t *testing.T) {
		t.Parallel()
		in := strings.Repeat("x", 50) + "\nfinal error line"
		out := taskcli.TruncateTail(in, 20)
		assert.Equal(t, "final error line", out)
	})

	t.Run("single long line keeps raw tail", func(t *testing.T) {
		t.Parallel()
		in := strings.Repeat("ab", 100)
		out := taskcli.TruncateTail(in, 10)
		assert.Len(t, out, 10)
	})
}
