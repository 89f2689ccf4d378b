package taskcli

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const maxStderrLen = 1024

// sanitize strips ANSI escape codes and control characters from CLI output.
// The text ends up in error messages and prompts, so color codes and
// progress-bar carriage returns must not survive. Tabs and newlines are
// kept; a lone \r overwrites the line from column 0 the way a terminal
// would.
func sanitize(b []byte) string {
	s := ansi.Strip(string(b))
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' || r > 0x1F {
			buf.WriteRune(r)
		}
	}
	s = buf.String()

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.ContainsRune(line, '\r') {
			lines[i] = resolveCarriageReturns(line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// truncateTail keeps the last max bytes, starting at a line boundary when one
// falls inside the kept window. CLI errors report the failure last, so the
// tail is the informative end.
func truncateTail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[len(s)-max:]
	if i := strings.IndexByte(s, '\n'); i >= 0 && i < len(s)-1 {
		s = s[i+1:]
	}
	return s
}

// resolveCarriageReturns simulates terminal CR behavior within a single line:
// each \r resets the write position to 0 and subsequent characters overwrite.
func resolveCarriageReturns(line string) string {
	segments := strings.Split(line, "\r")
	buf := []rune(segments[0])
	for _, seg := range segments[1:] {
		runes := []rune(seg)
		for j, r := range runes {
			if j < len(buf) {
				buf[j] = r
			} else {
				buf = append(buf, r)
			}
		}
	}
	return string(buf)
}
