// Package speech flattens markdown to plain text suitable for speaking
// aloud. Response text is prompted to avoid markdown, but sub-agent answers
// quote note content and tool output that often carries it; anything headed
// for TTS goes through Flatten first.
package speech

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Flatten parses markdown source and returns its speakable plain text.
// Formatting is dropped rather than rendered: emphasis and code spans keep
// only their inner text, links keep only their label, and code blocks and
// raw HTML are omitted entirely. Blocks become newline-separated lines so
// TTS inserts a pause between them.
func Flatten(source string) string {
	if source == "" {
		return ""
	}

	p := goldmark.DefaultParser()
	doc := p.Parse(text.NewReader([]byte(source)))

	var buf bytes.Buffer
	walkBlocks(doc, []byte(source), &buf)

	out := strings.TrimSpace(buf.String())
	if out == "" {
		// Nothing speakable survived (e.g. a lone code block); better to
		// speak the raw text than nothing.
		return strings.TrimSpace(source)
	}
	return out
}

func walkBlocks(node ast.Node, source []byte, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		flattenBlock(c, source, buf)
	}
}

func flattenBlock(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		writeLine(buf, collectInline(n, source))

	case *ast.Heading:
		// Terminal punctuation makes TTS pause after the heading.
		writeLine(buf, punctuate(collectInline(n, source)))

	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.ThematicBreak:
		// Not speakable.

	case *ast.List:
		flattenList(n, source, buf)

	default:
		// Blockquotes and anything unrecognized: recurse into children.
		walkBlocks(node, source, buf)
	}
}

func flattenList(node *ast.List, source []byte, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				writeLine(buf, punctuate(collectInline(in, source)))
			case *ast.List:
				flattenList(in, source, buf)
			default:
				flattenBlock(ic, source, buf)
			}
		}
	}
}

func writeLine(buf *bytes.Buffer, s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	buf.WriteString(s)
	buf.WriteByte('\n')
}

// punctuate appends a period when the text has no terminal punctuation.
func punctuate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?', ':', ';', ',':
		return s
	}
	return s + "."
}

func collectInline(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		flattenInline(c, source, &buf)
	}
	return buf.String()
}

func flattenInline(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis, *ast.CodeSpan, *ast.Link:
		buf.WriteString(collectInline(node, source))

	case *ast.AutoLink:
		buf.Write(n.URL(source))

	case *ast.Image:
		buf.WriteString(collectInline(n, source))

	case *ast.RawHTML:
		// Not speakable.

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			flattenInline(c, source, buf)
		}
	}
}
