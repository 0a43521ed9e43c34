// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document converts generated markdown-ish text into typed blocks
// for a content store. Only line prefixes are interpreted; inline markdown
// passes through as plain text.
package document

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/crewline/pkg/types"
)

// Layout selects how text becomes blocks.
type Layout string

const (
	// LayoutBlocks interprets headings and bullets and drops blank lines.
	LayoutBlocks Layout = "blocks"
	// LayoutParagraphs turns every line into a paragraph, keeping blanks as spacers.
	LayoutParagraphs Layout = "paragraphs"
)

// Convert applies the converter for layout. Unknown layouts fall back to
// LayoutBlocks.
func Convert(layout Layout, text string) []types.Block {
	if layout == LayoutParagraphs {
		return ToParagraphs(text)
	}
	return ToBlocks(text)
}

// ToBlocks splits text on "\n" and classifies each right-trimmed line:
// "# " is a level 1 heading, "## " a level 2 heading, "- " a bulleted item,
// anything else a paragraph. Empty lines produce nothing.
func ToBlocks(text string) []types.Block {
	var blocks []types.Block
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "# "):
			blocks = append(blocks, types.Heading(1, strings.TrimSpace(line[2:])))
		case strings.HasPrefix(line, "## "):
			blocks = append(blocks, types.Heading(2, strings.TrimSpace(line[3:])))
		case strings.HasPrefix(line, "- "):
			blocks = append(blocks, types.BulletedItem(strings.TrimSpace(line[2:])))
		default:
			blocks = append(blocks, types.Paragraph(line))
		}
	}
	return blocks
}

// ToParagraphs makes one paragraph per line, trimmed. Blank lines become
// empty paragraphs. A trailing line break does not add a line.
func ToParagraphs(text string) []types.Block {
	lines := SplitLines(text)
	blocks := make([]types.Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, types.Paragraph(strings.TrimSpace(line)))
	}
	return blocks
}

// WithImage prepends an image block when url is set.
func WithImage(url string, blocks []types.Block) []types.Block {
	if url == "" {
		return blocks
	}
	return append([]types.Block{types.Image(url)}, blocks...)
}

// SplitLines splits text at line boundaries: "\n", "\r\n", "\r", vertical
// tab, form feed, the file/group/record separators, NEL and the Unicode
// line and paragraph separators. The boundaries are not kept and a final
// boundary does not start a new line.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBoundary(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
