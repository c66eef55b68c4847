// Package output shapes completion text for display: splitting it into
// copyable blocks and building share links.
package output

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	itemStart = regexp.MustCompile(`^\s*(\d+[.)]|-|•)\s+`)
	blankLine = regexp.MustCompile(`\n\s*\n+`)
)

// Blocks splits text into independently copyable pieces. Two or more
// numbered or bulleted item starts yield one block per item, with any
// preamble before the first item dropped. Otherwise two or more
// blank-line-separated paragraphs yield one block each. Anything else is a
// single trimmed block. Blank text has no blocks.
func Blocks(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if b := numberedBlocks(text); b != nil {
		return b
	}
	if b := paragraphs(text); b != nil {
		return b
	}
	return []string{strings.TrimSpace(text)}
}

func numberedBlocks(text string) []string {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var starts []int
	for i, ln := range lines {
		if itemStart.MatchString(ln) {
			starts = append(starts, i)
		}
	}
	if len(starts) < 2 {
		return nil
	}

	blocks := make([]string, 0, len(starts))
	for j, start := range starts {
		end := len(lines)
		if j+1 < len(starts) {
			end = starts[j+1]
		}
		if block := strings.TrimSpace(strings.Join(lines[start:end], "\n")); block != "" {
			blocks = append(blocks, block)
		}
	}

	return blocks
}

func paragraphs(text string) []string {
	var parts []string
	for _, p := range blankLine.Split(strings.TrimSpace(text), -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return nil
	}
	return parts
}

// Links are share targets for a piece of text.
type Links struct {
	WhatsApp  string `json:"whatsapp"`
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
}

// Share builds share links for text. Instagram has no prefill URL, so its
// link opens the site and the text is expected to be pasted.
func Share(text string) Links {
	q := url.QueryEscape(text)
	return Links{
		WhatsApp:  "https://wa.me/?text=" + q,
		Instagram: "https://www.instagram.com/",
		LinkedIn:  "https://www.linkedin.com/messaging/compose/?body=" + q,
	}
}
