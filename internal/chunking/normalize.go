// Package chunking splits normalised document text into bounded,
// retrieval-sized chunks and annotates them with their enclosing
// section headings.
package chunking

import (
	"regexp"
	"strings"
)

var (
	spaceRun = regexp.MustCompile(`[ \t]+`)
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses intra-line whitespace and excess blank lines.
// Per line, runs of spaces and tabs collapse to a single space and the
// edges are trimmed; three or more consecutive newlines collapse to
// exactly two; the whole result is trimmed. Idempotent, and empty or
// whitespace-only input yields the empty string.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	out := strings.Join(lines, "\n")
	out = blankRun.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
