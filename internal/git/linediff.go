package git

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// countLineDiff compares two text blobs line by line and returns the
// number of added and removed lines.
func countLineDiff(oldText, newText string) (additions, deletions int) {
	if oldText == newText {
		return 0, 0
	}
	dmp := diffmatchpatch.New()
	oldChars, newChars, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(oldChars, newChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			additions += lineCount(d.Text)
		case diffmatchpatch.DiffDelete:
			deletions += lineCount(d.Text)
		}
	}
	return additions, deletions
}

// lineCount counts lines in a chunk, treating a trailing fragment
// without a newline as one line.
func lineCount(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
