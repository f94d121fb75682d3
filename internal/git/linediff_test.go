package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountLineDiff(t *testing.T) {
	tests := []struct {
		name      string
		oldText   string
		newText   string
		additions int
		deletions int
	}{
		{"identical", "a\nb\n", "a\nb\n", 0, 0},
		{"single line replaced", "a\nb\nc\n", "a\nx\nc\n", 1, 1},
		{"lines appended", "a\n", "a\nb\nc\n", 2, 0},
		{"lines removed", "a\nb\nc\n", "a\n", 0, 2},
		{"from empty", "", "a\nb\n", 2, 0},
		{"to empty", "a\nb\n", "", 0, 2},
		{"no trailing newline", "a\nb", "a\nc", 1, 1},
		{"rewrite", "one\ntwo\n", "three\nfour\n", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adds, dels := countLineDiff(tt.oldText, tt.newText)
			assert.Equal(t, tt.additions, adds, "additions")
			assert.Equal(t, tt.deletions, dels, "deletions")
		})
	}
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 0, lineCount(""))
	assert.Equal(t, 1, lineCount("a\n"))
	assert.Equal(t, 1, lineCount("a"))
	assert.Equal(t, 2, lineCount("a\nb"))
	assert.Equal(t, 3, lineCount("a\nb\nc\n"))
}
