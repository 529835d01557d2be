package documents

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFocusSnippetShortContent(t *testing.T) {
	content := "  Tomatoes grow best in full sun.  "
	assert.Equal(t, "Tomatoes grow best in full sun.", focusSnippet(content, "tomatoes", 300))
}

func TestFocusSnippetPicksQueryWindow(t *testing.T) {
	padding := strings.Repeat("Nothing relevant here at all. ", 20)
	content := padding + "Jupiter is the largest planet in the solar system. " + padding

	got := focusSnippet(content, "Jupiter largest planet", 120)
	assert.LessOrEqual(t, len(got), 120+6, "window plus ellipsis markers")
	assert.Contains(t, got, "Jupiter")
	assert.True(t, strings.HasPrefix(got, "..."), "a mid-content window is marked at the front")
	assert.True(t, strings.HasSuffix(got, "..."), "a mid-content window is marked at the back")
}

func TestFocusSnippetKeepsValidUTF8(t *testing.T) {
	content := strings.Repeat("répétition écrite ", 40)
	got := focusSnippet(content, "répétition", 101)
	assert.True(t, utf8.ValidString(got), "window edges must land on rune boundaries")
	assert.Contains(t, got, "répétition")
}

func TestFocusSnippetNoTermMatchKeepsStart(t *testing.T) {
	content := strings.Repeat("All filler text with no match. ", 30)
	got := focusSnippet(content, "quantum chromodynamics", 100)
	assert.True(t, strings.HasPrefix(got, "All filler"))
	assert.True(t, strings.HasSuffix(got, "..."))
}
