// Package format turns raw content fields into display strings. Every
// function is pure and never fails: bad input degrades to a fallback value.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/eringen/cosmicblog/markdown"
)

const (
	// UnknownDate is returned by Date for input it cannot parse.
	UnknownDate = "Unknown date"

	// DefaultExcerptLength is the rune budget used by Excerpt when none is given.
	DefaultExcerptLength = 150

	// WordsPerMinute is the assumed adult reading speed.
	WordsPerMinute = 200

	dateLayout = "Jan 2, 2006"
	ellipsis   = "..."
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"January 2, 2006",
	dateLayout,
}

// Date renders an ISO 8601 date string as "Mar 5, 2024".
func Date(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout)
		}
	}
	return UnknownDate
}

// Truncate clips text to max runes, backing up to the last word boundary
// when the cut would split a word, and appends "...". Text that already
// fits is returned unchanged, as is any text when max is not positive.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	cut := runes[:max]
	if !unicode.IsSpace(runes[max]) {
		for i := len(cut) - 1; i > 0; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + ellipsis
}

// Excerpt strips markdown syntax from content and truncates the readable
// text. The optional length defaults to DefaultExcerptLength.
func Excerpt(content string, length ...int) string {
	n := DefaultExcerptLength
	if len(length) > 0 {
		n = length[0]
	}
	return Truncate(markdown.Strip(content), n)
}

// ReadingTime estimates how long content takes to read, never less than a minute.
func ReadingTime(content string) string {
	words := len(strings.Fields(content))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
