// Package markdown converts authored markdown into HTML and plain text.
package markdown

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// converter is the subset of goldmark.Markdown used by ToHTML.
type converter interface {
	Convert(source []byte, w io.Writer, opts ...parser.ParseOption) error
}

// engine is shared by every request; goldmark keeps no per-call state on it.
// Raw HTML is passed through because content comes from site operators.
var engine converter = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// ToHTML renders md as HTML. If conversion fails the original markdown is
// returned unchanged so a page never fails on bad content.
func ToHTML(md string) string {
	return render(engine, md)
}

// Component renders md as a templ component for use inside templ views.
func Component(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, ToHTML(md))
		return err
	})
}

func render(c converter, md string) string {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := c.Convert([]byte(md), &buf); err != nil {
		return md
	}
	return buf.String()
}

var (
	reFence         = regexp.MustCompile("(?ms)^[ \t]*(?:```|~~~).*?^[ \t]*(?:```|~~~)[^\n]*$")
	reRule          = regexp.MustCompile(`(?m)^[ \t]*(?:(?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,}|=+[ \t]*)$`)
	reListMarker    = regexp.MustCompile(`(?m)^[ \t]*(?:[-+*]|\d+[.)])[ \t]+`)
	reBlockquote    = regexp.MustCompile(`(?m)^[ \t]*(?:>[ \t]?)+`)
	reHeading       = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)
	reEmphasis      = regexp.MustCompile(`\*{1,2}(.+?)\*{1,2}`)
	reEmphasisUnder = regexp.MustCompile(`(^|\W)_{1,2}([^_\n]+?)_{1,2}(\W|$)`)
	reImage         = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	reLink          = regexp.MustCompile(`\[((?:[^\[\]]|\[[^\[\]]*\])*)\]\([^)]*\)`)
	reRefLink       = regexp.MustCompile(`\[([^\[\]]*)\]\[[^\[\]]*\]`)
	reBracket       = regexp.MustCompile(`\[([^\[\]]*)\]([^(\[]|$)`)
	reRefDefinition = regexp.MustCompile(`(?m)^[ \t]*\[[^\]]+\]:[ \t]*\S.*$`)
	reInlineCode    = regexp.MustCompile("`+([^`]*)`+")
	reStrikethrough = regexp.MustCompile(`~~(.+?)~~`)
	reHTMLTag       = regexp.MustCompile(`<[^>]+>`)
	strayMarkers    = strings.NewReplacer("*", "", "#", "", "`", "")
)

// Strip removes markdown syntax from md and keeps the readable text,
// collapsed onto a single line. Fenced code blocks and images carry no
// prose and are dropped entirely.
func Strip(md string) string {
	s := strings.ReplaceAll(md, "\r\n", "\n")
	s = reFence.ReplaceAllString(s, "")
	s = reRule.ReplaceAllString(s, "")
	s = reListMarker.ReplaceAllString(s, "")
	s = reBlockquote.ReplaceAllString(s, "")
	s = reHeading.ReplaceAllString(s, "")
	s = reEmphasis.ReplaceAllString(s, "$1")
	s = reEmphasisUnder.ReplaceAllString(s, "${1}${2}${3}")
	s = reImage.ReplaceAllString(s, "")
	s = reRefDefinition.ReplaceAllString(s, "")
	s = unwrapLinks(s)
	s = reInlineCode.ReplaceAllString(s, "$1")
	s = reStrikethrough.ReplaceAllString(s, "$1")
	s = reHTMLTag.ReplaceAllString(s, "")
	s = strayMarkers.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// unwrapLinks replaces links with their text, innermost first, until no
// bracket syntax is left. A link around an image is empty after the image
// is gone and disappears with it.
func unwrapLinks(s string) string {
	for {
		next := reLink.ReplaceAllString(s, "$1")
		next = reRefLink.ReplaceAllString(next, "$1")
		next = reBracket.ReplaceAllString(next, "$1$2")
		if next == s {
			return s
		}
		s = next
	}
}
