package views

import (
	"html/template"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/eringen/cosmicblog/cosmic"
	"github.com/eringen/cosmicblog/format"
)

const defaultBadgeColor = "#6b7280"

var reHexColor = regexp.MustCompile(`^#[0-9a-fA-F]{3}(?:[0-9a-fA-F]{3})?$`)

var funcs = template.FuncMap{
	"formatDate":  format.Date,
	"readingTime": format.ReadingTime,
	"excerpt":     PostExcerpt,
	"image":       ImageURL,
	"badgeStyle":  BadgeStyle,
	"initials":    Initials,
	"firstLetter": FirstLetter,
	"twitterURL":  TwitterURL,
	"pathEscape":  PathEscape,
	"join":        strings.Join,
	"safeJS":      func(s string) template.JS { return template.JS(s) },
	"cardData":    func(p cosmic.Post, featured bool) PostCard { return PostCard{Post: p, Featured: featured} },
}

// PostCard is the data passed to the post_card partial.
type PostCard struct {
	Post     cosmic.Post
	Featured bool
}

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// ImageURL returns the CDN transform URL of img at w x h, or "" for a nil image.
func ImageURL(img *cosmic.Image, w, h int) string {
	if img == nil {
		return ""
	}
	return img.Transform(w, h)
}

// BadgeStyle returns the inline style tinting a category badge with color:
// a translucent background and solid text. Invalid colors fall back to gray
// text with no background.
func BadgeStyle(color string) template.CSS {
	if !reHexColor.MatchString(color) {
		return template.CSS("color: " + defaultBadgeColor)
	}
	bg := color
	if len(color) == 4 {
		bg = "#" + strings.Repeat(color[1:2], 2) + strings.Repeat(color[2:3], 2) + strings.Repeat(color[3:4], 2)
	}
	return template.CSS("background-color: " + bg + "20; color: " + color)
}

// Initials returns the first letter of every word in name, e.g. "JD".
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// FirstLetter returns the first letter of name.
func FirstLetter(name string) string {
	r, size := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// TwitterURL links a Twitter handle, with or without the leading "@".
func TwitterURL(handle string) string {
	return "https://twitter.com/" + url.PathEscape(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// PostExcerpt returns the authored excerpt of p, or one generated from its body.
func PostExcerpt(p cosmic.Post) string {
	if p.Metadata.Excerpt != "" {
		return p.Metadata.Excerpt
	}
	return format.Excerpt(p.Metadata.Content)
}
