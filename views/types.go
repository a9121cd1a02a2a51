package views

import (
	"html/template"

	"github.com/eringen/cosmicblog/cosmic"
)

// Site holds site-wide values every page renders: branding for the <head>
// and the category navigation for the header.
type Site struct {
	Name        string
	URL         string
	Description string
	Keywords    []string
	Locale      string
	Categories  []cosmic.Category
	Preview     bool
	Year        int
}

// PageMeta carries per-page OpenGraph, Twitter and SEO metadata into the <head> template.
type PageMeta struct {
	Title         string
	Description   string
	URL           string // canonical + og:url
	OGType        string // "website" or "article"
	PublishedTime string
	Authors       []string
	Image         string
	TwitterCard   string
	JSONLD        string
}

// HomePage is the landing page: an optional hero and the latest posts.
type HomePage struct {
	Site  Site
	Meta  PageMeta
	Hero  *cosmic.Post
	Posts []cosmic.Post
}

// PostPage is a single article with its body already rendered to HTML.
type PostPage struct {
	Site Site
	Meta PageMeta
	Post cosmic.Post
	Body template.HTML
}

// AuthorsPage lists every author.
type AuthorsPage struct {
	Site    Site
	Meta    PageMeta
	Authors []cosmic.Author
}

// AuthorPage is an author profile with their posts.
type AuthorPage struct {
	Site   Site
	Meta   PageMeta
	Author cosmic.Author
	Posts  []cosmic.Post
}

// CategoryPage is a category header with its posts.
type CategoryPage struct {
	Site     Site
	Meta     PageMeta
	Category cosmic.Category
	Posts    []cosmic.Post
}

// ErrorPage backs the not-found and server-error pages.
type ErrorPage struct {
	Site Site
	Meta PageMeta
}
