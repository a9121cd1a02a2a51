// Package views renders the blog pages. Pages are html/template sets that
// share a base layout and partials, exposed as templ components so the
// application can swap any of them for its own.
package views

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"
)

//go:embed templates
var templateFS embed.FS

var (
	homePage        = mustPage("home.html")
	postPage        = mustPage("post.html")
	authorsPage     = mustPage("authors.html")
	authorPage      = mustPage("author.html")
	categoryPage    = mustPage("category.html")
	notFoundPage    = mustPage("not_found.html")
	serverErrorPage = mustPage("server_error.html")
)

// mustPage parses the base layout, every partial and the named page into one
// set. Executing the set runs base.html, which pulls in the page's "content".
func mustPage(name string) *template.Template {
	return template.Must(template.New("base.html").Funcs(funcs).ParseFS(templateFS,
		"templates/base.html",
		"templates/partials/*.html",
		"templates/"+name,
	))
}

// Home renders the landing page.
func Home(p HomePage) templ.Component { return templ.FromGoHTML(homePage, p) }

// Post renders a single article.
func Post(p PostPage) templ.Component { return templ.FromGoHTML(postPage, p) }

// Authors renders the author directory.
func Authors(p AuthorsPage) templ.Component { return templ.FromGoHTML(authorsPage, p) }

// Author renders an author profile.
func Author(p AuthorPage) templ.Component { return templ.FromGoHTML(authorPage, p) }

// Category renders a category listing.
func Category(p CategoryPage) templ.Component { return templ.FromGoHTML(categoryPage, p) }

// NotFound renders the 404 page.
func NotFound(p ErrorPage) templ.Component { return templ.FromGoHTML(notFoundPage, p) }

// ServerError renders the 500 page.
func ServerError(p ErrorPage) templ.Component { return templ.FromGoHTML(serverErrorPage, p) }
