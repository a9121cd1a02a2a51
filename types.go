package cosmicblog

import (
	"context"

	"github.com/a-h/templ"

	"github.com/eringen/cosmicblog/cosmic"
	"github.com/eringen/cosmicblog/views"
)

// Source is where pages read content from. *cosmic.Client reads the
// Cosmic API and *Store reads a local SQLite database.
type Source interface {
	Posts(ctx context.Context) ([]cosmic.Post, error)
	FeaturedPosts(ctx context.Context) ([]cosmic.Post, error)
	Post(ctx context.Context, slug string) (cosmic.Post, error)
	PostsByAuthor(ctx context.Context, authorID string) ([]cosmic.Post, error)
	PostsByCategory(ctx context.Context, categoryID string) ([]cosmic.Post, error)
	Authors(ctx context.Context) ([]cosmic.Author, error)
	Author(ctx context.Context, slug string) (cosmic.Author, error)
	Categories(ctx context.Context) ([]cosmic.Category, error)
	Category(ctx context.Context, slug string) (cosmic.Category, error)
}

var (
	_ Source = (*cosmic.Client)(nil)
	_ Source = (*Store)(nil)
)

// ViewFuncs holds the templ components the handlers render. Any nil field
// falls back to the matching component in package views.
type ViewFuncs struct {
	Home        func(views.HomePage) templ.Component
	Post        func(views.PostPage) templ.Component
	Authors     func(views.AuthorsPage) templ.Component
	Author      func(views.AuthorPage) templ.Component
	Category    func(views.CategoryPage) templ.Component
	NotFound    func(views.ErrorPage) templ.Component
	ServerError func(views.ErrorPage) templ.Component
}

func (v *ViewFuncs) setDefaults() {
	if v.Home == nil {
		v.Home = views.Home
	}
	if v.Post == nil {
		v.Post = views.Post
	}
	if v.Authors == nil {
		v.Authors = views.Authors
	}
	if v.Author == nil {
		v.Author = views.Author
	}
	if v.Category == nil {
		v.Category = views.Category
	}
	if v.NotFound == nil {
		v.NotFound = views.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = views.ServerError
	}
}
