package cosmicblog

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/cosmicblog/cosmic"
	"github.com/eringen/cosmicblog/markdown"
	"github.com/eringen/cosmicblog/views"
)

// site collects the values every page renders. A failure loading the
// category navigation is logged and the header renders without it.
func (a *App) site(c echo.Context) views.Site {
	cats, err := a.source.Categories(c.Request().Context())
	if err != nil {
		c.Logger().Warnf("navigation categories: %v", err)
		cats = nil
	}
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Keywords:    a.Config.Keywords,
		Locale:      a.Config.Locale,
		Categories:  cats,
		Preview:     IsPreview(c),
		Year:        time.Now().Year(),
	}
}

func (a *App) handleHome(c echo.Context) error {
	var posts, featured []cosmic.Post
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		posts, err = a.source.Posts(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		featured, err = a.source.FeaturedPosts(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("cosmicblog: home: %w", err)
	}

	page := views.HomePage{
		Site:  a.site(c),
		Meta:  siteMeta(a.Config),
		Posts: posts,
	}
	if len(featured) > 0 {
		hero := featured[0]
		page.Hero = &hero
		page.Posts = excludePost(posts, hero.ID)
	}
	return Render(c, a.Views.Home(page))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.source.Post(c.Request().Context(), c.Param("slug"))
	if errors.Is(err, cosmic.ErrNotFound) {
		return a.renderNotFound(c, "Post Not Found")
	}
	if err != nil {
		return fmt.Errorf("cosmicblog: post %q: %w", c.Param("slug"), err)
	}
	return Render(c, a.Views.Post(views.PostPage{
		Site: a.site(c),
		Meta: PostMeta(post, a.Config),
		Post: post,
		Body: template.HTML(markdown.ToHTML(post.Metadata.Content)),
	}))
}

func (a *App) handleAuthors(c echo.Context) error {
	authors, err := a.source.Authors(c.Request().Context())
	if err != nil {
		return fmt.Errorf("cosmicblog: authors: %w", err)
	}
	return Render(c, a.Views.Authors(views.AuthorsPage{
		Site:    a.site(c),
		Meta:    pageMeta(a.Config, "Authors", "Meet the writers behind "+a.Config.Name+".", "authors"),
		Authors: authors,
	}))
}

func (a *App) handleAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := a.source.Author(ctx, c.Param("slug"))
	if errors.Is(err, cosmic.ErrNotFound) {
		return a.renderNotFound(c, "Author Not Found")
	}
	if err != nil {
		return fmt.Errorf("cosmicblog: author %q: %w", c.Param("slug"), err)
	}
	posts, err := a.source.PostsByAuthor(ctx, author.ID)
	if err != nil {
		return fmt.Errorf("cosmicblog: posts by author %q: %w", author.Slug, err)
	}
	meta := pageMeta(a.Config, author.Title, author.Metadata.Bio, "authors", author.Slug)
	if img := author.Metadata.ProfilePicture; img != nil {
		meta.Image = img.ImgixURL
	}
	return Render(c, a.Views.Author(views.AuthorPage{
		Site:   a.site(c),
		Meta:   meta,
		Author: author,
		Posts:  posts,
	}))
}

func (a *App) handleCategory(c echo.Context) error {
	ctx := c.Request().Context()
	cat, err := a.source.Category(ctx, c.Param("slug"))
	if errors.Is(err, cosmic.ErrNotFound) {
		return a.renderNotFound(c, "Category Not Found")
	}
	if err != nil {
		return fmt.Errorf("cosmicblog: category %q: %w", c.Param("slug"), err)
	}
	posts, err := a.source.PostsByCategory(ctx, cat.ID)
	if err != nil {
		return fmt.Errorf("cosmicblog: posts in category %q: %w", cat.Slug, err)
	}
	return Render(c, a.Views.Category(views.CategoryPage{
		Site:     a.site(c),
		Meta:     pageMeta(a.Config, cat.Title, cat.Metadata.Description, "categories", cat.Slug),
		Category: cat,
		Posts:    posts,
	}))
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.staticPosts(c.Request().Context(), c.Logger()))
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.source.Posts(c.Request().Context())
	if err != nil {
		return fmt.Errorf("cosmicblog: feed: %w", err)
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /preview/\n\nSitemap: " + strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

// handlePreview turns on preview mode when the secret matches and redirects
// to ?slug= or the home page. Failed attempts are rate limited per IP.
func (a *App) handlePreview(c echo.Context) error {
	ip := c.RealIP()
	if !a.previewLimiter.Check(ip) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many preview attempts")
	}
	secret := c.QueryParam("secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(a.Config.PreviewSecret)) != 1 {
		a.previewLimiter.Record(ip)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid preview secret")
	}
	if err := setPreviewSession(c); err != nil {
		return err
	}
	target := "/"
	if slug := c.QueryParam("slug"); slug != "" {
		target = "/posts/" + views.PathEscape(slug) + "/"
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func handlePreviewExit(c echo.Context) error {
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// StaticPaths returns the path of every post page. An upstream failure
// yields an empty list.
func (a *App) StaticPaths(ctx context.Context) []string {
	posts := a.staticPosts(ctx, a.Echo.Logger)
	paths := make([]string, 0, len(posts))
	for _, p := range posts {
		paths = append(paths, "/posts/"+views.PathEscape(p.Slug)+"/")
	}
	return paths
}

func (a *App) staticPosts(ctx context.Context, logger echo.Logger) []cosmic.Post {
	posts, err := a.source.Posts(ctx)
	if err != nil {
		logger.Warnf("listing posts for static paths: %v", err)
		return nil
	}
	return posts
}

func (a *App) renderNotFound(c echo.Context, title string) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(views.ErrorPage{
		Site: a.site(c),
		Meta: notFoundMeta(a.Config, title),
	}))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c, "Page Not Found")
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(views.ErrorPage{
			Site: views.Site{
				Name:        a.Config.Name,
				URL:         a.Config.URL,
				Description: a.Config.Description,
				Year:        time.Now().Year(),
			},
			Meta: notFoundMeta(a.Config, "Something went wrong"),
		}))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
