package cosmicblog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/eringen/cosmicblog/cosmic"
)

// fakeSource serves fixed content and records what it was asked.
type fakeSource struct {
	mu sync.Mutex

	posts      []cosmic.Post
	featured   []cosmic.Post
	authors    []cosmic.Author
	categories []cosmic.Category

	postsErr      error
	categoriesErr error

	calls   []string
	preview bool
}

func (f *fakeSource) record(ctx context.Context, call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if cosmic.IsPreview(ctx) {
		f.preview = true
	}
}

func (f *fakeSource) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeSource) Posts(ctx context.Context) ([]cosmic.Post, error) {
	f.record(ctx, "Posts")
	return f.posts, f.postsErr
}

func (f *fakeSource) FeaturedPosts(ctx context.Context) ([]cosmic.Post, error) {
	f.record(ctx, "FeaturedPosts")
	return f.featured, nil
}

func (f *fakeSource) Post(ctx context.Context, slug string) (cosmic.Post, error) {
	f.record(ctx, "Post:"+slug)
	for _, p := range f.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return cosmic.Post{}, cosmic.ErrNotFound
}

func (f *fakeSource) PostsByAuthor(ctx context.Context, authorID string) ([]cosmic.Post, error) {
	f.record(ctx, "PostsByAuthor:"+authorID)
	var out []cosmic.Post
	for _, p := range f.posts {
		if p.Metadata.Author != nil && p.Metadata.Author.ID == authorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) PostsByCategory(ctx context.Context, categoryID string) ([]cosmic.Post, error) {
	f.record(ctx, "PostsByCategory:"+categoryID)
	var out []cosmic.Post
	for _, p := range f.posts {
		for _, c := range p.Metadata.Categories {
			if c.ID == categoryID {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeSource) Authors(ctx context.Context) ([]cosmic.Author, error) {
	f.record(ctx, "Authors")
	return f.authors, nil
}

func (f *fakeSource) Author(ctx context.Context, slug string) (cosmic.Author, error) {
	f.record(ctx, "Author:"+slug)
	for _, a := range f.authors {
		if a.Slug == slug {
			return a, nil
		}
	}
	return cosmic.Author{}, cosmic.ErrNotFound
}

func (f *fakeSource) Categories(ctx context.Context) ([]cosmic.Category, error) {
	f.record(ctx, "Categories")
	return f.categories, f.categoriesErr
}

func (f *fakeSource) Category(ctx context.Context, slug string) (cosmic.Category, error) {
	f.record(ctx, "Category:"+slug)
	for _, c := range f.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return cosmic.Category{}, cosmic.ErrNotFound
}

func newFakeSource() *fakeSource {
	jane := cosmic.Author{
		Base:     cosmic.Base{ID: "a1", Slug: "jane", Title: "Jane Doe"},
		Metadata: cosmic.AuthorMetadata{Bio: "Writes about Go."},
	}
	tech := cosmic.Category{
		Base:     cosmic.Base{ID: "c1", Slug: "tech", Title: "Tech"},
		Metadata: cosmic.CategoryMetadata{Description: "All things tech.", Color: "#3b82f6"},
	}
	hero := cosmic.Post{
		Base: cosmic.Base{ID: "p1", Slug: "hero", Title: "Hero Post"},
		Metadata: cosmic.PostMetadata{
			Content:         "The **hero** post.",
			PublicationDate: "2024-03-05",
			Featured:        true,
			Author:          &jane,
		},
	}
	hello := cosmic.Post{
		Base: cosmic.Base{ID: "p2", Slug: "hello", Title: "Hello World", ModifiedAt: "2024-02-02T10:00:00Z"},
		Metadata: cosmic.PostMetadata{
			Content:         "Hello **there**.",
			Excerpt:         "A friendly greeting.",
			PublicationDate: "2024-02-01",
			Author:          &jane,
			Categories:      []cosmic.Category{tech},
		},
	}
	return &fakeSource{
		posts:      []cosmic.Post{hero, hello},
		featured:   []cosmic.Post{hero},
		authors:    []cosmic.Author{jane},
		categories: []cosmic.Category{tech},
	}
}

func newTestApp(t *testing.T, src Source, cfg SiteConfig) *App {
	t.Helper()
	if cfg.URL == "" {
		cfg.URL = "https://blog.example.com"
	}
	a := New(cfg, ViewFuncs{}, WithSource(src), WithStaticDir(t.TempDir()))
	if err := a.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func get(a *App, path string) *httptest.ResponseRecorder {
	return serve(a, httptest.NewRequest(http.MethodGet, path, nil))
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHomeJoinsPostsAndFeatured(t *testing.T) {
	src := newFakeSource()
	a := newTestApp(t, src, SiteConfig{})

	rec := get(a, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rec.Code)
	}
	if !src.called("Posts") || !src.called("FeaturedPosts") {
		t.Errorf("home should fetch posts and featured posts, calls = %v", src.calls)
	}
	assertContains(t, rec.Body.String(),
		"Welcome to Modern Blog",
		`href="/posts/hero/"`,
		`href="/posts/hello/"`,
		`href="/categories/tech/"`,
		`"@type":"WebSite"`,
	)
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestHomeUpstreamFailure(t *testing.T) {
	src := newFakeSource()
	src.postsErr = errors.New("upstream down")
	a := newTestApp(t, src, SiteConfig{})

	rec := get(a, "/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("GET / = %d, want 500", rec.Code)
	}
	assertContains(t, rec.Body.String(), "Something went wrong")
}

func TestNavigationFailureDegrades(t *testing.T) {
	src := newFakeSource()
	src.categoriesErr = errors.New("categories down")
	a := newTestApp(t, src, SiteConfig{})

	rec := get(a, "/posts/hero/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /posts/hero/ = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `class="nav-category"`) {
		t.Error("header should render without categories")
	}
}

func TestPostPage(t *testing.T) {
	a := newTestApp(t, newFakeSource(), SiteConfig{})

	rec := get(a, "/posts/hello/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /posts/hello/ = %d", rec.Code)
	}
	assertContains(t, rec.Body.String(),
		"<title>Hello World</title>",
		`<meta name="description" content="A friendly greeting.">`,
		`<meta property="og:type" content="article">`,
		`<link rel="canonical" href="https://blog.example.com/posts/hello/">`,
		"Hello <strong>there</strong>.",
		"Feb 1, 2024",
		"1 min read",
		`"@type":"BlogPosting"`,
	)
}

func TestPostPageDescriptionFallback(t *testing.T) {
	a := newTestApp(t, newFakeSource(), SiteConfig{Name: "Modern Blog"})

	rec := get(a, "/posts/hero/")
	assertContains(t, rec.Body.String(), `content="Read Hero Post on Modern Blog"`)
}

func TestPostNotFound(t *testing.T) {
	a := newTestApp(t, newFakeSource(), SiteConfig{})

	rec := get(a, "/posts/missing/")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /posts/missing/ = %d, want 404", rec.Code)
	}
	assertContains(t, rec.Body.String(), "<title>Post Not Found</title>", "Page not found")
}

func TestAuthorPages(t *testing.T) {
	src := newFakeSource()
	a := newTestApp(t, src, SiteConfig{})

	rec := get(a, "/authors/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /authors/ = %d", rec.Code)
	}
	assertContains(t, rec.Body.String(), "Jane Doe", `href="/authors/jane/"`)

	rec = get(a, "/authors/jane/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /authors/jane/ = %d", rec.Code)
	}
	if !src.called("PostsByAuthor:a1") {
		t.Errorf("author page should list posts by author ID, calls = %v", src.calls)
	}
	assertContains(t, rec.Body.String(), "Writes about Go.", `href="/posts/hello/"`)

	if rec := get(a, "/authors/nobody/"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /authors/nobody/ = %d, want 404", rec.Code)
	}
}

func TestCategoryPage(t *testing.T) {
	src := newFakeSource()
	a := newTestApp(t, src, SiteConfig{})

	rec := get(a, "/categories/tech/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /categories/tech/ = %d", rec.Code)
	}
	if !src.called("PostsByCategory:c1") {
		t.Errorf("category page should list posts by category ID, calls = %v", src.calls)
	}
	assertContains(t, rec.Body.String(), "All things tech.", `href="/posts/hello/"`)

	if rec := get(a, "/categories/none/"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /categories/none/ = %d, want 404", rec.Code)
	}
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	a := newTestApp(t, newFakeSource(), SiteConfig{})

	rec := get(a, "/nothing/here/")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /nothing/here/ = %d, want 404", rec.Code)
	}
	assertContains(t, rec.Body.String(), "Page not found")
}

func TestTrailingSlashRedirect(t *testing.T) {
	a := newTestApp(t, newFakeSource(), SiteConfig{})

	rec := get(a, "/posts/hello")
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("GET /posts/hello = %d, want 301", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/posts/hello/" {
		t.Errorf("Location = %q", loc)
	}
}

func TestSitemap(t *testing.T) {
	a := newTestApp(t, newFakeSource(), SiteConfig{})

	rec := get(a, "/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /sitemap.xml = %d", rec.Code)
	}
	assertContains(t, rec.Body.String(),
		"<loc>https://blog.example.com</loc>",
		"<loc>https://blog.example.com/authors/</loc>",
		"<loc>https://blog.example.com/posts/hello/</loc>",
		"<lastmod>2024-02-02</lastmod>",
	)
}

func TestSitemapSurvivesUpstreamFailure(t *testing.T) {
	src := newFakeSource()
	src.postsErr = errors.New("upstream down")
	a := newTestApp(t, src, SiteConfig{})

	rec := get(a, "/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /sitemap.xml = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "/posts/") {
		t.Error("sitemap should have no posts when listing fails")
	}
}

func TestStaticPaths(t *testing.T) {
	src := newFakeSource()
	a := newTestApp(t, src, SiteConfig{})

	paths := a.StaticPaths(context.Background())
	if len(paths) != 2 || paths[0] != "/posts/hero/" || paths[1] != "/posts/hello/" {
		t.Errorf("StaticPaths = %v", paths)
	}

	src.postsErr = errors.New("upstream down")
	if paths := a.StaticPaths(context.Background()); len(paths) != 0 {
		t.Errorf("StaticPaths on failure = %v, want empty", paths)
	}
}

func TestFeedAndRobots(t *testing.T) {
	a := newTestApp(t, newFakeSource(), SiteConfig{})

	rec := get(a, "/feed.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /feed.xml = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	assertContains(t, rec.Body.String(),
		`<rss version="2.0">`,
		"<link>https://blog.example.com/posts/hello/</link>",
		"<description>A friendly greeting.</description>",
		"<category>Tech</category>",
		"<pubDate>Thu, 01 Feb 2024 00:00:00 +0000</pubDate>",
		"<language>en-us</language>",
	)

	rec = get(a, "/robots.txt")
	assertContains(t, rec.Body.String(), "Sitemap: https://blog.example.com/sitemap.xml")
}

func TestPreviewDisabledByDefault(t *testing.T) {
	a := newTestApp(t, newFakeSource(), SiteConfig{})
	if rec := get(a, "/preview/?secret=x"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /preview/ = %d, want 404 when preview is off", rec.Code)
	}
}

func TestPreviewMode(t *testing.T) {
	src := newFakeSource()
	a := newTestApp(t, src, SiteConfig{
		PreviewSecret: "let-me-in",
		SessionSecret: "0123456789abcdef0123456789abcdef",
	})

	if rec := get(a, "/preview/?secret=wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret = %d, want 401", rec.Code)
	}

	rec := get(a, "/preview/?secret=let-me-in&slug=hello")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("right secret = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/posts/hello/" {
		t.Errorf("Location = %q", loc)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a preview session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/posts/hello/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = serve(a, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview GET = %d", rec.Code)
	}
	if !src.preview {
		t.Error("source should be queried in preview mode")
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("preview Cache-Control = %q, want no-store", got)
	}
	assertContains(t, rec.Body.String(), "Preview mode")
}

func TestPreviewAttemptsAreLimited(t *testing.T) {
	a := newTestApp(t, newFakeSource(), SiteConfig{
		PreviewSecret: "let-me-in",
		SessionSecret: "0123456789abcdef0123456789abcdef",
	})

	for i := 0; i < 5; i++ {
		if rec := get(a, "/preview/?secret=guess"); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d = %d, want 401", i, rec.Code)
		}
	}
	if rec := get(a, "/preview/?secret=let-me-in"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("attempt after limit = %d, want 429", rec.Code)
	}
}

func TestInitRequiresBucketWithoutSource(t *testing.T) {
	a := New(SiteConfig{}, ViewFuncs{})
	if err := a.Init(); err == nil {
		t.Fatal("expected config error without bucket settings")
	}
}
