// Package cosmicblog is a server-rendered blog front-end for the Cosmic
// headless CMS, built with Go, Echo, and templ.
//
// Content comes from a Source: the Cosmic API by default, or a local SQLite
// Store filled by Import. Pages are rendered by the components in ViewFuncs,
// which default to package views.
package cosmicblog

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	glog "github.com/labstack/gommon/log"

	"github.com/eringen/cosmicblog/cosmic"
)

// App is the central cosmicblog application. It wires together the content
// source, handlers, middleware, and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Views  ViewFuncs

	source         Source
	store          *Store
	previewLimiter *AttemptLimiter
	staticDir      string
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	views.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(glog.INFO)

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the configuration, opens the content source, and registers
// middleware and routes. Start calls it; tests call it directly and drive
// a.Echo with httptest.
func (a *App) Init() error {
	if err := a.Config.validate(a.source == nil && a.Config.DatabasePath == ""); err != nil {
		return fmt.Errorf("cosmicblog: invalid config: %w", err)
	}

	if a.source == nil {
		if a.Config.DatabasePath != "" {
			store, err := NewStore(a.Config.DatabasePath)
			if err != nil {
				return fmt.Errorf("cosmicblog: init store: %w", err)
			}
			a.store = store
			a.source = store
		} else {
			a.source = cosmic.NewClient(cosmic.Config{
				Endpoint:   a.Config.APIEndpoint,
				BucketSlug: a.Config.BucketSlug,
				ReadKey:    a.Config.ReadKey,
				Timeout:    a.Config.RequestTimeout,
			})
		}
	}

	if a.Config.PreviewSecret != "" {
		a.previewLimiter = NewAttemptLimiter(5, time.Minute)
	}

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

// Start initializes the app and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) setupRoutes() {
	e := a.Echo

	// The embedded stylesheet wins over the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/site.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/posts/:slug/", a.handlePost)
	e.GET("/authors/", a.handleAuthors)
	e.GET("/authors/:slug/", a.handleAuthor)
	e.GET("/categories/:slug/", a.handleCategory)

	if a.Config.PreviewSecret != "" {
		e.GET("/preview/", a.handlePreview)
		e.GET("/preview/exit/", handlePreviewExit)
	}
}

// Close releases the local store, if one was opened, and stops background work.
func (a *App) Close() error {
	if a.previewLimiter != nil {
		a.previewLimiter.Stop()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
