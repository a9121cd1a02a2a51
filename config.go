package cosmicblog

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// SiteConfig holds all configuration for a cosmicblog site.
type SiteConfig struct {
	Name        string   // Site name (default "Modern Blog")
	URL         string   // Canonical URL (default "http://localhost:3000")
	Description string   // Site description for meta tags and RSS
	Keywords    []string // Default meta keywords
	Locale      string   // og:locale (default "en_US")

	Addr string // Listen address (default ":3000")

	BucketSlug     string        // Cosmic bucket slug (COSMIC_BUCKET_SLUG)
	ReadKey        string        // Cosmic read key (COSMIC_READ_KEY)
	APIEndpoint    string        // Cosmic API host (default https://api.cosmicjs.com)
	RequestTimeout time.Duration // Upstream request timeout (default 10s)

	// DatabasePath switches the content source to a local SQLite database
	// filled by the import command. Bucket settings are ignored when set.
	DatabasePath string

	PreviewSecret string // Enables /preview/ when set
	SessionSecret string // Required with PreviewSecret
	CookieSecure  bool   // Set true for HTTPS
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Modern Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Description == "" {
		c.Description = "Discover insightful articles on technology, travel, and lifestyle."
	}
	if c.Locale == "" {
		c.Locale = "en_US"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
}

// Validate reports missing or malformed settings.
func (c SiteConfig) Validate() error {
	return c.validate(c.DatabasePath == "")
}

// validate checks c; bucket settings are only required when remote is true.
func (c SiteConfig) validate(remote bool) error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.URL, validation.Required, is.URL),
		validation.Field(&c.BucketSlug, validation.When(remote, validation.Required)),
		validation.Field(&c.ReadKey, validation.When(remote, validation.Required)),
		validation.Field(&c.APIEndpoint, is.URL),
		validation.Field(&c.SessionSecret, validation.When(c.PreviewSecret != "", validation.Required, validation.Length(16, 0))),
	)
}

// Option configures additional App behavior.
type Option func(*App)

// WithSource replaces the content source built from SiteConfig.
func WithSource(src Source) Option {
	return func(a *App) {
		a.source = src
	}
}

// WithStaticDir serves user-owned static assets under /public from dir.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
