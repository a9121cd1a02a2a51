// Package cosmic reads posts, authors and categories from the Cosmic
// headless CMS REST API.
package cosmic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is the public Cosmic API host.
const DefaultEndpoint = "https://api.cosmicjs.com"

const (
	objectProps = "id,slug,title,content,metadata,type,status,created_at,modified_at"
	defaultSort = "-created_at"
)

// ErrNotFound is returned when no object matches a single-object lookup.
var ErrNotFound = errors.New("cosmic: object not found")

// APIError is a non-2xx response other than "no objects found".
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cosmic: api returned %d", e.Status)
	}
	return fmt.Sprintf("cosmic: api returned %d: %s", e.Status, e.Message)
}

type previewKey struct{}

// WithPreview marks ctx so lookups include draft objects.
func WithPreview(ctx context.Context) context.Context {
	return context.WithValue(ctx, previewKey{}, true)
}

// IsPreview reports whether ctx was marked by WithPreview.
func IsPreview(ctx context.Context) bool {
	v, _ := ctx.Value(previewKey{}).(bool)
	return v
}

// Config configures a Client.
type Config struct {
	Endpoint   string        // API host (default DefaultEndpoint)
	BucketSlug string        // Required
	ReadKey    string        // Required
	Timeout    time.Duration // Per-request timeout (default 10s)
	HTTPClient *http.Client  // Overrides Timeout when set
}

// Client is a read-only client for a single bucket.
type Client struct {
	base    string
	readKey string
	http    *http.Client
}

// NewClient returns a Client for the bucket in cfg.
func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		base:    strings.TrimRight(endpoint, "/") + "/v3/buckets/" + url.PathEscape(cfg.BucketSlug) + "/objects",
		readKey: cfg.ReadKey,
		http:    hc,
	}
}

// Posts returns every post, newest first.
func (c *Client) Posts(ctx context.Context) ([]Post, error) {
	return find[Post](ctx, c, map[string]any{"type": TypePosts})
}

// FeaturedPosts returns posts flagged as featured.
func (c *Client) FeaturedPosts(ctx context.Context) ([]Post, error) {
	return find[Post](ctx, c, map[string]any{"type": TypePosts, "metadata.featured": true})
}

// Post returns the post with the given slug or ErrNotFound.
func (c *Client) Post(ctx context.Context, slug string) (Post, error) {
	return findOne[Post](ctx, c, map[string]any{"type": TypePosts, "slug": slug})
}

// PostsByAuthor returns posts written by the author with the given ID.
func (c *Client) PostsByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	return find[Post](ctx, c, map[string]any{"type": TypePosts, "metadata.author": authorID})
}

// PostsByCategory returns posts filed under the category with the given ID.
func (c *Client) PostsByCategory(ctx context.Context, categoryID string) ([]Post, error) {
	return find[Post](ctx, c, map[string]any{"type": TypePosts, "metadata.categories": categoryID})
}

// Authors returns every author.
func (c *Client) Authors(ctx context.Context) ([]Author, error) {
	return find[Author](ctx, c, map[string]any{"type": TypeAuthors})
}

// Author returns the author with the given slug or ErrNotFound.
func (c *Client) Author(ctx context.Context, slug string) (Author, error) {
	return findOne[Author](ctx, c, map[string]any{"type": TypeAuthors, "slug": slug})
}

// Categories returns every category.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	return find[Category](ctx, c, map[string]any{"type": TypeCategories})
}

// Category returns the category with the given slug or ErrNotFound.
func (c *Client) Category(ctx context.Context, slug string) (Category, error) {
	return findOne[Category](ctx, c, map[string]any{"type": TypeCategories, "slug": slug})
}

func find[T any](ctx context.Context, c *Client, query map[string]any) ([]T, error) {
	var resp Response[T]
	found, err := c.get(ctx, query, 0, &resp)
	if err != nil {
		return nil, err
	}
	if !found || resp.Objects == nil {
		return []T{}, nil
	}
	return resp.Objects, nil
}

func findOne[T any](ctx context.Context, c *Client, query map[string]any) (T, error) {
	var zero T
	var resp Response[T]
	found, err := c.get(ctx, query, 1, &resp)
	if err != nil {
		return zero, err
	}
	if !found || len(resp.Objects) == 0 {
		return zero, ErrNotFound
	}
	return resp.Objects[0], nil
}

// get issues an objects query and decodes the body into out. A 404 from the
// API means the query matched nothing and is reported as found == false.
func (c *Client) get(ctx context.Context, query map[string]any, limit int, out any) (bool, error) {
	q, err := json.Marshal(query)
	if err != nil {
		return false, fmt.Errorf("cosmic: encode query: %w", err)
	}
	params := url.Values{}
	params.Set("query", string(q))
	params.Set("read_key", c.readKey)
	params.Set("props", objectProps)
	params.Set("depth", "1")
	params.Set("sort", defaultSort)
	if limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if IsPreview(ctx) {
		params.Set("status", "any")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"?"+params.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("cosmic: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("cosmic: request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return false, decodeAPIError(res)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return false, fmt.Errorf("cosmic: decode response: %w", err)
	}
	return true, nil
}

func decodeAPIError(res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	var payload struct {
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		msg = payload.Message
	}
	return &APIError{Status: res.StatusCode, Message: msg}
}
