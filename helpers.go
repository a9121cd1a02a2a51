package cosmicblog

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/cosmicblog/cosmic"
	"github.com/eringen/cosmicblog/views"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	return marshalJsonLD(data)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post cosmic.Post, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, "posts", post.Slug)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   views.PostExcerpt(post),
		"datePublished": post.Metadata.PublicationDate,
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.ModifiedAt != "" {
		data["dateModified"] = post.ModifiedAt
	}
	if a := post.Metadata.Author; a != nil {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  a.Title,
			"url":   BuildURL(cfg.URL, "authors", a.Slug),
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if img := post.Metadata.FeaturedImage; img != nil && img.ImgixURL != "" {
		data["image"] = img.ImgixURL
	}
	if len(post.Metadata.Categories) > 0 {
		names := make([]string, len(post.Metadata.Categories))
		for i, c := range post.Metadata.Categories {
			names[i] = c.Title
		}
		data["keywords"] = strings.Join(names, ", ")
	}
	return marshalJsonLD(data)
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// siteMeta is the default metadata used by the home page.
func siteMeta(cfg SiteConfig) views.PageMeta {
	return views.PageMeta{
		Title:       cfg.Name,
		Description: cfg.Description,
		URL:         BuildURL(cfg.URL),
		OGType:      "website",
		TwitterCard: "summary_large_image",
		JSONLD:      WebsiteJsonLD(cfg),
	}
}

// pageMeta builds website metadata for a secondary page.
func pageMeta(cfg SiteConfig, title, description string, segs ...string) views.PageMeta {
	if description == "" {
		description = cfg.Description
	}
	return views.PageMeta{
		Title:       title + " | " + cfg.Name,
		Description: description,
		URL:         BuildURL(cfg.URL, segs...),
		OGType:      "website",
		TwitterCard: "summary_large_image",
	}
}

// PostMeta builds the article metadata of a post page.
func PostMeta(post cosmic.Post, cfg SiteConfig) views.PageMeta {
	description := post.Metadata.Excerpt
	if description == "" {
		description = "Read " + post.Title + " on " + cfg.Name
	}
	m := views.PageMeta{
		Title:         post.Title,
		Description:   description,
		URL:           BuildURL(cfg.URL, "posts", post.Slug),
		OGType:        "article",
		PublishedTime: post.Metadata.PublicationDate,
		TwitterCard:   "summary_large_image",
		JSONLD:        BlogPostingJsonLD(post, cfg),
	}
	if a := post.Metadata.Author; a != nil && a.Title != "" {
		m.Authors = []string{a.Title}
	}
	if img := post.Metadata.FeaturedImage; img != nil {
		m.Image = img.ImgixURL
		if m.Image == "" {
			m.Image = img.URL
		}
	}
	return m
}

// notFoundMeta is used for 404 pages; missing posts get a post-specific title.
func notFoundMeta(cfg SiteConfig, title string) views.PageMeta {
	return views.PageMeta{
		Title:       title,
		Description: cfg.Description,
		OGType:      "website",
		TwitterCard: "summary",
	}
}

// excludePost returns posts without the one whose ID is id.
func excludePost(posts []cosmic.Post, id string) []cosmic.Post {
	if id == "" {
		return posts
	}
	out := make([]cosmic.Post, 0, len(posts))
	for _, p := range posts {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
