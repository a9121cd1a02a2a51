package cosmicblog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/cosmicblog/cosmic"
)

// Content directories read by Import, in dependency order.
const (
	CategoriesDir = "categories"
	AuthorsDir    = "authors"
	PostsDir      = "posts"
)

type categoryMatter struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
}

type authorMatter struct {
	Name           string `yaml:"name"`
	Title          string `yaml:"title"`
	Slug           string `yaml:"slug"`
	Bio            string `yaml:"bio"`
	ProfilePicture string `yaml:"profile_picture"`
	Twitter        string `yaml:"twitter"`
	LinkedIn       string `yaml:"linkedin"`
	Website        string `yaml:"website"`
}

type postMatter struct {
	Title         string   `yaml:"title"`
	Slug          string   `yaml:"slug"`
	Date          string   `yaml:"date"`
	Excerpt       string   `yaml:"excerpt"`
	FeaturedImage string   `yaml:"featured_image"`
	Author        string   `yaml:"author"`
	Categories    []string `yaml:"categories"`
	Featured      bool     `yaml:"featured"`
	Status        string   `yaml:"status"`
	Draft         bool     `yaml:"draft"`
}

// ImportResult counts what Import wrote and removed.
type ImportResult struct {
	Categories int
	Authors    int
	Posts      int
	Pruned     int64
}

// Import loads a content directory into s. dir holds categories/, authors/
// and posts/ sub-directories of markdown files with YAML front matter.
// Posts reference their author and categories by slug; the references are
// stored expanded. Objects whose file is gone are removed from s for every
// sub-directory that exists.
func Import(ctx context.Context, s *Store, dir string) (ImportResult, error) {
	var res ImportResult
	titler := cases.Title(language.English)

	categories := make(map[string]cosmic.Category)
	files, present, err := markdownFiles(dir, CategoriesDir)
	if err != nil {
		return res, err
	}
	for _, path := range files {
		var m categoryMatter
		body, err := parseFile(path, &m)
		if err != nil {
			return res, err
		}
		c := cosmic.Category{
			Base: cosmic.Base{Slug: slugFor(m.Slug, path), Title: titleFor(titler, m.Title, path)},
			Metadata: cosmic.CategoryMetadata{
				Description: firstNonEmpty(m.Description, body),
				Color:       m.Color,
			},
		}
		if err := s.SaveCategory(ctx, &c); err != nil {
			return res, fmt.Errorf("cosmicblog: import %s: %w", path, err)
		}
		categories[c.Slug] = c
		res.Categories++
	}
	if err := prune(ctx, s, &res, present, cosmic.TypeCategories, categories); err != nil {
		return res, err
	}

	authors := make(map[string]cosmic.Author)
	files, present, err = markdownFiles(dir, AuthorsDir)
	if err != nil {
		return res, err
	}
	for _, path := range files {
		var m authorMatter
		body, err := parseFile(path, &m)
		if err != nil {
			return res, err
		}
		a := cosmic.Author{
			Base: cosmic.Base{Slug: slugFor(m.Slug, path), Title: titleFor(titler, firstNonEmpty(m.Name, m.Title), path)},
			Metadata: cosmic.AuthorMetadata{
				Bio:            firstNonEmpty(m.Bio, body),
				ProfilePicture: imageFor(m.ProfilePicture),
				Twitter:        m.Twitter,
				LinkedIn:       m.LinkedIn,
				Website:        m.Website,
			},
		}
		if err := s.SaveAuthor(ctx, &a); err != nil {
			return res, fmt.Errorf("cosmicblog: import %s: %w", path, err)
		}
		authors[a.Slug] = a
		res.Authors++
	}
	if err := prune(ctx, s, &res, present, cosmic.TypeAuthors, authors); err != nil {
		return res, err
	}

	posts := make(map[string]cosmic.Post)
	files, present, err = markdownFiles(dir, PostsDir)
	if err != nil {
		return res, err
	}
	for _, path := range files {
		var m postMatter
		body, err := parseFile(path, &m)
		if err != nil {
			return res, err
		}
		p, err := buildPost(ctx, s, titler, path, m, body, authors, categories)
		if err != nil {
			return res, err
		}
		if err := s.SavePost(ctx, &p); err != nil {
			return res, fmt.Errorf("cosmicblog: import %s: %w", path, err)
		}
		posts[p.Slug] = p
		res.Posts++
	}
	if err := prune(ctx, s, &res, present, cosmic.TypePosts, posts); err != nil {
		return res, err
	}
	return res, nil
}

func buildPost(ctx context.Context, s *Store, titler cases.Caser, path string, m postMatter, body string,
	authors map[string]cosmic.Author, categories map[string]cosmic.Category) (cosmic.Post, error) {
	p := cosmic.Post{
		Base: cosmic.Base{Slug: slugFor(m.Slug, path), Title: titleFor(titler, m.Title, path)},
		Metadata: cosmic.PostMetadata{
			Content:       body,
			Excerpt:       m.Excerpt,
			FeaturedImage: imageFor(m.FeaturedImage),
			Featured:      m.Featured,
		},
	}
	if m.Draft || strings.EqualFold(m.Status, "draft") {
		p.Status = "draft"
	}
	if m.Date != "" {
		t, err := parseMatterDate(m.Date)
		if err != nil {
			return p, fmt.Errorf("cosmicblog: import %s: date %q: %w", path, m.Date, err)
		}
		p.Metadata.PublicationDate = t.Format("2006-01-02")
		p.CreatedAt = t.UTC().Format(time.RFC3339)
	}

	// Lookups outside this import see drafts too.
	lookup := cosmic.WithPreview(ctx)
	if m.Author != "" {
		a, ok := authors[m.Author]
		if !ok {
			var err error
			if a, err = s.Author(lookup, m.Author); err != nil {
				return p, fmt.Errorf("cosmicblog: import %s: author %q: %w", path, m.Author, err)
			}
		}
		p.Metadata.Author = &a
	}
	for _, slug := range m.Categories {
		c, ok := categories[slug]
		if !ok {
			var err error
			if c, err = s.Category(lookup, slug); err != nil {
				return p, fmt.Errorf("cosmicblog: import %s: category %q: %w", path, slug, err)
			}
		}
		p.Metadata.Categories = append(p.Metadata.Categories, c)
	}
	return p, nil
}

// markdownFiles lists the .md files in dir/sub. present is false when the
// sub-directory does not exist.
func markdownFiles(dir, sub string) (files []string, present bool, err error) {
	root := filepath.Join(dir, sub)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, false, nil
	}
	files, err = filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return nil, true, err
	}
	return files, true, nil
}

func parseFile(path string, out any) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	body, err := frontmatter.Parse(bytes.NewReader(data), out)
	if err != nil {
		return "", fmt.Errorf("cosmicblog: front matter in %s: %w", path, err)
	}
	return strings.TrimSpace(string(body)), nil
}

func prune[T any](ctx context.Context, s *Store, res *ImportResult, present bool, typ string, seen map[string]T) error {
	if !present {
		return nil
	}
	keep := make([]string, 0, len(seen))
	for slug := range seen {
		keep = append(keep, slug)
	}
	n, err := s.Prune(ctx, typ, keep)
	if err != nil {
		return fmt.Errorf("cosmicblog: prune %s: %w", typ, err)
	}
	res.Pruned += n
	return nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func slugFor(slug, path string) string {
	if slug != "" {
		return slug
	}
	return Slugify(baseName(path))
}

// titleFor falls back to the file name, "getting-started" -> "Getting Started".
func titleFor(titler cases.Caser, title, path string) string {
	if title != "" {
		return title
	}
	return titler.String(strings.NewReplacer("-", " ", "_", " ").Replace(baseName(path)))
}

func imageFor(url string) *cosmic.Image {
	if url == "" {
		return nil
	}
	return &cosmic.Image{URL: url, ImgixURL: url}
}

func parseMatterDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
