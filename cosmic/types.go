package cosmic

import "fmt"

// Object type tags used by the content store.
const (
	TypePosts      = "posts"
	TypeAuthors    = "authors"
	TypeCategories = "categories"
)

// Base holds the fields shared by every object in the content store.
type Base struct {
	ID         string `json:"id"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Content    string `json:"content,omitempty"`
	Type       string `json:"type"`
	Status     string `json:"status,omitempty"`
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
}

// Object is an untyped record with a freeform metadata map.
type Object struct {
	Base
	Metadata map[string]any `json:"metadata"`
}

// IsPost reports whether o is tagged as a post.
func (o Object) IsPost() bool { return o.Type == TypePosts }

// IsAuthor reports whether o is tagged as an author.
func (o Object) IsAuthor() bool { return o.Type == TypeAuthors }

// IsCategory reports whether o is tagged as a category.
func (o Object) IsCategory() bool { return o.Type == TypeCategories }

// Image is a media descriptor. ImgixURL accepts imgix query parameters.
type Image struct {
	URL      string `json:"url"`
	ImgixURL string `json:"imgix_url"`
}

// Transform returns a cropped, auto-compressed variant of the image sized w x h.
func (i Image) Transform(w, h int) string {
	base := i.ImgixURL
	if base == "" {
		base = i.URL
	}
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s?w=%d&h=%d&fit=crop&auto=format,compress", base, w, h)
}

// Post is a blog article.
type Post struct {
	Base
	Metadata PostMetadata `json:"metadata"`
}

// PostMetadata is the post-specific part of a Post.
type PostMetadata struct {
	Content         string     `json:"content"`
	FeaturedImage   *Image     `json:"featured_image,omitempty"`
	Excerpt         string     `json:"excerpt,omitempty"`
	Author          *Author    `json:"author,omitempty"`
	Categories      []Category `json:"categories,omitempty"`
	PublicationDate string     `json:"publication_date"`
	Featured        bool       `json:"featured,omitempty"`
}

// Author is a writer profile.
type Author struct {
	Base
	Metadata AuthorMetadata `json:"metadata"`
}

// AuthorMetadata is the author-specific part of an Author.
type AuthorMetadata struct {
	Bio            string `json:"bio,omitempty"`
	ProfilePicture *Image `json:"profile_picture,omitempty"`
	Twitter        string `json:"twitter,omitempty"`
	LinkedIn       string `json:"linkedin,omitempty"`
	Website        string `json:"website,omitempty"`
}

// Category groups posts and tints their badges with Color.
type Category struct {
	Base
	Metadata CategoryMetadata `json:"metadata"`
}

// CategoryMetadata is the category-specific part of a Category.
type CategoryMetadata struct {
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// Response is the envelope returned by the objects endpoint.
type Response[T any] struct {
	Objects []T `json:"objects"`
	Total   int `json:"total"`
	Limit   int `json:"limit"`
	Skip    int `json:"skip"`
}
