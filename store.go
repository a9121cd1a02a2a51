package cosmicblog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/eringen/cosmicblog/cosmic"
)

// Store wraps a SQLite database of content objects. Each row keeps the
// object as the API would return it at depth 1, so posts carry their
// author and categories inline.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the server read while an import writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS objects (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    slug TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'published',
    created_at TEXT NOT NULL,
    data TEXT NOT NULL,
    UNIQUE (type, slug)
);
CREATE INDEX IF NOT EXISTS objects_type_created ON objects (type, created_at DESC);
`)
	return err
}

// visible is the status filter for ctx; drafts only show in preview.
func visible(ctx context.Context) string {
	if cosmic.IsPreview(ctx) {
		return "1 = 1"
	}
	return "status <> 'draft'"
}

func queryObjects[T any](ctx context.Context, s *Store, where string, args ...any) ([]T, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM objects WHERE `+where+` AND `+visible(ctx)+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("cosmicblog: decode object: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func queryObject[T any](ctx context.Context, s *Store, typ, slug string) (T, error) {
	var v T
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM objects WHERE type = ? AND slug = ? AND `+visible(ctx), typ, slug).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return v, cosmic.ErrNotFound
	}
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return v, fmt.Errorf("cosmicblog: decode object: %w", err)
	}
	return v, nil
}

// Posts returns every post, newest first.
func (s *Store) Posts(ctx context.Context) ([]cosmic.Post, error) {
	return queryObjects[cosmic.Post](ctx, s, `type = ?`, cosmic.TypePosts)
}

// FeaturedPosts returns posts flagged as featured.
func (s *Store) FeaturedPosts(ctx context.Context) ([]cosmic.Post, error) {
	return queryObjects[cosmic.Post](ctx, s,
		`type = ? AND json_extract(data, '$.metadata.featured') = 1`, cosmic.TypePosts)
}

// Post returns the post with the given slug or cosmic.ErrNotFound.
func (s *Store) Post(ctx context.Context, slug string) (cosmic.Post, error) {
	return queryObject[cosmic.Post](ctx, s, cosmic.TypePosts, slug)
}

// PostsByAuthor returns posts written by the author with the given ID.
func (s *Store) PostsByAuthor(ctx context.Context, authorID string) ([]cosmic.Post, error) {
	return queryObjects[cosmic.Post](ctx, s,
		`type = ? AND json_extract(data, '$.metadata.author.id') = ?`, cosmic.TypePosts, authorID)
}

// PostsByCategory returns posts filed under the category with the given ID.
func (s *Store) PostsByCategory(ctx context.Context, categoryID string) ([]cosmic.Post, error) {
	return queryObjects[cosmic.Post](ctx, s,
		`type = ? AND EXISTS (
			SELECT 1 FROM json_each(data, '$.metadata.categories') c
			WHERE json_extract(c.value, '$.id') = ?)`, cosmic.TypePosts, categoryID)
}

// Authors returns every author.
func (s *Store) Authors(ctx context.Context) ([]cosmic.Author, error) {
	return queryObjects[cosmic.Author](ctx, s, `type = ?`, cosmic.TypeAuthors)
}

// Author returns the author with the given slug or cosmic.ErrNotFound.
func (s *Store) Author(ctx context.Context, slug string) (cosmic.Author, error) {
	return queryObject[cosmic.Author](ctx, s, cosmic.TypeAuthors, slug)
}

// Categories returns every category.
func (s *Store) Categories(ctx context.Context) ([]cosmic.Category, error) {
	return queryObjects[cosmic.Category](ctx, s, `type = ?`, cosmic.TypeCategories)
}

// Category returns the category with the given slug or cosmic.ErrNotFound.
func (s *Store) Category(ctx context.Context, slug string) (cosmic.Category, error) {
	return queryObject[cosmic.Category](ctx, s, cosmic.TypeCategories, slug)
}

// Objects returns every stored object of type typ, drafts included, as
// untyped records.
func (s *Store) Objects(ctx context.Context, typ string) ([]cosmic.Object, error) {
	return queryObjects[cosmic.Object](cosmic.WithPreview(ctx), s, `type = ?`, typ)
}

// SaveCategory upserts c by slug and fills in its stored ID and timestamps.
func (s *Store) SaveCategory(ctx context.Context, c *cosmic.Category) error {
	c.Type = cosmic.TypeCategories
	return s.save(ctx, &c.Base, c)
}

// SaveAuthor upserts a by slug and fills in its stored ID and timestamps.
func (s *Store) SaveAuthor(ctx context.Context, a *cosmic.Author) error {
	a.Type = cosmic.TypeAuthors
	return s.save(ctx, &a.Base, a)
}

// SavePost upserts p by slug and fills in its stored ID and timestamps.
func (s *Store) SavePost(ctx context.Context, p *cosmic.Post) error {
	p.Type = cosmic.TypePosts
	return s.save(ctx, &p.Base, p)
}

// save keeps the ID and creation time of an existing object with the same
// type and slug, so references from other objects stay valid across imports.
func (s *Store) save(ctx context.Context, b *cosmic.Base, v any) error {
	if b.Slug == "" {
		return fmt.Errorf("cosmicblog: save %s: empty slug", b.Type)
	}
	if b.Status == "" {
		b.Status = "published"
	}
	now := time.Now().UTC().Format(time.RFC3339)

	var id, created string
	err := s.db.QueryRowContext(ctx, `SELECT id, created_at FROM objects WHERE type = ? AND slug = ?`, b.Type, b.Slug).
		Scan(&id, &created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		if b.CreatedAt == "" {
			b.CreatedAt = now
		}
	case err != nil:
		return err
	default:
		b.ID = id
		if b.CreatedAt == "" {
			b.CreatedAt = created
		}
	}
	b.ModifiedAt = now

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO objects (id, type, slug, status, created_at, data) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Type, b.Slug, b.Status, b.CreatedAt, string(data))
	return err
}

// Prune removes objects of type typ whose slug is not in keep and returns
// how many were deleted.
func (s *Store) Prune(ctx context.Context, typ string, keep []string) (int64, error) {
	query := `DELETE FROM objects WHERE type = ?`
	args := []any{typ}
	if len(keep) > 0 {
		query += ` AND slug NOT IN (?` + strings.Repeat(`, ?`, len(keep)-1) + `)`
		for _, slug := range keep {
			args = append(args, slug)
		}
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
