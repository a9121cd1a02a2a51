package cosmicblog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/eringen/cosmicblog/cosmic"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeContent(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "categories", "tech.md"), `---
title: Technology
slug: tech
color: "#3b82f6"
---
All things tech.
`)
	writeFile(t, filepath.Join(dir, "authors", "jane-doe.md"), `---
twitter: "@jane"
profile_picture: https://imgix.example.com/jane.jpg
---
Jane writes about Go.
`)
	writeFile(t, filepath.Join(dir, "posts", "hello-world.md"), `---
title: Hello World
date: 2024-03-05
author: jane-doe
categories: [tech]
featured: true
featured_image: https://imgix.example.com/hello.jpg
---
# Hello

First **post**.
`)
	writeFile(t, filepath.Join(dir, "posts", "work-in-progress.md"), `---
date: 2024-04-01
status: draft
---
Not ready.
`)
	return dir
}

func TestImport(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	res, err := Import(ctx, s, writeContent(t))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Categories != 1 || res.Authors != 1 || res.Posts != 2 {
		t.Errorf("Import result = %+v", res)
	}

	cat, err := s.Category(ctx, "tech")
	if err != nil {
		t.Fatalf("Category failed: %v", err)
	}
	if cat.Title != "Technology" || cat.Metadata.Description != "All things tech." {
		t.Errorf("category = %+v", cat)
	}

	author, err := s.Author(ctx, "jane-doe")
	if err != nil {
		t.Fatalf("Author failed: %v", err)
	}
	if author.Title != "Jane Doe" {
		t.Errorf("author title = %q, want title from file name", author.Title)
	}
	if author.Metadata.Bio != "Jane writes about Go." || author.Metadata.Twitter != "@jane" {
		t.Errorf("author metadata = %+v", author.Metadata)
	}
	if author.Metadata.ProfilePicture == nil || author.Metadata.ProfilePicture.ImgixURL != "https://imgix.example.com/jane.jpg" {
		t.Errorf("profile picture = %+v", author.Metadata.ProfilePicture)
	}

	post, err := s.Post(ctx, "hello-world")
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if post.Metadata.PublicationDate != "2024-03-05" || post.CreatedAt != "2024-03-05T00:00:00Z" {
		t.Errorf("post dates = %q, %q", post.Metadata.PublicationDate, post.CreatedAt)
	}
	if post.Metadata.Content != "# Hello\n\nFirst **post**." {
		t.Errorf("post content = %q", post.Metadata.Content)
	}
	if !post.Metadata.Featured || post.Metadata.FeaturedImage == nil {
		t.Errorf("post metadata = %+v", post.Metadata)
	}
	if post.Metadata.Author == nil || post.Metadata.Author.ID != author.ID {
		t.Errorf("post author = %+v, want %q", post.Metadata.Author, author.ID)
	}
	if len(post.Metadata.Categories) != 1 || post.Metadata.Categories[0].ID != cat.ID {
		t.Errorf("post categories = %+v", post.Metadata.Categories)
	}

	if _, err := s.Post(ctx, "work-in-progress"); !errors.Is(err, cosmic.ErrNotFound) {
		t.Errorf("draft visible outside preview: %v", err)
	}
	draft, err := s.Post(cosmic.WithPreview(ctx), "work-in-progress")
	if err != nil || draft.Title != "Work In Progress" {
		t.Errorf("draft = %+v, %v", draft.Base, err)
	}
}

func TestImportIsRepeatableAndPrunes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	dir := writeContent(t)

	if _, err := Import(ctx, s, dir); err != nil {
		t.Fatalf("first Import failed: %v", err)
	}
	before, _ := s.Post(ctx, "hello-world")

	if err := os.Remove(filepath.Join(dir, "posts", "work-in-progress.md")); err != nil {
		t.Fatal(err)
	}
	res, err := Import(ctx, s, dir)
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	if res.Pruned != 1 {
		t.Errorf("Pruned = %d, want 1", res.Pruned)
	}
	after, _ := s.Post(ctx, "hello-world")
	if after.ID != before.ID {
		t.Errorf("post ID changed across imports: %q -> %q", before.ID, after.ID)
	}
	if _, err := s.Post(cosmic.WithPreview(ctx), "work-in-progress"); !errors.Is(err, cosmic.ErrNotFound) {
		t.Errorf("removed post still stored: %v", err)
	}
}

func TestImportUnknownAuthor(t *testing.T) {
	s := setupTestStore(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "posts", "orphan.md"), "---\nauthor: ghost\n---\nBody\n")

	if _, err := Import(context.Background(), s, dir); err == nil {
		t.Fatal("expected error for unknown author")
	}
}

func TestImportBadDate(t *testing.T) {
	s := setupTestStore(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "posts", "when.md"), "---\ndate: someday\n---\nBody\n")

	if _, err := Import(context.Background(), s, dir); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestImportMissingDirectoriesKeepsContent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if _, err := Import(ctx, s, writeContent(t)); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	res, err := Import(ctx, s, t.TempDir())
	if err != nil {
		t.Fatalf("Import of empty dir failed: %v", err)
	}
	if res.Pruned != 0 {
		t.Errorf("Pruned = %d, want 0 when directories are absent", res.Pruned)
	}
}
