package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/eringen/cosmicblog"
)

const defaultDatabasePath = "data/content.db"

var watchImport bool

var importCmd = &cobra.Command{
	Use:   "import [content-dir]",
	Short: "Imports markdown content into the local database",
	Long: `The import command reads categories/, authors/ and posts/ from the content
directory (default ./content) and writes them to the local database used by
'serve --db'. With --watch it keeps running and re-imports on every change.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "content"
		if len(args) == 1 {
			dir = args[0]
		}
		dbPath := appConfig.DatabasePath
		if dbPath == "" {
			dbPath = defaultDatabasePath
		}

		store, err := cosmicblog.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open %s: %w", dbPath, err)
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runImport(ctx, store, dir); err != nil {
			return err
		}
		if !watchImport {
			return nil
		}
		return watchContent(ctx, store, dir)
	},
}

func runImport(ctx context.Context, store *cosmicblog.Store, dir string) error {
	res, err := cosmicblog.Import(ctx, store, dir)
	if err != nil {
		return err
	}
	log.Printf("Imported %d categories, %d authors, %d posts from %s (%d removed)",
		res.Categories, res.Authors, res.Posts, dir, res.Pruned)
	return nil
}

// watchContent re-imports dir after changes settle, until ctx is done.
func watchContent(ctx context.Context, store *cosmicblog.Store, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Printf("Error walking %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				log.Printf("Failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("Watching %s for changes. Press Ctrl+C to stop.", dir)

	const debounce = 500 * time.Millisecond
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Printf("Change detected: %s (%s)", event.Name, event.Op)
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					log.Printf("Error adding new directory %s to watcher: %v", event.Name, err)
				}
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)
		case <-timer.C:
			if err := runImport(ctx, store, dir); err != nil {
				log.Printf("Error during re-import: %v", err)
			}
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func init() {
	importCmd.Flags().String("db", defaultDatabasePath, "local content database to write")
	importCmd.Flags().BoolVarP(&watchImport, "watch", "w", false, "re-import when the content directory changes")
	rootCmd.AddCommand(importCmd)
}
