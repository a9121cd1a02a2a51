package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/cosmicblog/scaffold"
)

// scaffoldData holds the template variables passed to every scaffold template.
type scaffoldData struct {
	ProjectName string
	SiteName    string
	BucketSlug  string
}

var initBucket string

var initCmd = &cobra.Command{
	Use:   "init <directory>",
	Short: "Creates a new site directory with config and sample content",
	Args:  cobra.ExactArgs(1),
	// Runs before any config exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd, args[0])
	},
}

func runInit(cmd *cobra.Command, dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	name := filepath.Base(dir)
	data := scaffoldData{
		ProjectName: name,
		SiteName:    toTitle(name),
		BucketSlug:  initBucket,
	}
	if data.BucketSlug == "" {
		data.BucketSlug = name
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Creating new cosmicblog site: %s\n\n", dir)

	root := "templates"
	err := fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		outPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()

		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}

		fmt.Fprintf(out, "  created %s\n", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done! Next steps:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", dir)
	fmt.Fprintln(out, "  cosmicblog import content")
	fmt.Fprintln(out, "  cosmicblog serve --db data/content.db")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Set COSMIC_BUCKET_SLUG and COSMIC_READ_KEY in .env to serve from Cosmic instead.")
	return nil
}

// toTitle converts a hyphenated name to a title, e.g. "my-blog" -> "My Blog".
func toTitle(s string) string {
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(s))
}

func init() {
	initCmd.Flags().StringVar(&initBucket, "bucket", "", "Cosmic bucket slug (default is the directory name)")
	rootCmd.AddCommand(initCmd)
}
