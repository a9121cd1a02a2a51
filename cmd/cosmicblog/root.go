package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/cosmicblog"
)

var cfgFile string

// appConfig is filled by initializeConfig before any command runs.
var appConfig config

// config mirrors cosmicblog.SiteConfig with the keys used in
// cosmicblog.yaml and COSMIC_* environment variables.
type config struct {
	Name           string        `mapstructure:"name"`
	URL            string        `mapstructure:"url"`
	Description    string        `mapstructure:"description"`
	Keywords       []string      `mapstructure:"keywords"`
	Locale         string        `mapstructure:"locale"`
	Addr           string        `mapstructure:"addr"`
	BucketSlug     string        `mapstructure:"bucket_slug"`
	ReadKey        string        `mapstructure:"read_key"`
	APIEndpoint    string        `mapstructure:"api_endpoint"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	DatabasePath   string        `mapstructure:"database_path"`
	PreviewSecret  string        `mapstructure:"preview_secret"`
	SessionSecret  string        `mapstructure:"session_secret"`
	CookieSecure   bool          `mapstructure:"cookie_secure"`
	StaticDir      string        `mapstructure:"static_dir"`
}

func (c config) site() cosmicblog.SiteConfig {
	return cosmicblog.SiteConfig{
		Name:           c.Name,
		URL:            c.URL,
		Description:    c.Description,
		Keywords:       c.Keywords,
		Locale:         c.Locale,
		Addr:           c.Addr,
		BucketSlug:     c.BucketSlug,
		ReadKey:        c.ReadKey,
		APIEndpoint:    c.APIEndpoint,
		RequestTimeout: c.RequestTimeout,
		DatabasePath:   c.DatabasePath,
		PreviewSecret:  c.PreviewSecret,
		SessionSecret:  c.SessionSecret,
		CookieSecure:   c.CookieSecure,
	}
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"addr":   "addr",
	"db":     "database_path",
	"static": "static_dir",
}

var rootCmd = &cobra.Command{
	Use:   "cosmicblog",
	Short: "A blog front-end for the Cosmic headless CMS",
	Long: `cosmicblog renders posts, authors and categories from a Cosmic bucket
as a server-side HTML blog with RSS, a sitemap and SEO metadata.

Content can also come from a local SQLite database filled from markdown
files with the import command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cosmicblog.yaml)")
}

func initializeConfig(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	for _, key := range []string{
		"description", "keywords", "bucket_slug", "read_key", "api_endpoint",
		"database_path", "preview_secret", "session_secret",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("name", "Modern Blog")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("locale", "en_US")
	v.SetDefault("addr", ":3000")
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("static_dir", "public")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("cosmicblog")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("COSMIC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if cfgFile != "" {
			return fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return nil
}
