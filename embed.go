package cosmicblog

import "embed"

// EmbeddedAssets contains static assets shipped with the site: site.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
