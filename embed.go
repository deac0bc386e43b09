package portfolio

import "embed"

// EmbeddedAssets contains static assets shipped with the site:
// admin.js (dashboard editor and inline row updates) and site.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
