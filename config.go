package portfolio

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/eringen/portfolio/api"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "PORTFOLIO_"

// SiteConfig holds all configuration for a portfolio site.
type SiteConfig struct {
	Name        string   `env:"SITE_NAME"`        // Site name (default "Portfolio")
	URL         string   `env:"SITE_URL"`         // Canonical URL (default "http://localhost:3000")
	Description string   `env:"SITE_DESCRIPTION"` // Tagline for the landing page, RSS and meta tags
	Author      string   `env:"AUTHOR"`           // Shown on the landing page and in JSON-LD
	Skills      []string `env:"SKILLS" envSeparator:","`

	Addr string `env:"ADDR"` // Listen address (default ":3000")

	APIURL     string        `env:"API_URL,required"` // Base URL of the content API
	APITimeout time.Duration `env:"API_TIMEOUT"`      // Per-request API timeout (default 10s)

	SessionSecret string `env:"SESSION_SECRET,required"` // Session encryption secret
	CookieSecure  bool   `env:"COOKIE_SECURE"`           // Set true for HTTPS

	// CacheTTL bounds how long public lists are served from memory. Zero
	// disables caching.
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"1m"`

	AnalyticsEnabled      bool   `env:"ANALYTICS_ENABLED" envDefault:"true"`
	AnalyticsDatabasePath string `env:"ANALYTICS_DB"` // default "data/analytics.db"

	StaticDir string `env:"STATIC_DIR"` // User-owned static assets (default "public")
}

// LoadConfig reads a .env file when present and parses PORTFOLIO_*
// variables into a SiteConfig.
func LoadConfig() (SiteConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return SiteConfig{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg SiteConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return SiteConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Skills = trimList(cfg.Skills)
	cfg.setDefaults()
	return cfg, nil
}

func trimList(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.APITimeout == 0 {
		c.APITimeout = 10 * time.Second
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
}

func (c SiteConfig) validate() error {
	if c.APIURL == "" {
		return errors.New("portfolio: APIURL is required")
	}
	if c.SessionSecret == "" {
		return errors.New("portfolio: SessionSecret is required")
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs during Init, after the built-in routes.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir overrides SiteConfig.StaticDir.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithViews replaces the built-in page templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithAPIClient supplies a preconfigured API client instead of one built
// from APIURL and APITimeout.
func WithAPIClient(c *api.Client) Option {
	return func(a *App) {
		a.API = c
	}
}
