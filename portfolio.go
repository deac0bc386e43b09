// Package portfolio is a personal portfolio website built with Go, Echo, and
// templ. It renders an About Me landing page, projects, a blog, and an admin
// dashboard; all content lives behind a remote REST API.
//
// Pages are rendered through the ViewFuncs struct so a site can replace any
// of the built-in templates, and portfolio handles the handler logic,
// middleware, and API calls.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/analytics"
	"github.com/eringen/portfolio/api"
	"github.com/eringen/portfolio/views"
)

// ViewFuncs holds the components the App calls when rendering pages.
type ViewFuncs struct {
	Home           func(views.HomePage) templ.Component
	Projects       func(views.ProjectsPage) templ.Component
	Project        func(views.ProjectPage) templ.Component
	Blog           func(views.BlogPage) templ.Component
	Post           func(views.PostPage) templ.Component
	Login          func(views.LoginPage) templ.Component
	AdminDashboard func(views.AdminPage) templ.Component
	EditBlog       func(views.EditBlogPage) templ.Component
	EditProject    func(views.EditProjectPage) templ.Component
	BlogRow        func(views.BlogRow) templ.Component
	ProjectRow     func(views.ProjectRow) templ.Component
	NotFound       func(views.ErrorPage) templ.Component
	ServerError    func(views.ErrorPage) templ.Component
}

// DefaultViews returns the embedded templates from package views.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:           views.Home,
		Projects:       views.Projects,
		Project:        views.Project,
		Blog:           views.Blog,
		Post:           views.Post,
		Login:          views.Login,
		AdminDashboard: views.AdminDashboard,
		EditBlog:       views.EditBlog,
		EditProject:    views.EditProject,
		BlogRow:        views.AdminBlogRow,
		ProjectRow:     views.AdminProjectRow,
		NotFound:       views.NotFound,
		ServerError:    views.ServerError,
	}
}

// App is the central portfolio application. It wires together the API
// client, cache, handlers, middleware, and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	API    *api.Client
	Cache  *ContentCache
	Views  ViewFuncs

	loginLimiter   *LoginLimiter
	analyticsStore *analytics.Store
	tracker        *analytics.Tracker
	customRoutes   []func(*App)
	stopCleanup    func()
	initialized    bool
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  DefaultViews(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init builds the API client, cache, analytics store, middleware, and
// routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init(ctx context.Context) error {
	if a.initialized {
		return nil
	}
	if err := a.Config.validate(); err != nil {
		return err
	}

	if a.API == nil {
		a.API = api.New(a.Config.APIURL, api.WithTimeout(a.Config.APITimeout))
	}
	a.Cache = NewContentCache(a.API, a.Config.CacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.Config.AnalyticsEnabled {
		store, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("portfolio: init analytics: %w", err)
		}
		a.analyticsStore = store

		tracker, err := analytics.NewTracker(ctx, store,
			analytics.WithSkipper(skipAnalytics),
			analytics.WithHost(siteHost(a.Config.URL)),
		)
		if err != nil {
			store.Close()
			return fmt.Errorf("portfolio: init analytics salt: %w", err)
		}
		a.tracker = tracker
		a.stopCleanup = a.startCleanup(365, 24*time.Hour)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the App and serves until ctx is cancelled, then shuts
// the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	defer a.Close()

	a.Echo.Server.ReadHeaderTimeout = 5 * time.Second

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	}
}

// startCleanup runs analytics retention and limiter pruning until the
// returned function is called.
func (a *App) startCleanup(retentionDays int, interval time.Duration) func() {
	stopRetention := a.analyticsStore.StartCleanupScheduler(retentionDays, interval, func(err error) {
		a.Echo.Logger.Errorf("analytics cleanup: %v", err)
	})

	ticker := time.NewTicker(10 * time.Minute)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.tracker.PruneLimiter()
			case <-done:
				return
			}
		}
	}()

	return func() {
		stopRetention()
		close(done)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Serve embedded assets (admin.js, site.css). These are served under
	// /public/ and fall through to the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/admin.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/site.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	// User's static assets
	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public pages
	var track []echo.MiddlewareFunc
	if a.tracker != nil {
		track = append(track, a.tracker.Middleware)
	}
	e.GET("/", a.handleHome, track...)
	e.GET("/projects", a.handleProjects, track...)
	e.GET("/projects/:id", a.handleProject, track...)
	e.GET("/blog", a.handleBlog, track...)
	e.GET("/blog/:id", a.handlePost, track...)

	// Auth
	e.GET("/login", a.handleLoginPage)
	e.POST("/login", a.handleLogin)
	e.POST("/logout", a.handleLogout)

	// Admin
	admin := e.Group("/admin", a.requireAdmin)
	admin.GET("", a.handleAdmin)
	admin.POST("/blogs", a.handleCreateBlog)
	admin.GET("/blogs/:id/edit", a.handleEditBlog)
	admin.PUT("/blogs/:id", a.handleUpdateBlog)
	admin.DELETE("/blogs/:id", a.handleDeleteBlog)
	admin.POST("/projects", a.handleCreateProject)
	admin.GET("/projects/:id/edit", a.handleEditProject)
	admin.PUT("/projects/:id", a.handleUpdateProject)
	admin.DELETE("/projects/:id", a.handleDeleteProject)
	admin.POST("/projects/:id/featured", a.handleToggleFeatured)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
		a.stopCleanup = nil
	}
	if a.analyticsStore != nil {
		err := a.analyticsStore.Close()
		a.analyticsStore = nil
		return err
	}
	return nil
}

func skipAnalytics(path string) bool {
	return strings.HasPrefix(path, "/admin") || strings.HasPrefix(path, "/public/") || path == "/login"
}

func siteHost(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
