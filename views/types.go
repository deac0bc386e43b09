package views

import (
	"github.com/eringen/portfolio/analytics"
	"github.com/eringen/portfolio/api"
)

// SiteConfig holds site-wide settings passed to every template so nothing
// is hardcoded.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
	Skills      []string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	NoIndex     bool
}

// Flash is a one-line status message.
type Flash struct {
	Text string
	Kind string // "success" or "error"
}

// Page is embedded in every page view model.
type Page struct {
	Site     SiteConfig
	Meta     PageMeta
	CSRF     string
	LoggedIn bool
	// RedirectURL, when set, navigates the browser there after
	// RedirectAfter seconds.
	RedirectURL   string
	RedirectAfter int
}

// HomePage is the landing page.
type HomePage struct {
	Page
	Featured []api.Project
	Error    string
}

// ProjectsPage lists every project.
type ProjectsPage struct {
	Page
	Projects []api.Project
	Error    string
}

// ProjectPage shows one project.
type ProjectPage struct {
	Page
	Project api.Project
}

// BlogPage lists blog posts.
type BlogPage struct {
	Page
	Posts []api.BlogPost
	Error string
}

// PostPage shows one blog post.
type PostPage struct {
	Page
	Post api.BlogPost
}

// LoginPage is the admin login form.
type LoginPage struct {
	Page
	Username string
	Error    string
}

// BlogForm holds create/edit blog form values.
type BlogForm struct {
	ID       string
	Title    string
	Content  string
	ImageURL string
}

// ProjectForm holds create/edit project form values. Technologies is the
// raw comma-separated input.
type ProjectForm struct {
	ID           string
	Title        string
	Summary      string
	Description  string
	Technologies string
	ImageURL     string
	VideoURL     string
	GithubURL    string
	LiveURL      string
	Featured     bool
}

// Admin dashboard tabs.
const (
	TabCreateBlog    = "createBlog"
	TabViewBlogs     = "viewBlogs"
	TabCreateProject = "createProject"
	TabViewProjects  = "viewProjects"
	TabAnalytics     = "analytics"
)

// AdminPage is the dashboard. Only the fields of the active tab are set.
type AdminPage struct {
	Page
	Tab              string
	Flash            Flash
	BlogForm         BlogForm
	ProjectForm      ProjectForm
	Blogs            []api.BlogPost
	Projects         []api.Project
	ListError        string
	AnalyticsEnabled bool
	Stats            *analytics.Stats
	StatsDays        int
}

// EditBlogPage is the edit-blog form.
type EditBlogPage struct {
	Page
	Form      BlogForm
	Flash     Flash
	LoadError string
}

// EditProjectPage is the edit-project form.
type EditProjectPage struct {
	Page
	Form      ProjectForm
	Flash     Flash
	LoadError string
}

// BlogRow and ProjectRow are single rows of the admin lists, rendered on
// their own when the dashboard script updates a list in place.
type BlogRow struct {
	Blog api.BlogPost
	CSRF string
}

type ProjectRow struct {
	Project api.Project
	CSRF    string
}

// ErrorPage renders 404 and 500 pages.
type ErrorPage struct {
	Page
	Heading string
	Message string
	BackURL string
	BackTo  string
}
