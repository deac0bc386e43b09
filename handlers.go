package portfolio

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/api"
	"github.com/eringen/portfolio/richtext"
	"github.com/eringen/portfolio/views"
)

const (
	loadProjectsMsg = "Failed to load projects. Please try again later."
	loadBlogsMsg    = "Failed to load blog posts. Please try again later."
)

func (a *App) handleHome(c echo.Context) error {
	hp := views.HomePage{Page: a.page(c, views.PageMeta{Description: a.Config.Description})}
	projects, err := a.Cache.ListProjects(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("home: list projects: %v", err)
		hp.Error = loadProjectsMsg
	} else {
		hp.Featured = featuredProjects(projects)
	}
	return Render(c, a.Views.Home(hp))
}

func (a *App) handleProjects(c echo.Context) error {
	pp := views.ProjectsPage{Page: a.page(c, views.PageMeta{Title: "Projects", Description: "Projects by " + a.byline()})}
	projects, err := a.Cache.ListProjects(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("projects: list: %v", err)
		pp.Error = loadProjectsMsg
	} else {
		pp.Projects = projects
	}
	return Render(c, a.Views.Projects(pp))
}

func (a *App) handleProject(c echo.Context) error {
	p, err := a.API.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return a.missing(c, err, "Project not found", "The project you're looking for may have been removed.", "/projects", "Back to Projects")
	}
	return Render(c, a.Views.Project(views.ProjectPage{
		Page: a.page(c, views.PageMeta{
			Title:       p.Title,
			Description: firstNonEmpty(p.Summary, richtext.Excerpt(p.Description, 160)),
			OGType:      "article",
			Image:       p.ImageURL,
		}),
		Project: p,
	}))
}

func (a *App) handleBlog(c echo.Context) error {
	bp := views.BlogPage{Page: a.page(c, views.PageMeta{Title: "Blog", Description: "Writing by " + a.byline()})}
	posts, err := a.Cache.ListBlogs(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("blog: list: %v", err)
		bp.Error = loadBlogsMsg
	} else {
		bp.Posts = posts
	}
	return Render(c, a.Views.Blog(bp))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.API.GetBlog(c.Request().Context(), c.Param("id"))
	if err != nil {
		return a.missing(c, err, "Blog post not found", "The blog post you're looking for may have been removed.", "/blog", "Back to Blogs")
	}
	return Render(c, a.Views.Post(views.PostPage{
		Page: a.page(c, views.PageMeta{
			Title:       post.Title,
			Description: richtext.Excerpt(post.Content, 160),
			OGType:      "article",
			Image:       post.ImageURL,
		}),
		Post: post,
	}))
}

// missing renders the 404 page for a single item that could not be loaded.
// Transport failures land here too; they are logged first.
func (a *App) missing(c echo.Context, err error, heading, msg, back, backTo string) error {
	if !errors.Is(err, api.ErrNotFound) {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(views.ErrorPage{
		Page:    a.page(c, views.PageMeta{Title: "Not found", NoIndex: true}),
		Heading: heading,
		Message: msg,
		BackURL: back,
		BackTo:  backTo,
	}))
}

func (a *App) handleRobots(c echo.Context) error {
	custom := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(custom); err == nil {
		return c.File(custom)
	}
	body := fmt.Sprintf("User-agent: *\nDisallow: /admin\nDisallow: /login\n\nSitemap: %s\n", views.BuildURL(a.Config.URL, "sitemap.xml"))
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(views.ErrorPage{
			Page:    a.page(c, views.PageMeta{Title: "Not found", NoIndex: true}),
			Heading: "Page not found",
			Message: "The page you're looking for doesn't exist.",
			BackURL: "/",
			BackTo:  "Back to Home",
		}))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(views.ErrorPage{
			Page:    a.page(c, views.PageMeta{Title: "Error", NoIndex: true}),
			Heading: "Something went wrong",
			Message: "Server error. Please try again later.",
			BackURL: "/",
			BackTo:  "Back to Home",
		}))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func (a *App) byline() string {
	return firstNonEmpty(a.Config.Author, a.Config.Name)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
