package portfolio

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/api"
	"github.com/eringen/portfolio/views"
)

var adminTabs = map[string]bool{
	views.TabCreateBlog:    true,
	views.TabViewBlogs:     true,
	views.TabCreateProject: true,
	views.TabViewProjects:  true,
	views.TabAnalytics:     true,
}

func isAuthErr(err error) bool {
	return errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNoToken)
}

// apiStatus maps an API failure onto the status of our own response.
func apiStatus(err error) int {
	if errors.Is(err, api.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func (a *App) dashboard(c echo.Context, tab string) views.AdminPage {
	return views.AdminPage{
		Page:             a.adminPage(c, "Admin Dashboard"),
		Tab:              tab,
		AnalyticsEnabled: a.tracker != nil,
	}
}

func (a *App) handleAdmin(c echo.Context) error {
	tab := c.QueryParam("tab")
	if !adminTabs[tab] || (tab == views.TabAnalytics && a.tracker == nil) {
		tab = views.TabCreateBlog
	}
	ap := a.dashboard(c, tab)
	ap.Flash = popFlash(c)
	ctx := c.Request().Context()

	switch tab {
	case views.TabViewBlogs:
		blogs, err := a.API.AdminListBlogs(ctx, token(c))
		if err != nil {
			if isAuthErr(err) {
				return a.authFailed(c, err)
			}
			c.Logger().Errorf("admin: list blogs: %v", err)
			ap.ListError = loadBlogsMsg
		}
		ap.Blogs = blogs
	case views.TabViewProjects:
		projects, err := a.API.AdminListProjects(ctx, token(c))
		if err != nil {
			if isAuthErr(err) {
				return a.authFailed(c, err)
			}
			c.Logger().Errorf("admin: list projects: %v", err)
			ap.ListError = loadProjectsMsg
		}
		ap.Projects = projects
	case views.TabAnalytics:
		days, _ := strconv.Atoi(c.QueryParam("days"))
		if days != 30 {
			days = 7
		}
		ap.StatsDays = days
		stats, err := a.tracker.Stats(ctx, days)
		if err != nil {
			c.Logger().Errorf("admin: analytics stats: %v", err)
			ap.ListError = "Failed to load analytics."
		}
		ap.Stats = stats
	}
	return Render(c, a.Views.AdminDashboard(ap))
}

// Blogs

func (a *App) handleCreateBlog(c echo.Context) error {
	form := blogFormFrom(c)
	ap := a.dashboard(c, views.TabCreateBlog)

	if msg := validateNewBlog(form); msg != "" {
		ap.BlogForm = form
		ap.Flash = views.Flash{Text: msg, Kind: "error"}
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.AdminDashboard(ap))
	}

	_, err := a.API.CreateBlog(c.Request().Context(), token(c), api.BlogInput{
		Title:    form.Title,
		Content:  form.Content,
		ImageURL: form.ImageURL,
	})
	if err != nil {
		if isAuthErr(err) {
			return a.authFailed(c, err)
		}
		c.Logger().Errorf("admin: create blog: %v", err)
		ap.BlogForm = form
		ap.Flash = views.Flash{Text: api.UserMessage(err, "Failed to create blog post"), Kind: "error"}
		return RenderStatus(c, apiStatus(err), a.Views.AdminDashboard(ap))
	}

	a.Cache.Invalidate()
	ap.Flash = views.Flash{Text: msgBlogCreated, Kind: "success"}
	return Render(c, a.Views.AdminDashboard(ap))
}

func (a *App) handleEditBlog(c echo.Context) error {
	ep := views.EditBlogPage{Page: a.adminPage(c, "Edit Blog Post"), Flash: popFlash(c)}
	blog, err := a.API.AdminGetBlog(c.Request().Context(), token(c), c.Param("id"))
	if err != nil {
		if isAuthErr(err) {
			return a.authFailed(c, err)
		}
		c.Logger().Errorf("admin: get blog %s: %v", c.Param("id"), err)
		ep.LoadError = "Failed to load blog post"
		return RenderStatus(c, apiStatus(err), a.Views.EditBlog(ep))
	}
	ep.Form = blogFormOf(blog)
	return Render(c, a.Views.EditBlog(ep))
}

func (a *App) handleUpdateBlog(c echo.Context) error {
	form := blogFormFrom(c)
	ep := views.EditBlogPage{Page: a.adminPage(c, "Edit Blog Post"), Form: form}
	fail := func(code int, msg string) error {
		ep.Flash = views.Flash{Text: msg, Kind: "error"}
		return RenderStatus(c, code, a.Views.EditBlog(ep))
	}

	if msg := validateBlogEdit(form); msg != "" {
		return fail(http.StatusUnprocessableEntity, msg)
	}

	update := api.BlogUpdate{Title: form.Title, Content: form.Content}
	if fh, err := c.FormFile("image"); err == nil && fh.Size > 0 {
		data, name, err := readUpload(fh)
		switch {
		case errors.Is(err, errImageTooLarge):
			return fail(http.StatusRequestEntityTooLarge, "Image must be 10MB or smaller")
		case errors.Is(err, errInvalidImage):
			return fail(http.StatusUnprocessableEntity, "Invalid image")
		case err != nil:
			return err
		}
		update.Image, update.ImageName = data, name
	}

	blog, err := a.API.UpdateBlog(c.Request().Context(), token(c), form.ID, update)
	if err != nil {
		if isAuthErr(err) {
			return a.authFailed(c, err)
		}
		c.Logger().Errorf("admin: update blog %s: %v", form.ID, err)
		return fail(apiStatus(err), api.UserMessage(err, "Failed to update blog post"))
	}

	a.Cache.Invalidate()
	if blog.ID != "" {
		ep.Form = blogFormOf(blog)
	}
	ep.Flash = views.Flash{Text: msgBlogUpdated, Kind: "success"}
	ep.RedirectURL, ep.RedirectAfter = "/admin", 2
	return Render(c, a.Views.EditBlog(ep))
}

func (a *App) handleDeleteBlog(c echo.Context) error {
	id := c.Param("id")
	if err := a.API.DeleteBlog(c.Request().Context(), token(c), id); err != nil {
		if isAuthErr(err) {
			return a.authFailed(c, err)
		}
		c.Logger().Errorf("admin: delete blog %s: %v", id, err)
		return a.rowFailed(c, views.TabViewBlogs, apiStatus(err), "Failed to delete blog post: "+api.Reason(err))
	}
	a.Cache.Invalidate()
	return a.renderRow(c, views.TabViewBlogs, views.Flash{Text: msgBlogDeleted, Kind: "success"}, nil)
}

// Projects

func (a *App) handleCreateProject(c echo.Context) error {
	form := projectFormFrom(c)
	ap := a.dashboard(c, views.TabCreateProject)

	if msg := validateProject(form); msg != "" {
		ap.ProjectForm = form
		ap.Flash = views.Flash{Text: msg, Kind: "error"}
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.AdminDashboard(ap))
	}

	if _, err := a.API.CreateProject(c.Request().Context(), token(c), projectInput(form)); err != nil {
		if isAuthErr(err) {
			return a.authFailed(c, err)
		}
		c.Logger().Errorf("admin: create project: %v", err)
		ap.ProjectForm = form
		ap.Flash = views.Flash{Text: api.UserMessage(err, "Failed to create project"), Kind: "error"}
		return RenderStatus(c, apiStatus(err), a.Views.AdminDashboard(ap))
	}

	a.Cache.Invalidate()
	ap.Flash = views.Flash{Text: msgProjectCreated, Kind: "success"}
	ap.RedirectURL, ap.RedirectAfter = "/admin?tab="+views.TabViewProjects, 2
	return Render(c, a.Views.AdminDashboard(ap))
}

func (a *App) handleEditProject(c echo.Context) error {
	ep := views.EditProjectPage{Page: a.adminPage(c, "Edit Project"), Flash: popFlash(c)}
	p, err := a.API.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		if isAuthErr(err) {
			return a.authFailed(c, err)
		}
		c.Logger().Errorf("admin: get project %s: %v", c.Param("id"), err)
		ep.LoadError = "Failed to load project"
		return RenderStatus(c, apiStatus(err), a.Views.EditProject(ep))
	}
	ep.Form = projectFormOf(p)
	return Render(c, a.Views.EditProject(ep))
}

func (a *App) handleUpdateProject(c echo.Context) error {
	form := projectFormFrom(c)
	ep := views.EditProjectPage{Page: a.adminPage(c, "Edit Project"), Form: form}

	if msg := validateProject(form); msg != "" {
		ep.Flash = views.Flash{Text: msg, Kind: "error"}
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.EditProject(ep))
	}

	p, err := a.API.UpdateProject(c.Request().Context(), token(c), form.ID, projectInput(form))
	if err != nil {
		if isAuthErr(err) {
			return a.authFailed(c, err)
		}
		c.Logger().Errorf("admin: update project %s: %v", form.ID, err)
		ep.Flash = views.Flash{Text: api.UserMessage(err, "Failed to update project"), Kind: "error"}
		return RenderStatus(c, apiStatus(err), a.Views.EditProject(ep))
	}

	a.Cache.Invalidate()
	if p.ID != "" {
		ep.Form = projectFormOf(p)
	}
	ep.Flash = views.Flash{Text: msgProjectUpdated, Kind: "success"}
	ep.RedirectURL, ep.RedirectAfter = "/admin?tab="+views.TabViewProjects, 2
	return Render(c, a.Views.EditProject(ep))
}

func (a *App) handleDeleteProject(c echo.Context) error {
	id := c.Param("id")
	if err := a.API.DeleteProject(c.Request().Context(), token(c), id); err != nil {
		if isAuthErr(err) {
			return a.authFailed(c, err)
		}
		c.Logger().Errorf("admin: delete project %s: %v", id, err)
		return a.rowFailed(c, views.TabViewProjects, apiStatus(err), "Failed to delete project: "+api.Reason(err))
	}
	a.Cache.Invalidate()
	return a.renderRow(c, views.TabViewProjects, views.Flash{Text: msgProjectDeleted, Kind: "success"}, nil)
}

// handleToggleFeatured sets the featured flag to the submitted value. The
// row form carries the negation of the flag it was rendered with.
func (a *App) handleToggleFeatured(c echo.Context) error {
	id := c.Param("id")
	featured := c.FormValue("featured") == "true"

	p, err := a.API.SetProjectFeatured(c.Request().Context(), token(c), id, featured)
	if err != nil {
		if isAuthErr(err) {
			return a.authFailed(c, err)
		}
		c.Logger().Errorf("admin: set featured %s: %v", id, err)
		return a.rowFailed(c, views.TabViewProjects, apiStatus(err), "Failed to update project: "+api.Reason(err))
	}
	a.Cache.Invalidate()

	// The API may answer with an empty body; the row only needs these.
	if p.ID == "" {
		p.ID = id
	}
	if p.Title == "" {
		p.Title = c.FormValue("title")
	}
	p.Featured = featured

	msg := msgProjectUnfeature
	if featured {
		msg = msgProjectFeatured
	}
	row := a.Views.ProjectRow(views.ProjectRow{Project: p, CSRF: CsrfToken(c)})
	return a.renderRow(c, views.TabViewProjects, views.Flash{Text: msg, Kind: "success"}, row)
}
