package portfolio

import (
	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/api"
	"github.com/eringen/portfolio/views"
)

// site converts the configuration into the template-facing SiteConfig.
func (a *App) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		Skills:      a.Config.Skills,
	}
}

// page fills the fields every page shares. A missing meta URL defaults to
// the canonical URL of the request path.
func (a *App) page(c echo.Context, meta views.PageMeta) views.Page {
	if meta.URL == "" {
		meta.URL = views.BuildURL(a.Config.URL, c.Request().URL.Path)
	}
	return views.Page{
		Site:     a.site(),
		Meta:     meta,
		CSRF:     CsrfToken(c),
		LoggedIn: sessionToken(c) != "",
	}
}

// adminPage is page for the dashboard and edit forms.
func (a *App) adminPage(c echo.Context, title string) views.Page {
	p := a.page(c, views.PageMeta{Title: title, NoIndex: true})
	p.LoggedIn = true
	return p
}

func featuredProjects(projects []api.Project) []api.Project {
	var out []api.Project
	for _, p := range projects {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}
