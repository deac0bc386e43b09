package portfolio

import (
	"encoding/xml"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/api"
	"github.com/eringen/portfolio/views"
)

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	XMLNS   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	projects, err := a.Cache.ListProjects(ctx)
	if err != nil {
		return err
	}
	posts, err := a.Cache.ListBlogs(ctx)
	if err != nil {
		return err
	}
	return writeXML(c, "application/xml; charset=utf-8", a.buildSitemap(projects, posts))
}

// buildSitemap lists the three section pages followed by every project and
// blog post. Posts carry their publication day as lastmod.
func (a *App) buildSitemap(projects []api.Project, posts []api.BlogPost) urlSet {
	base := a.Config.URL
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, section := range []string{"", "projects", "blog"} {
		entry := urlEntry{Loc: views.BuildURL(base), ChangeFreq: "weekly"}
		if section != "" {
			entry.Loc = views.BuildURL(base, section)
		}
		set.URLs = append(set.URLs, entry)
	}
	for _, p := range projects {
		set.URLs = append(set.URLs, urlEntry{Loc: views.BuildURL(base, "projects", p.ID)})
	}
	for _, p := range posts {
		set.URLs = append(set.URLs, urlEntry{
			Loc:     views.BuildURL(base, "blog", p.ID),
			LastMod: views.ISODate(p),
		})
	}
	return set
}
