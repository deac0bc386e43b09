package portfolio

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/api"
	"github.com/eringen/portfolio/richtext"
	"github.com/eringen/portfolio/views"
)

const feedExcerptLen = 300

type feedDoc struct {
	XMLName xml.Name    `xml:"rss"`
	Version string      `xml:"version,attr"`
	AtomNS  string      `xml:"xmlns:atom,attr"`
	Channel feedChannel `xml:"channel"`
}

type feedChannel struct {
	Title         string     `xml:"title"`
	Link          string     `xml:"link"`
	Self          feedSelf   `xml:"atom:link"`
	Description   string     `xml:"description"`
	LastBuildDate string     `xml:"lastBuildDate,omitempty"`
	Entries       []feedItem `xml:"item"`
}

type feedSelf struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type feedItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        feedGUID `xml:"guid"`
}

type feedGUID struct {
	PermaLink bool   `xml:"isPermaLink,attr"`
	Value     string `xml:",chardata"`
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListBlogs(c.Request().Context())
	if err != nil {
		return err
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", a.buildFeed(posts))
}

// buildFeed turns the blog list into an RSS 2.0 document. The newest
// publication date doubles as the channel's lastBuildDate.
func (a *App) buildFeed(posts []api.BlogPost) feedDoc {
	base := a.Config.URL
	var newest time.Time
	entries := make([]feedItem, 0, len(posts))
	for _, p := range posts {
		link := views.BuildURL(base, "blog", p.ID)
		item := feedItem{
			Title:       p.Title,
			Link:        link,
			Description: richtext.Excerpt(p.Content, feedExcerptLen),
			GUID:        feedGUID{PermaLink: true, Value: link},
		}
		if t, ok := p.Published(); ok {
			item.PubDate = t.Format(time.RFC1123Z)
			if t.After(newest) {
				newest = t
			}
		}
		entries = append(entries, item)
	}

	ch := feedChannel{
		Title:       a.Config.Name,
		Link:        views.BuildURL(base),
		Self:        feedSelf{Href: views.BuildURL(base, "feed.xml"), Rel: "self", Type: "application/rss+xml"},
		Description: firstNonEmpty(a.Config.Description, a.Config.Name),
		Entries:     entries,
	}
	if !newest.IsZero() {
		ch.LastBuildDate = newest.Format(time.RFC1123Z)
	}
	return feedDoc{Version: "2.0", AtomNS: "http://www.w3.org/2005/Atom", Channel: ch}
}

// writeXML sends v with the XML declaration prepended.
func writeXML(c echo.Context, contentType string, v any) error {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	_, err = c.Response().Write(out)
	return err
}
