package views

import (
	"encoding/json"
	"html/template"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/portfolio/api"
	"github.com/eringen/portfolio/richtext"
)

// BuildURL joins path segments onto a base URL.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(append([]string{"/", u.Path}, pathSegments...)...)
	return u.String()
}

// PageTitle formats a document title as "<page> | <site>".
func PageTitle(page, site string) string {
	if page == "" {
		page = "Home"
	}
	if site == "" {
		return page
	}
	return page + " | " + site
}

// FormatDate renders an API date as "January 2, 2006".
func FormatDate(post api.BlogPost) string {
	t, ok := post.Published()
	if !ok {
		return "Unknown date"
	}
	return t.Format("January 2, 2006")
}

// ISODate renders an API date as YYYY-MM-DD, or "" when unknown.
func ISODate(post api.BlogPost) string {
	t, ok := post.Published()
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// JoinTechnologies formats a technology list for the comma-separated form field.
func JoinTechnologies(techs []string) string {
	return strings.Join(techs, ", ")
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(cfg SiteConfig, post api.BlogPost) string {
	postURL := BuildURL(cfg.URL, "blog", post.ID)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": richtext.Excerpt(post.Content, 160),
		"url":         postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if d := ISODate(post); d != "" {
		data["datePublished"] = d
	}
	if post.ImageURL != "" {
		data["image"] = post.ImageURL
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

// ProjectJsonLD describes a project as a Schema.org CreativeWork.
func ProjectJsonLD(cfg SiteConfig, p api.Project) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "CreativeWork",
		"name":        p.Title,
		"description": p.Summary,
		"url":         BuildURL(cfg.URL, "projects", p.ID),
	}
	if len(p.Technologies) > 0 {
		data["keywords"] = strings.Join(p.Technologies, ", ")
	}
	if p.GithubURL != "" {
		data["codeRepository"] = p.GithubURL
	}
	if cfg.Author != "" {
		data["creator"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

// EditorField feeds the rich text editor partial.
type EditorField struct {
	Name  string
	Value string
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"pageTitle":   PageTitle,
		"formatDate":  FormatDate,
		"isoDate":     ISODate,
		"readingTime": richtext.ReadingTime,
		"excerpt":     richtext.Excerpt,
		"joinTech":    JoinTechnologies,
		"pathEscape":  url.PathEscape,
		"buildURL":    BuildURL,
		// richHTML marks sanitized editor output as trusted markup.
		"richHTML": func(s string) template.HTML {
			return template.HTML(richtext.Sanitize(s))
		},
		"jsonLD": func(s string) template.JS {
			return template.JS(s)
		},
		"websiteJsonLD":     WebsiteJsonLD,
		"blogPostingJsonLD": BlogPostingJsonLD,
		"projectJsonLD":     ProjectJsonLD,
		"tabClass": func(active, tab string) string {
			if active == tab {
				return "tab tab-active"
			}
			return "tab"
		},
		"editorField": func(name, value string) EditorField {
			return EditorField{Name: name, Value: value}
		},
		"blogRow": func(b api.BlogPost, csrf string) BlogRow {
			return BlogRow{Blog: b, CSRF: csrf}
		},
		"projectRow": func(p api.Project, csrf string) ProjectRow {
			return ProjectRow{Project: p, CSRF: csrf}
		},
	}
}
