// Package views renders the site's pages. Templates are embedded
// html/template files exposed as templ components.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/a-h/templ"
)

//go:embed templates
var templateFS embed.FS

var pages = mustParse()

// mustParse builds one template set per page: the shared layout and
// partials plus that page's "content" definition.
func mustParse() map[string]*template.Template {
	base := template.Must(template.New("layout.html").Funcs(funcMap()).
		ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html"))

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(files))
	for _, f := range files {
		t := template.Must(template.Must(base.Clone()).ParseFS(templateFS, f))
		out[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	out["_partials"] = base
	return out
}

func page(name string, data any) templ.Component {
	t, ok := pages[name]
	if !ok {
		panic(fmt.Sprintf("views: unknown page %q", name))
	}
	return templ.FromGoHTML(t, data)
}

func partial(name string, data any) templ.Component {
	t := pages["_partials"].Lookup(name)
	if t == nil {
		panic(fmt.Sprintf("views: unknown partial %q", name))
	}
	return templ.FromGoHTML(t, data)
}

func Home(p HomePage) templ.Component         { return page("home", p) }
func Projects(p ProjectsPage) templ.Component { return page("projects", p) }
func Project(p ProjectPage) templ.Component   { return page("project", p) }
func Blog(p BlogPage) templ.Component         { return page("blog", p) }
func Post(p PostPage) templ.Component         { return page("post", p) }
func Login(p LoginPage) templ.Component       { return page("login", p) }

// AdminDashboard renders the tabbed dashboard.
func AdminDashboard(p AdminPage) templ.Component { return page("admin", p) }

func EditBlog(p EditBlogPage) templ.Component       { return page("edit_blog", p) }
func EditProject(p EditProjectPage) templ.Component { return page("edit_project", p) }

// AdminBlogRow renders one row of the manage-blogs list.
func AdminBlogRow(r BlogRow) templ.Component { return partial("blog_row", r) }

// AdminProjectRow renders one row of the manage-projects list.
func AdminProjectRow(r ProjectRow) templ.Component { return partial("project_row", r) }

func NotFound(p ErrorPage) templ.Component    { return page("error", p) }
func ServerError(p ErrorPage) templ.Component { return page("error", p) }
