package portfolio

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/api"
	"github.com/eringen/portfolio/richtext"
	"github.com/eringen/portfolio/views"
)

// Validation messages shown above the admin forms.
const (
	msgBlogRequired     = "Title and content are required"
	msgBlogTitle        = "Please enter a title for your blog post"
	msgBlogContent      = "Please add some content to your blog post"
	msgProjectRequired  = "Title and description are required"
	msgBlogCreated      = "Blog post created successfully!"
	msgBlogUpdated      = "Blog post updated successfully!"
	msgBlogDeleted      = "Blog post deleted successfully"
	msgProjectCreated   = "Project created successfully!"
	msgProjectUpdated   = "Project updated successfully!"
	msgProjectDeleted   = "Project deleted successfully"
	msgProjectFeatured  = "Project featured successfully"
	msgProjectUnfeature = "Project unfeatured successfully"
)

func blogFormFrom(c echo.Context) views.BlogForm {
	return views.BlogForm{
		ID:       c.Param("id"),
		Title:    strings.TrimSpace(c.FormValue("title")),
		Content:  c.FormValue("content"),
		ImageURL: strings.TrimSpace(c.FormValue("imageUrl")),
	}
}

// validateNewBlog checks the create form. Editor output with no text and
// no media counts as empty.
func validateNewBlog(f views.BlogForm) string {
	if f.Title == "" || richtext.IsEmpty(f.Content) {
		return msgBlogRequired
	}
	return ""
}

func validateBlogEdit(f views.BlogForm) string {
	switch {
	case f.Title == "":
		return msgBlogTitle
	case richtext.IsEmpty(f.Content):
		return msgBlogContent
	}
	return ""
}

func blogFormOf(b api.BlogPost) views.BlogForm {
	return views.BlogForm{ID: b.ID, Title: b.Title, Content: b.Content, ImageURL: b.ImageURL}
}

func projectFormFrom(c echo.Context) views.ProjectForm {
	return views.ProjectForm{
		ID:           c.Param("id"),
		Title:        strings.TrimSpace(c.FormValue("title")),
		Summary:      strings.TrimSpace(c.FormValue("summary")),
		Description:  c.FormValue("description"),
		Technologies: strings.TrimSpace(c.FormValue("technologies")),
		ImageURL:     strings.TrimSpace(c.FormValue("imageUrl")),
		VideoURL:     strings.TrimSpace(c.FormValue("videoUrl")),
		GithubURL:    strings.TrimSpace(c.FormValue("githubUrl")),
		LiveURL:      strings.TrimSpace(c.FormValue("liveUrl")),
		Featured:     c.FormValue("featured") == "true",
	}
}

func validateProject(f views.ProjectForm) string {
	if f.Title == "" || richtext.IsEmpty(f.Description) {
		return msgProjectRequired
	}
	return ""
}

func projectInput(f views.ProjectForm) api.ProjectInput {
	return api.ProjectInput{
		Title:        f.Title,
		Summary:      f.Summary,
		Description:  f.Description,
		Technologies: api.SplitTechnologies(f.Technologies),
		ImageURL:     f.ImageURL,
		VideoURL:     f.VideoURL,
		GithubURL:    f.GithubURL,
		LiveURL:      f.LiveURL,
		Featured:     f.Featured,
	}
}

func projectFormOf(p api.Project) views.ProjectForm {
	return views.ProjectForm{
		ID:           p.ID,
		Title:        p.Title,
		Summary:      p.Summary,
		Description:  p.Description,
		Technologies: views.JoinTechnologies(p.Technologies),
		ImageURL:     p.ImageURL,
		VideoURL:     p.VideoURL,
		GithubURL:    p.GithubURL,
		LiveURL:      p.LiveURL,
		Featured:     p.Featured,
	}
}
