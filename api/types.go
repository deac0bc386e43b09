package api

import (
	"encoding/json"
	"strings"
	"time"
)

// BlogPost mirrors a blog record owned by the remote API.
type BlogPost struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
	Date     string `json:"date,omitempty"`
}

// UnmarshalJSON accepts both `_id`/`id` and `imageUrl`/`image`.
func (b *BlogPost) UnmarshalJSON(data []byte) error {
	type plain BlogPost
	var raw struct {
		plain
		AltID   string `json:"id"`
		Image   string `json:"image"`
		Created string `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = BlogPost(raw.plain)
	if b.ID == "" {
		b.ID = raw.AltID
	}
	if b.ImageURL == "" {
		b.ImageURL = raw.Image
	}
	if b.Date == "" {
		b.Date = raw.Created
	}
	return nil
}

// Published parses Date; ok is false when it is missing or malformed.
func (b BlogPost) Published() (t time.Time, ok bool) {
	return parseDate(b.Date)
}

// Project mirrors a project record owned by the remote API.
type Project struct {
	ID           string   `json:"_id,omitempty"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	ImageURL     string   `json:"imageUrl"`
	VideoURL     string   `json:"videoUrl"`
	GithubURL    string   `json:"githubUrl"`
	LiveURL      string   `json:"liveUrl"`
	Featured     bool     `json:"featured"`
}

// UnmarshalJSON accepts both `_id` and `id`.
func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	var raw struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Project(raw.plain)
	if p.ID == "" {
		p.ID = raw.AltID
	}
	return nil
}

// BlogInput is the JSON body of a create-blog request.
type BlogInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
}

// BlogUpdate is sent as multipart form data. Image is optional.
type BlogUpdate struct {
	Title     string
	Content   string
	Image     []byte
	ImageName string
}

// ProjectInput is the JSON body of create and full-replace project requests.
// ID is never serialized.
type ProjectInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Summary      string   `json:"summary"`
	Technologies []string `json:"technologies"`
	ImageURL     string   `json:"imageUrl"`
	VideoURL     string   `json:"videoUrl"`
	GithubURL    string   `json:"githubUrl"`
	LiveURL      string   `json:"liveUrl"`
	Featured     bool     `json:"featured"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SplitTechnologies turns comma-separated form input into a tag list. Blank
// input yields an empty, non-nil list so it encodes as [].
func SplitTechnologies(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
