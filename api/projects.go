package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type projectList struct {
	Projects []Project `json:"projects"`
}

// ListProjects returns the public project list.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out projectList
	err := c.do(ctx, request{op: "list projects", method: http.MethodGet, path: "/api/projects"}, &out)
	return out.Projects, err
}

// GetProject returns a single public project.
func (c *Client) GetProject(ctx context.Context, id string) (Project, error) {
	return c.getProject(ctx, request{op: "get project", method: http.MethodGet, path: itemPath("/api/projects", id)})
}

// AdminListProjects returns every project visible to the admin.
func (c *Client) AdminListProjects(ctx context.Context, token string) ([]Project, error) {
	var out projectList
	err := c.do(ctx, request{op: "admin list projects", method: http.MethodGet, path: "/admin/projects", token: token, auth: true}, &out)
	return out.Projects, err
}

// CreateProject posts a new project.
func (c *Client) CreateProject(ctx context.Context, token string, in ProjectInput) (Project, error) {
	return c.sendProject(ctx, "create project", http.MethodPost, "/admin/projects", token, in)
}

// UpdateProject replaces every editable field of a project.
func (c *Client) UpdateProject(ctx context.Context, token, id string, in ProjectInput) (Project, error) {
	return c.sendProject(ctx, "update project", http.MethodPut, itemPath("/admin/projects", id), token, in)
}

// SetProjectFeatured sends a PUT carrying only the featured flag.
func (c *Client) SetProjectFeatured(ctx context.Context, token, id string, featured bool) (Project, error) {
	patch := struct {
		Featured bool `json:"featured"`
	}{featured}
	return c.sendProject(ctx, "set project featured", http.MethodPut, itemPath("/admin/projects", id), token, patch)
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, token, id string) error {
	return c.do(ctx, request{op: "delete project", method: http.MethodDelete, path: itemPath("/admin/projects", id), token: token, auth: true}, nil)
}

func (c *Client) sendProject(ctx context.Context, op, method, path, token string, v any) (Project, error) {
	if token == "" {
		return Project{}, ErrNoToken
	}
	body, err := jsonBody(v)
	if err != nil {
		return Project{}, fmt.Errorf("api: %s: %w", op, err)
	}
	return c.getProject(ctx, request{
		op: op, method: method, path: path,
		token: token, auth: true, body: body, contentType: "application/json",
	})
}

func (c *Client) getProject(ctx context.Context, r request) (Project, error) {
	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return Project{}, err
	}
	var p Project
	if len(raw) == 0 {
		return p, nil
	}
	if err := unwrap(raw, "project", &p); err != nil {
		return Project{}, fmt.Errorf("api: %s: decode response: %w", r.op, err)
	}
	return p, nil
}
