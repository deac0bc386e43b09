package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
)

type blogList struct {
	Blogs []BlogPost `json:"blogs"`
}

// ListBlogs returns the public blog list.
func (c *Client) ListBlogs(ctx context.Context) ([]BlogPost, error) {
	var out blogList
	err := c.do(ctx, request{op: "list blogs", method: http.MethodGet, path: "/api/blogs"}, &out)
	return out.Blogs, err
}

// GetBlog returns a single public blog post.
func (c *Client) GetBlog(ctx context.Context, id string) (BlogPost, error) {
	return c.getBlog(ctx, request{op: "get blog", method: http.MethodGet, path: itemPath("/api/blogs", id)})
}

// AdminListBlogs returns every blog post visible to the admin.
func (c *Client) AdminListBlogs(ctx context.Context, token string) ([]BlogPost, error) {
	var out blogList
	err := c.do(ctx, request{op: "admin list blogs", method: http.MethodGet, path: "/admin/blogs", token: token, auth: true}, &out)
	return out.Blogs, err
}

// AdminGetBlog loads a blog post for editing.
func (c *Client) AdminGetBlog(ctx context.Context, token, id string) (BlogPost, error) {
	return c.getBlog(ctx, request{op: "admin get blog", method: http.MethodGet, path: itemPath("/admin/blogs", id), token: token, auth: true})
}

// CreateBlog posts a new blog as JSON.
func (c *Client) CreateBlog(ctx context.Context, token string, in BlogInput) (BlogPost, error) {
	if token == "" {
		return BlogPost{}, ErrNoToken
	}
	body, err := jsonBody(in)
	if err != nil {
		return BlogPost{}, fmt.Errorf("api: create blog: %w", err)
	}
	return c.getBlog(ctx, request{
		op: "create blog", method: http.MethodPost, path: "/admin/blogs",
		token: token, auth: true, body: body, contentType: "application/json",
	})
}

// UpdateBlog replaces a blog post. The body is multipart form data with
// title, content and an optional image file.
func (c *Client) UpdateBlog(ctx context.Context, token, id string, in BlogUpdate) (BlogPost, error) {
	if token == "" {
		return BlogPost{}, ErrNoToken
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := writeBlogForm(mw, in); err != nil {
		return BlogPost{}, fmt.Errorf("api: update blog: %w", err)
	}
	return c.getBlog(ctx, request{
		op: "update blog", method: http.MethodPut, path: itemPath("/admin/blogs", id),
		token: token, auth: true, body: &buf, contentType: mw.FormDataContentType(),
	})
}

func writeBlogForm(mw *multipart.Writer, in BlogUpdate) error {
	if err := mw.WriteField("title", in.Title); err != nil {
		return err
	}
	if err := mw.WriteField("content", in.Content); err != nil {
		return err
	}
	if len(in.Image) > 0 {
		name := in.ImageName
		if name == "" {
			name = "image.jpg"
		}
		fw, err := mw.CreateFormFile("image", name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(in.Image); err != nil {
			return err
		}
	}
	return mw.Close()
}

// DeleteBlog removes a blog post.
func (c *Client) DeleteBlog(ctx context.Context, token, id string) error {
	return c.do(ctx, request{op: "delete blog", method: http.MethodDelete, path: itemPath("/admin/blogs", id), token: token, auth: true}, nil)
}

func (c *Client) getBlog(ctx context.Context, r request) (BlogPost, error) {
	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return BlogPost{}, err
	}
	var b BlogPost
	if len(raw) == 0 {
		return b, nil
	}
	if err := unwrap(raw, "blog", &b); err != nil {
		return BlogPost{}, fmt.Errorf("api: %s: decode response: %w", r.op, err)
	}
	return b, nil
}
