package portfolio

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/portfolio/api"
)

// ContentSource is the part of the API the cache reads from.
type ContentSource interface {
	ListBlogs(ctx context.Context) ([]api.BlogPost, error)
	ListProjects(ctx context.Context) ([]api.Project, error)
}

// ContentCache is an in-memory cache of the public blog and project lists
// with TTL. A zero TTL disables caching.
type ContentCache struct {
	mu  sync.RWMutex
	src ContentSource
	ttl time.Duration
	gen uint64 // bumped by Invalidate so in-flight loads are not stored

	blogs      []api.BlogPost
	blogsAt    time.Time
	blogsOK    bool
	projects   []api.Project
	projectsAt time.Time
	projectsOK bool
}

// NewContentCache creates a ContentCache backed by src.
func NewContentCache(src ContentSource, ttl time.Duration) *ContentCache {
	return &ContentCache{src: src, ttl: ttl}
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.blogs, c.blogsOK = nil, false
	c.projects, c.projectsOK = nil, false
	c.mu.Unlock()
}

func (c *ContentCache) fresh(ok bool, at time.Time) bool {
	return ok && c.ttl > 0 && time.Since(at) < c.ttl
}

// ListBlogs returns the public blog list. Failed loads are not cached.
func (c *ContentCache) ListBlogs(ctx context.Context) ([]api.BlogPost, error) {
	c.mu.RLock()
	if c.fresh(c.blogsOK, c.blogsAt) {
		blogs := c.blogs
		c.mu.RUnlock()
		return blogs, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	blogs, err := c.src.ListBlogs(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if gen == c.gen {
		c.blogs, c.blogsAt, c.blogsOK = blogs, time.Now(), true
	}
	c.mu.Unlock()
	return blogs, nil
}

// ListProjects returns the public project list. Failed loads are not cached.
func (c *ContentCache) ListProjects(ctx context.Context) ([]api.Project, error) {
	c.mu.RLock()
	if c.fresh(c.projectsOK, c.projectsAt) {
		projects := c.projects
		c.mu.RUnlock()
		return projects, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	projects, err := c.src.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if gen == c.gen {
		c.projects, c.projectsAt, c.projectsOK = projects, time.Now(), true
	}
	c.mu.Unlock()
	return projects, nil
}
