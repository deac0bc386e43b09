package analytics

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Tracker records page views from an Echo middleware.
type Tracker struct {
	store   *Store
	salt    string
	host    string
	limiter *rateLimiter
	skip    func(path string) bool
	now     func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithSkipper excludes paths for which fn returns true.
func WithSkipper(fn func(path string) bool) TrackerOption {
	return func(t *Tracker) {
		t.skip = fn
	}
}

// WithHost sets the site's own host so internal navigation counts as Direct.
func WithHost(host string) TrackerOption {
	return func(t *Tracker) {
		t.host = host
	}
}

// NewTracker loads the installation salt and returns a Tracker that records
// at most 60 views per IP per minute.
func NewTracker(ctx context.Context, store *Store, opts ...TrackerOption) (*Tracker, error) {
	salt, err := store.Salt(ctx)
	if err != nil {
		return nil, err
	}
	t := &Tracker{
		store:   store,
		salt:    salt,
		limiter: newRateLimiter(60, time.Minute),
		skip:    func(string) bool { return false },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Middleware records successful GET requests for HTML pages. Failures to
// record are logged and never affect the response.
func (t *Tracker) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		req := c.Request()
		if err != nil || req.Method != http.MethodGet || c.Response().Status != http.StatusOK {
			return err
		}
		if !strings.HasPrefix(c.Response().Header().Get(echo.HeaderContentType), echo.MIMETextHTML) {
			return nil
		}
		if req.Header.Get("HX-Request") == "true" || req.Header.Get("DNT") == "1" || t.skip(req.URL.Path) {
			return nil
		}
		ip := c.RealIP()
		if !t.limiter.allow(ip) {
			return nil
		}
		if rerr := t.record(req.Context(), ip, req.UserAgent(), req.URL.Path, req.Referer()); rerr != nil {
			c.Logger().Errorf("analytics: record %s: %v", req.URL.Path, rerr)
		}
		return nil
	}
}

func (t *Tracker) record(ctx context.Context, ip, ua, path, referrer string) error {
	now := t.now().UTC()
	if IsBot(ua) {
		return t.store.SaveBotVisit(ctx, BotVisit{
			BotName:   ExtractBotName(ua),
			IPHash:    hashWithSalt(t.salt, ip),
			UserAgent: truncate(ua, 512),
			Path:      truncate(path, 2048),
			Timestamp: now,
		})
	}
	browser, os, device := ParseUserAgent(ua)
	return t.store.SaveVisit(ctx, Visit{
		VisitorID: hashWithSalt(t.salt, ip, ua),
		IPHash:    hashWithSalt(t.salt, ip),
		Browser:   browser,
		OS:        os,
		Device:    device,
		Path:      truncate(path, 2048),
		Referrer:  CleanReferrer(referrer, t.host),
		Timestamp: now,
	})
}

// Stats aggregates the last days days, including today.
func (t *Tracker) Stats(ctx context.Context, days int) (*Stats, error) {
	if days <= 0 {
		days = 7
	}
	to := TruncateDay(t.now()).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -days)
	stats, err := t.store.GetStats(ctx, from, to)
	if err != nil {
		return nil, err
	}
	stats.Days = days
	return stats, nil
}

// PruneLimiter forgets idle rate-limit entries.
func (t *Tracker) PruneLimiter() {
	t.limiter.prune()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
