package analytics

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

const firefoxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEveryConnectionWaitsOnBusy(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	var conns []*sql.Conn
	for i := 0; i < 4; i++ {
		conn, err := s.db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn: %v", err)
		}
		defer conn.Close()
		conns = append(conns, conn)
	}
	for i, conn := range conns {
		var ms int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&ms); err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		if ms != 5000 {
			t.Errorf("conn %d busy_timeout = %d, want 5000", i, ms)
		}
	}
}

func TestSaltIsPersisted(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.Salt(ctx)
	if err != nil {
		t.Fatalf("Salt: %v", err)
	}
	if len(first) != 64 {
		t.Fatalf("salt length = %d, want 64", len(first))
	}
	second, err := s.Salt(ctx)
	if err != nil {
		t.Fatalf("Salt: %v", err)
	}
	if first != second {
		t.Fatal("salt changed between calls")
	}
}

func TestGetStats(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	visits := []Visit{
		{VisitorID: "v1", IPHash: "h1", Browser: "Firefox", OS: "Linux", Device: "Desktop", Path: "/", Referrer: "Direct", Timestamp: day},
		{VisitorID: "v1", IPHash: "h1", Browser: "Firefox", OS: "Linux", Device: "Desktop", Path: "/blog", Referrer: "Direct", Timestamp: day.Add(time.Minute)},
		{VisitorID: "v2", IPHash: "h2", Browser: "Chrome", OS: "Android", Device: "Mobile", Path: "/", Referrer: "Google", Timestamp: day.AddDate(0, 0, -1)},
		{VisitorID: "v3", IPHash: "h3", Browser: "Chrome", OS: "Windows", Device: "Desktop", Path: "/", Referrer: "Direct", Timestamp: day.AddDate(0, 0, -30)},
	}
	for _, v := range visits {
		if err := s.SaveVisit(ctx, v); err != nil {
			t.Fatalf("SaveVisit: %v", err)
		}
	}
	if err := s.SaveBotVisit(ctx, BotVisit{BotName: "Googlebot", IPHash: "b", UserAgent: "Googlebot", Path: "/", Timestamp: day}); err != nil {
		t.Fatalf("SaveBotVisit: %v", err)
	}

	to := TruncateDay(day).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -7)
	stats, err := s.GetStats(ctx, from, to)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalViews != 3 {
		t.Errorf("TotalViews = %d, want 3", stats.TotalViews)
	}
	if stats.UniqueVisitors != 2 {
		t.Errorf("UniqueVisitors = %d, want 2", stats.UniqueVisitors)
	}
	if stats.BotVisits != 1 {
		t.Errorf("BotVisits = %d, want 1", stats.BotVisits)
	}
	if len(stats.TopPages) == 0 || stats.TopPages[0].Path != "/" || stats.TopPages[0].Views != 2 {
		t.Errorf("TopPages = %+v", stats.TopPages)
	}
	if len(stats.DailyViews) != 7 {
		t.Fatalf("DailyViews has %d entries, want 7", len(stats.DailyViews))
	}
	last := stats.DailyViews[6]
	if last.Date != "2026-03-10" || last.Views != 2 {
		t.Errorf("last day = %+v, want 2026-03-10 with 2 views", last)
	}
	if stats.DailyViews[5].Views != 1 {
		t.Errorf("previous day = %+v, want 1 view", stats.DailyViews[5])
	}
}

func TestCleanupOldVisits(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s.SaveVisit(ctx, Visit{VisitorID: "old", Path: "/", Timestamp: now.AddDate(-2, 0, 0)})
	s.SaveVisit(ctx, Visit{VisitorID: "new", Path: "/", Timestamp: now})

	if err := s.CleanupOldVisits(ctx, 365); err != nil {
		t.Fatalf("CleanupOldVisits: %v", err)
	}
	stats, err := s.GetStats(ctx, now.AddDate(-3, 0, 0), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalViews != 1 {
		t.Errorf("TotalViews after cleanup = %d, want 1", stats.TotalViews)
	}
}

func TestTrackerMiddleware(t *testing.T) {
	s := setupTestStore(t)
	tr, err := NewTracker(context.Background(), s, WithSkipper(func(p string) bool { return p == "/admin" }))
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return fixed }

	e := echo.New()
	page := func(c echo.Context) error { return c.HTML(http.StatusOK, "<p>ok</p>") }
	e.GET("/", page, tr.Middleware)
	e.GET("/admin", page, tr.Middleware)
	e.GET("/feed.xml", func(c echo.Context) error { return c.XML(http.StatusOK, struct{}{}) }, tr.Middleware)
	e.GET("/missing", func(c echo.Context) error { return echo.ErrNotFound }, tr.Middleware)

	requests := []struct {
		path string
		ua   string
		dnt  bool
	}{
		{"/", firefoxUA, false},         // recorded
		{"/", firefoxUA, true},          // DNT
		{"/admin", firefoxUA, false},    // skipped path
		{"/feed.xml", firefoxUA, false}, // not HTML
		{"/missing", firefoxUA, false},  // error
		{"/", "Googlebot/2.1", false},   // bot
	}
	for _, r := range requests {
		req := httptest.NewRequest(http.MethodGet, r.path, nil)
		req.Header.Set("User-Agent", r.ua)
		if r.dnt {
			req.Header.Set("DNT", "1")
		}
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	stats, err := tr.Stats(context.Background(), 7)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalViews != 1 {
		t.Errorf("TotalViews = %d, want 1", stats.TotalViews)
	}
	if stats.BotVisits != 1 {
		t.Errorf("BotVisits = %d, want 1", stats.BotVisits)
	}
	if stats.Days != 7 {
		t.Errorf("Days = %d, want 7", stats.Days)
	}
}
