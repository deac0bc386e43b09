package portfolio

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eringen/portfolio/api"
)

func TestAdminRequiresLogin(t *testing.T) {
	a, _ := setupTestApp(t)
	b := newBrowser(t, a)

	resp, _ := b.get("/admin")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("status %d location %q, want 303 /login", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestAdminPartialRequestRedirectsWithHeader(t *testing.T) {
	a, _ := setupTestApp(t)
	b := newBrowser(t, a)

	resp, _ := b.post("/admin/projects/p1", url.Values{"_method": {"DELETE"}}, true)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("HX-Redirect"); got != "/login" {
		t.Errorf("HX-Redirect = %q, want /login", got)
	}
}

func TestLogin(t *testing.T) {
	a, _ := setupTestApp(t)
	b := newBrowser(t, a)

	resp, body := b.post("/login", url.Values{"username": {"admin"}, "password": {"wrong"}}, false)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad credentials status = %d, want 401", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid credentials") {
		t.Error("login page should show the API's message")
	}

	b.login()
	resp, body = b.get("/admin")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Admin Dashboard") {
		t.Error("dashboard not rendered")
	}

	resp, _ = b.get("/login")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin" {
		t.Errorf("login page while signed in: status %d location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestLoginAPIFailureIsBadGateway(t *testing.T) {
	a, fake := setupTestApp(t)
	fake.set(func(f *fakeAPI) { f.loginStatus = http.StatusServiceUnavailable })
	b := newBrowser(t, a)

	resp, body := b.post("/login", url.Values{"username": {"admin"}, "password": {"secret"}}, false)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if strings.Contains(body, "login backend down") {
		t.Error("server-side failure should not be shown as a credentials error")
	}
}

func TestLoginRateLimited(t *testing.T) {
	a, _ := setupTestApp(t)
	b := newBrowser(t, a)

	for i := 0; i < 5; i++ {
		b.post("/login", url.Values{"username": {"admin"}, "password": {"wrong"}}, false)
	}
	resp, body := b.post("/login", url.Values{"username": {"admin"}, "password": {"secret"}}, false)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if !strings.Contains(body, "Too many login attempts") {
		t.Error("missing rate limit message")
	}
}

func TestRejectedTokenIsCleared(t *testing.T) {
	a, fake := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	fake.set(func(f *fakeAPI) { f.meStatus = http.StatusUnauthorized })
	resp, _ := b.get("/admin")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("status %d location %q, want 303 /", resp.StatusCode, resp.Header.Get("Location"))
	}

	fake.set(func(f *fakeAPI) { f.meStatus = 0 })
	resp, _ = b.get("/admin")
	if resp.Header.Get("Location") != "/login" {
		t.Errorf("token should have been dropped, got location %q", resp.Header.Get("Location"))
	}
}

func TestUnreachableAPIKeepsToken(t *testing.T) {
	a, fake := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	fake.set(func(f *fakeAPI) { f.meStatus = http.StatusInternalServerError })
	resp, _ := b.get("/admin")
	if resp.Header.Get("Location") != "/" {
		t.Fatalf("location %q, want /", resp.Header.Get("Location"))
	}

	fake.set(func(f *fakeAPI) { f.meStatus = 0 })
	resp, _ = b.get("/admin")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("token should survive a server error, status = %d", resp.StatusCode)
	}
}

func TestLogout(t *testing.T) {
	a, _ := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	resp, _ := b.post("/logout", url.Values{}, false)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("logout: status %d location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	resp, _ = b.get("/admin")
	if resp.Header.Get("Location") != "/login" {
		t.Errorf("after logout location = %q, want /login", resp.Header.Get("Location"))
	}
}

func TestCreateBlogValidation(t *testing.T) {
	a, fake := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	cases := []url.Values{
		{"title": {""}, "content": {"<p>Body</p>"}},
		{"title": {"Title"}, "content": {"<p><br></p>"}},
	}
	for _, form := range cases {
		resp, body := b.post("/admin/blogs", form, false)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", resp.StatusCode)
		}
		if !strings.Contains(body, msgBlogRequired) {
			t.Error("missing validation message")
		}
	}
	if n := len(fake.callsTo(http.MethodPost, "/admin/blogs")); n != 0 {
		t.Errorf("API received %d create calls, want 0", n)
	}
}

func TestCreateBlog(t *testing.T) {
	a, fake := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	resp, body := b.post("/admin/blogs", url.Values{
		"title":    {"Fresh"},
		"content":  {"<p>New words</p>"},
		"imageUrl": {"https://img.example/a.png"},
	}, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, msgBlogCreated) {
		t.Error("missing success flash")
	}

	calls := fake.callsTo(http.MethodPost, "/admin/blogs")
	if len(calls) != 1 {
		t.Fatalf("create calls = %d, want 1", len(calls))
	}
	var in api.BlogInput
	if err := json.Unmarshal(calls[0].Body, &in); err != nil {
		t.Fatalf("decode create body: %v", err)
	}
	if in.Title != "Fresh" || in.ImageURL != "https://img.example/a.png" {
		t.Errorf("create body = %+v", in)
	}

	_, body = b.get("/blog")
	if !strings.Contains(body, "Fresh") {
		t.Error("new post should appear on the public list")
	}
}

func TestCreateProjectRedirectsToList(t *testing.T) {
	a, fake := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	resp, body := b.post("/admin/projects", url.Values{
		"title":        {"Robot"},
		"description":  {"<p>Beeps</p>"},
		"technologies": {"Go, , C "},
		"featured":     {"true"},
	}, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, msgProjectCreated) || !strings.Contains(body, "/admin?tab=viewProjects") {
		t.Error("missing success flash or redirect target")
	}

	calls := fake.callsTo(http.MethodPost, "/admin/projects")
	if len(calls) != 1 {
		t.Fatalf("create calls = %d, want 1", len(calls))
	}
	var in api.ProjectInput
	json.Unmarshal(calls[0].Body, &in)
	if len(in.Technologies) != 2 || in.Technologies[1] != "C" || !in.Featured {
		t.Errorf("create body = %+v", in)
	}
}

func TestDeleteProjectPartial(t *testing.T) {
	a, fake := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	resp, body := b.post("/admin/projects/p2", url.Values{"_method": {"DELETE"}}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body != "" {
		t.Errorf("body = %q, want empty", body)
	}
	if msg, _ := url.PathUnescape(resp.Header.Get("X-Flash-Message")); msg != msgProjectDeleted {
		t.Errorf("flash = %q", msg)
	}
	if len(fake.callsTo(http.MethodDelete, "/admin/projects/p2")) != 1 {
		t.Error("DELETE not sent to API")
	}

	_, body = b.get("/admin?tab=viewProjects")
	if strings.Contains(body, "Weather") {
		t.Error("deleted project still listed")
	}
}

func TestDeleteBlogWithoutScript(t *testing.T) {
	a, _ := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	resp, _ := b.post("/admin/blogs/b1", url.Values{"_method": {"DELETE"}}, false)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin?tab=viewBlogs" {
		t.Fatalf("status %d location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	_, body := b.get("/admin?tab=viewBlogs")
	if !strings.Contains(body, msgBlogDeleted) {
		t.Error("flash should survive the redirect")
	}
	if strings.Contains(body, "First post") {
		t.Error("deleted post still listed")
	}
}

func TestDeleteMissingBlogReportsError(t *testing.T) {
	a, _ := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	resp, _ := b.post("/admin/blogs/nope", url.Values{"_method": {"DELETE"}}, true)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if resp.Header.Get("X-Flash-Kind") != "error" {
		t.Errorf("flash kind = %q", resp.Header.Get("X-Flash-Kind"))
	}
}

func TestToggleFeatured(t *testing.T) {
	a, fake := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	resp, body := b.post("/admin/projects/p2/featured", url.Values{"featured": {"true"}, "title": {"Weather"}}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	calls := fake.callsTo(http.MethodPut, "/admin/projects/p2")
	if len(calls) != 1 {
		t.Fatalf("PUT calls = %d, want 1", len(calls))
	}
	if got := strings.TrimSpace(string(calls[0].Body)); got != `{"featured":true}` {
		t.Errorf("PUT body = %s, want only the featured flag", got)
	}
	if !strings.Contains(body, "badge-featured") || !strings.Contains(body, "Unfeature") {
		t.Error("row should show the project as featured")
	}
	if msg, _ := url.PathUnescape(resp.Header.Get("X-Flash-Message")); msg != msgProjectFeatured {
		t.Errorf("flash = %q", msg)
	}

	_, body = b.get("/")
	if !strings.Contains(body, "Weather") {
		t.Error("newly featured project should be on home")
	}
}

func TestEditPagesLoadItems(t *testing.T) {
	a, fake := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	resp, body := b.get("/admin/blogs/b1/edit")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `value="First post"`) {
		t.Errorf("edit blog: status %d", resp.StatusCode)
	}
	resp, body = b.get("/admin/projects/p1/edit")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `value="Compiler"`) {
		t.Errorf("edit project: status %d", resp.StatusCode)
	}
	if len(fake.callsTo(http.MethodGet, "/api/projects/p1")) != 1 {
		t.Error("edit project should load from the public project endpoint")
	}
	if n := len(fake.callsTo(http.MethodGet, "/admin/projects/p1")); n != 0 {
		t.Errorf("edit project made %d admin reads, want 0", n)
	}
	resp, body = b.get("/admin/projects/nope/edit")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "Failed to load project") {
		t.Errorf("missing project: status %d", resp.StatusCode)
	}
}

func TestUpdateProject(t *testing.T) {
	a, fake := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	resp, body := b.post("/admin/projects/p1", url.Values{
		"_method":     {"PUT"},
		"title":       {"Compiler 2"},
		"description": {"<p>Now faster</p>"},
	}, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, msgProjectUpdated) {
		t.Error("missing success flash")
	}
	calls := fake.callsTo(http.MethodPut, "/admin/projects/p1")
	if len(calls) != 1 {
		t.Fatalf("PUT calls = %d", len(calls))
	}
	var in api.ProjectInput
	json.Unmarshal(calls[0].Body, &in)
	if in.Title != "Compiler 2" || in.Featured {
		t.Errorf("PUT body = %+v", in)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// postMultipart submits the edit-blog form the way a browser does.
func (b *browser) postMultipart(path string, fields map[string]string, fileName string, file []byte) (*http.Response, string) {
	b.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("_csrf", b.csrf())
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if file != nil {
		fw, err := mw.CreateFormFile("image", fileName)
		if err != nil {
			b.t.Fatalf("form file: %v", err)
		}
		fw.Write(file)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, b.base+path, &buf)
	if err != nil {
		b.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req)
}

func TestUpdateBlogValidation(t *testing.T) {
	a, fake := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	resp, body := b.postMultipart("/admin/blogs/b1", map[string]string{
		"_method": "PUT", "title": "Kept", "content": "<div><br></div>",
	}, "", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if !strings.Contains(body, msgBlogContent) {
		t.Error("missing content message")
	}
	if len(fake.callsTo(http.MethodPut, "/admin/blogs/b1")) != 0 {
		t.Error("invalid update reached the API")
	}
}

func TestUpdateBlogResizesImage(t *testing.T) {
	a, fake := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	resp, body := b.postMultipart("/admin/blogs/b1", map[string]string{
		"_method": "PUT", "title": "Edited", "content": "<p>Changed</p>",
	}, "wide.png", pngBytes(t, 1600, 400))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, msgBlogUpdated) {
		t.Error("missing success flash")
	}

	calls := fake.callsTo(http.MethodPut, "/admin/blogs/b1")
	if len(calls) != 1 {
		t.Fatalf("PUT calls = %d", len(calls))
	}
	if !strings.HasPrefix(calls[0].ContentType, "multipart/form-data") {
		t.Fatalf("content type = %q", calls[0].ContentType)
	}
	req, _ := http.NewRequest(http.MethodPut, "/", bytes.NewReader(calls[0].Body))
	req.Header.Set("Content-Type", calls[0].ContentType)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse forwarded form: %v", err)
	}
	if req.FormValue("title") != "Edited" {
		t.Errorf("forwarded title = %q", req.FormValue("title"))
	}
	f, fh, err := req.FormFile("image")
	if err != nil {
		t.Fatalf("forwarded image: %v", err)
	}
	defer f.Close()
	if filepath.Ext(fh.Filename) != ".jpg" {
		t.Errorf("forwarded name = %q", fh.Filename)
	}
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("forwarded image is not JPEG: %v", err)
	}
	if got := img.Bounds().Dx(); got != maxImageWidth {
		t.Errorf("width = %d, want %d", got, maxImageWidth)
	}
	if got := img.Bounds().Dy(); got != 300 {
		t.Errorf("height = %d, want 300", got)
	}
}

func TestUpdateBlogRejectsInvalidImage(t *testing.T) {
	a, fake := setupTestApp(t)
	b := newBrowser(t, a)
	b.login()

	resp, body := b.postMultipart("/admin/blogs/b1", map[string]string{
		"_method": "PUT", "title": "Edited", "content": "<p>Changed</p>",
	}, "notes.png", []byte("not an image"))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid image") {
		t.Error("missing invalid image message")
	}
	if len(fake.callsTo(http.MethodPut, "/admin/blogs/b1")) != 0 {
		t.Error("invalid image reached the API")
	}
}

func TestAnalyticsTab(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "analytics.db")
	a, _ := setupTestApp(t, func(c *SiteConfig) {
		c.AnalyticsEnabled = true
		c.AnalyticsDatabasePath = dbPath
	})
	b := newBrowser(t, a)

	b.get("/")
	b.get("/blog")
	b.login()

	resp, body := b.get("/admin?tab=analytics&days=30")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "/blog") {
		t.Error("tracked page missing from stats")
	}

	stats, err := a.tracker.Stats(t.Context(), 7)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalViews != 2 {
		t.Errorf("TotalViews = %d, want 2", stats.TotalViews)
	}
}
