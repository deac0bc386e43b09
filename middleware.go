package portfolio

import (
	"crypto/sha256"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionName = "portfolio_session"
	maxBodySize = "12M"
)

// Content comes from the API as rich HTML, so images and embedded video
// may be remote. Scripts are limited to our own admin.js.
var cspDirectives = []string{
	"default-src 'self'",
	"script-src 'self'",
	"style-src 'self' 'unsafe-inline'",
	"img-src 'self' https: data:",
	"media-src 'self' https:",
	"font-src 'self'",
	"connect-src 'self'",
	"form-action 'self'",
	"base-uri 'self'",
}

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)
	e.HTTPErrorHandler = a.httpErrorHandler

	// The body is capped before anything reads it; method override parses
	// the form. Edit-blog uploads are 10MB, which leaves room for the other
	// fields.
	e.Pre(middleware.BodyLimit(maxBodySize))
	// HTML forms can only GET and POST; _method carries PUT and DELETE.
	e.Pre(middleware.MethodOverrideWithConfig(middleware.MethodOverrideConfig{
		Getter: middleware.MethodFromForm("_method"),
	}))
	e.Pre(middleware.RemoveTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
	}))

	e.Use(
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}),
		requestLogger(),
		middleware.Recover(),
		middleware.GzipWithConfig(middleware.GzipConfig{
			Level:   5,
			Skipper: func(c echo.Context) bool { return strings.HasPrefix(c.Request().URL.Path, "/public/") },
		}),
		middleware.SecureWithConfig(middleware.SecureConfig{
			XSSProtection:         "1; mode=block",
			ContentTypeNosniff:    "nosniff",
			XFrameOptions:         "DENY",
			ReferrerPolicy:        "strict-origin-when-cross-origin",
			ContentSecurityPolicy: strings.Join(cspDirectives, "; "),
			HSTSMaxAge:            31536000,
		}),
		session.Middleware(a.newSessionStore()),
		a.csrf(),
		cacheControlMiddleware,
	)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s) id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	})
}

// csrf checks the _csrf form field (or an X-CSRF-Token header) on every
// unsafe request.
func (a *App) csrf() echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		CookieHTTPOnly: true,
		ErrorHandler: func(err error, c echo.Context) error {
			c.Logger().Warnf("csrf: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
			return c.String(http.StatusForbidden, "Forbidden")
		},
	})
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", cachePolicy(c.Request().URL.Path))
		return next(c)
	}
}

func cachePolicy(path string) string {
	switch {
	case strings.HasPrefix(path, "/public/"):
		return "public, max-age=86400"
	case path == "/sitemap.xml", path == "/feed.xml", path == "/robots.txt":
		return "public, max-age=3600"
	case strings.HasPrefix(path, "/admin"), path == "/login":
		return "no-store"
	default:
		// Pages show the Admin link to a signed-in browser.
		return "private, max-age=60"
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	// The session carries the API bearer token, so it is encrypted as well
	// as signed.
	blockKey := sha256.Sum256([]byte(a.Config.SessionSecret))
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret), blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
