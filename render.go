package portfolio

import (
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// isPartial reports whether the request came from the dashboard script,
// which swaps returned fragments into the page.
func isPartial(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// redirect navigates the browser to target: a plain redirect for full page
// requests, an HX-Redirect header for partial ones.
func redirect(c echo.Context, target string) error {
	if isPartial(c) {
		c.Response().Header().Set("HX-Redirect", target)
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// setFlashHeaders hands a status message to the dashboard script alongside
// a partial response.
func setFlashHeaders(c echo.Context, f views.Flash) {
	c.Response().Header().Set("X-Flash-Message", url.PathEscape(f.Text))
	c.Response().Header().Set("X-Flash-Kind", f.Kind)
}

// renderRow answers a partial request with a list row (or nothing, when the
// row was deleted) and the flash in headers. Full page requests get the
// flash in the session and a redirect back to the dashboard tab.
func (a *App) renderRow(c echo.Context, tab string, f views.Flash, row templ.Component) error {
	if isPartial(c) {
		setFlashHeaders(c, f)
		if row == nil {
			return c.HTML(http.StatusOK, "")
		}
		return Render(c, row)
	}
	if err := addFlash(c, f); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin?tab="+tab)
}

// rowFailed reports a failed row action. The dashboard script leaves the
// row in place when the status is not 2xx.
func (a *App) rowFailed(c echo.Context, tab string, status int, msg string) error {
	f := views.Flash{Text: msg, Kind: "error"}
	if isPartial(c) {
		setFlashHeaders(c, f)
		return c.NoContent(status)
	}
	if err := addFlash(c, f); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin?tab="+tab)
}
