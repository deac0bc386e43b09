package portfolio

import (
	"encoding/gob"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/api"
	"github.com/eringen/portfolio/views"
)

const (
	tokenKey   = "token"
	flashKey   = "flash"
	ctxToken   = "portfolio.token"
	tooManyMsg = "Too many login attempts. Try again later."
)

func init() {
	gob.Register(views.Flash{})
}

// getSession returns the admin session. A cookie that no longer decodes
// (for example after the secret changed) yields a fresh session.
func getSession(c echo.Context) (*sessions.Session, error) {
	sess, err := session.Get(sessionName, c)
	if sess != nil {
		return sess, nil
	}
	return nil, err
}

func sessionToken(c echo.Context) string {
	sess, err := getSession(c)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[tokenKey].(string)
	return token
}

func setToken(c echo.Context, token string) error {
	sess, err := getSession(c)
	if err != nil {
		return err
	}
	sess.Values[tokenKey] = token
	return sess.Save(c.Request(), c.Response())
}

func clearToken(c echo.Context) error {
	sess, err := getSession(c)
	if err != nil {
		return err
	}
	delete(sess.Values, tokenKey)
	return sess.Save(c.Request(), c.Response())
}

func addFlash(c echo.Context, f views.Flash) error {
	sess, err := getSession(c)
	if err != nil {
		return err
	}
	sess.AddFlash(f, flashKey)
	return sess.Save(c.Request(), c.Response())
}

// popFlash returns and clears the pending flash, if any.
func popFlash(c echo.Context) views.Flash {
	sess, err := getSession(c)
	if err != nil {
		return views.Flash{}
	}
	flashes := sess.Flashes(flashKey)
	if len(flashes) == 0 {
		return views.Flash{}
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Errorf("session: save after flash: %v", err)
	}
	f, _ := flashes[len(flashes)-1].(views.Flash)
	return f
}

// token returns the bearer token verified by requireAdmin.
func token(c echo.Context) string {
	t, _ := c.Get(ctxToken).(string)
	return t
}

// requireAdmin gates the admin pages. Without a token the browser goes to
// the login page. The token is checked against /admin/me on every request:
// a rejected token is dropped and the browser sent home, as is any request
// made while the API is unreachable.
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		t := sessionToken(c)
		if t == "" {
			return redirect(c, "/login")
		}
		if err := a.API.Me(c.Request().Context(), t); err != nil {
			return a.authFailed(c, err)
		}
		c.Set(ctxToken, t)
		return next(c)
	}
}

// authFailed handles an authentication failure from any admin API call.
func (a *App) authFailed(c echo.Context, err error) error {
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNoToken) {
		c.Logger().Infof("admin: token rejected: %v", err)
		if cerr := clearToken(c); cerr != nil {
			return cerr
		}
	} else {
		c.Logger().Errorf("admin: verify token: %v", err)
	}
	return redirect(c, "/")
}

func (a *App) handleLoginPage(c echo.Context) error {
	if sessionToken(c) != "" {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}
	return Render(c, a.Views.Login(views.LoginPage{Page: a.page(c, views.PageMeta{Title: "Login", NoIndex: true})}))
}

func (a *App) handleLogin(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	renderErr := func(code int, msg string) error {
		return RenderStatus(c, code, a.Views.Login(views.LoginPage{
			Page:     a.page(c, views.PageMeta{Title: "Login", NoIndex: true}),
			Username: username,
			Error:    msg,
		}))
	}

	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return renderErr(http.StatusTooManyRequests, tooManyMsg)
	}

	t, err := a.API.Login(c.Request().Context(), api.Credentials{Username: username, Password: password})
	if err != nil {
		a.loginLimiter.Record(ip)
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			return renderErr(http.StatusUnauthorized, api.UserMessage(err, "Login failed"))
		}
		c.Logger().Errorf("login: %v", err)
		return renderErr(http.StatusBadGateway, "Server error. Please try again later.")
	}

	a.loginLimiter.Reset(ip)
	if err := setToken(c, t); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearToken(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
