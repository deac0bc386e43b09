package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	body, err := jsonBody(creds)
	if err != nil {
		return "", fmt.Errorf("api: login: %w", err)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, request{
		op: "login", method: http.MethodPost, path: "/admin/login",
		body: body, contentType: "application/json",
	}, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("api: login: response carried no token")
	}
	return out.Token, nil
}

// Me verifies token. A rejected token yields an error matching
// ErrUnauthorized.
func (c *Client) Me(ctx context.Context, token string) error {
	return c.do(ctx, request{op: "me", method: http.MethodGet, path: "/admin/me", token: token, auth: true}, nil)
}
