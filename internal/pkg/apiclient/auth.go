package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/attendance-console/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
)

// Login exchanges credentials for a backend token. No bearer is required.
func (c *Client) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/login", nil, req)
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("login failed: %w", err)
	}
	return decodeData[auth.LoginResponse](env)
}

// Me returns the user owning the current token.
func (c *Client) Me(ctx context.Context) (user.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to fetch current user: %w", err)
	}
	return decodeData[user.User](env)
}
