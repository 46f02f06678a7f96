package api

import (
	"context"
	"net/http"

	"github.com/kiwari-pos/stockroom/internal/domain"
)

// Login exchanges e-mail and password for a credential. The client's token is
// not changed; callers decide whether to adopt the returned one.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new credential pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	req := domain.RefreshRequest{RefreshToken: refreshToken}
	if err := c.do(ctx, "refresh token", http.MethodPost, "/auth/refresh", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser fetches the principal the current token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, "get current user", http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
