package resource

import (
	"context"
	"errors"
	"fmt"

	"relayconsole/internal/model"
)

var ErrEmptyPassword = errors.New("password is required")

type AuthClient struct {
	c Requester
}

func NewAuthClient(c Requester) *AuthClient {
	return &AuthClient{c: c}
}

// Login 调用 POST /login，只返回 token，不写入 auth store
func (a *AuthClient) Login(ctx context.Context, password string) (*model.LoginResponse, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}

	var resp model.LoginResponse
	if err := a.c.Post(ctx, "/login", model.LoginRequest{Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, errors.New("login: response carried no token")
	}
	return &resp, nil
}
