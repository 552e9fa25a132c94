package console

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("page not found")
	ErrNoHandler    = errors.New("page has no handler")
	ErrRedirectLoop = errors.New("too many redirects")
)

const maxRedirects = 4

// AuthState 守卫只关心本地是否持有 token，不关心服务端是否认可
type AuthState interface {
	Authenticated() bool
}

// Handler 页面处理函数；args 只传给最初请求的页面，重定向后的页面收到 nil
type Handler func(ctx context.Context, args []string) error

type Navigator struct {
	auth     AuthState
	handlers map[string]Handler
	logger   *zap.Logger
}

func NewNavigator(auth AuthState, logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{
		auth:     auth,
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Handle 注册页面处理函数
func (n *Navigator) Handle(page string, h Handler) {
	n.handlers[page] = h
}

// Navigate 先执行守卫，再运行最终落地页面的处理函数，返回落地页面
func (n *Navigator) Navigate(ctx context.Context, target string, args []string) (Match, error) {
	path := Normalize(target)
	for hop := 0; ; hop++ {
		if hop > maxRedirects {
			return Match{}, fmt.Errorf("%w: last target %s", ErrRedirectLoop, path)
		}

		d := Decide(n.auth.Authenticated(), path)
		if d.Allowed() {
			break
		}
		n.logger.Info("Navigation redirected",
			zap.String("from", path),
			zap.String("to", d.Redirect()),
		)
		path = d.Redirect()
		args = nil
	}

	m, ok := Resolve(path)
	if !ok {
		return Match{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	h, ok := n.handlers[m.Page]
	if !ok {
		return m, fmt.Errorf("%w: %s", ErrNoHandler, m.Page)
	}
	return m, h(ctx, args)
}
