// Package resource maps the relay admin REST API onto typed Go calls.
// Every client is stateless: no caching, no retries, errors are returned
// unchanged from the HTTP client.
package resource

import (
	"context"
	"strings"
)

// Requester is the subset of *httpclient.Client the resource clients use.
type Requester interface {
	Get(ctx context.Context, path string, out interface{}) error
	Post(ctx context.Context, path string, body, out interface{}) error
	Put(ctx context.Context, path string, body, out interface{}) error
	Delete(ctx context.Context, path string, out interface{}) error
}

// DefaultDeadLetterPrefix 死信与 QQ 调试路由在后端挂载于 /api 之下，
// 而 HTTP client 的 base path 已经带有 /api，所以这里会出现 /api/api/...
const DefaultDeadLetterPrefix = "/api"

type Options struct {
	// DeadLetterPrefix 死信与 QQ 接口的额外前缀；nil 表示使用默认值
	DeadLetterPrefix *string
}

type Clients struct {
	Auth        *AuthClient
	Mappings    *MappingClient
	DeadLetters *DeadLetterClient
	System      *SystemClient
	QQ          *QQClient
}

func New(c Requester, opts Options) *Clients {
	prefix := DefaultDeadLetterPrefix
	if opts.DeadLetterPrefix != nil {
		prefix = "/" + strings.Trim(*opts.DeadLetterPrefix, "/")
		if prefix == "/" {
			prefix = ""
		}
	}
	return &Clients{
		Auth:        NewAuthClient(c),
		Mappings:    NewMappingClient(c),
		DeadLetters: NewDeadLetterClient(c, prefix),
		System:      NewSystemClient(c),
		QQ:          NewQQClient(c, prefix),
	}
}
