package authstore

import (
	"context"
	"errors"
)

// TokenKey 持久化存储中 token 的键名
const TokenKey = "token"

// ErrNotFound 键不存在
var ErrNotFound = errors.New("authstore: key not found")

// Storage 持久化的键值存储，对应浏览器 localStorage
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}
