package authstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Store 会话是否已登录的唯一事实来源
// 内存中只有一个 token 字段，启动时从 Storage 读取一次
type Store struct {
	storage Storage

	mu    sync.RWMutex
	token string
}

// New 从 storage 读取 token；不存在时为空串（未登录）
func New(ctx context.Context, storage Storage) (*Store, error) {
	token, err := storage.Get(ctx, TokenKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return &Store{storage: storage, token: token}, nil
}

// Token returns the current token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// SetToken 同时覆盖内存与持久化存储
func (s *Store) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		return err
	}
	s.token = token
	return nil
}

// Logout 先删除持久化条目，成功后再清空内存
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Remove(ctx, TokenKey); err != nil {
		return err
	}
	s.token = ""
	return nil
}

// Claims 解码当前 token 的 JWT claims，不校验签名
// 签名由后端校验，这里只用于展示
func (s *Store) Claims() (jwt.MapClaims, error) {
	token := s.Token()
	if token == "" {
		return nil, errors.New("authstore: not logged in")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("authstore: decode token: %w", err)
	}
	return claims, nil
}
