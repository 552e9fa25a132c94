package authstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"relayconsole/config"
	redisclient "relayconsole/pkg/redis"
)

// OpenStorage 按配置选择存储后端
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", config.StorageFile:
		return NewFileStorage(cfg.Path)
	case config.StorageSQLite:
		path := sqlitePath(cfg.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("authstore: create state dir: %w", err)
		}
		return OpenSQLiteStorage(path)
	case config.StorageRedis:
		rdb, err := redisclient.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStorage(rdb, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("authstore: unknown storage driver %q", cfg.Driver)
	}
}

// sqlitePath 默认路径是给 file 后端的 state.yaml，切到 sqlite 时改用 .db
func sqlitePath(path string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ".yaml") || strings.EqualFold(ext, ".yml") {
		return strings.TrimSuffix(path, ext) + ".db"
	}
	return path
}
