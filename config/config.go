package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	pkgconfig "relayconsole/pkg/config"
)

// 存储后端
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type APIConfig struct {
	BaseURL  string `yaml:"base_url"`
	BasePath string `yaml:"base_path"`
	// TimeoutMS 单次请求超时（毫秒）
	TimeoutMS int `yaml:"timeout_ms"`
	// DeadLetterPrefix 死信与 QQ 调试接口额外的路径前缀
	DeadLetterPrefix string `yaml:"deadletter_prefix"`
}

func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

type StorageConfig struct {
	Driver    string                `yaml:"driver"`
	Path      string                `yaml:"path"`
	KeyPrefix string                `yaml:"key_prefix"`
	Redis     pkgconfig.RedisConfig `yaml:"redis"`
}

type ProxyConfig struct {
	Server      pkgconfig.ServerConfig `yaml:"server"`
	Target      string                 `yaml:"target"`
	StripPrefix string                 `yaml:"strip_prefix"`
	StaticDir   string                 `yaml:"static_dir"`
	Metrics     bool                   `yaml:"metrics"`
}

type Config struct {
	API     APIConfig           `yaml:"api"`
	Storage StorageConfig       `yaml:"storage"`
	Proxy   ProxyConfig         `yaml:"proxy"`
	Log     pkgconfig.LogConfig `yaml:"log"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:          "http://localhost:5173",
			BasePath:         "/api",
			TimeoutMS:        15000,
			DeadLetterPrefix: "/api",
		},
		Storage: StorageConfig{
			Driver:    StorageFile,
			Path:      defaultStatePath(),
			KeyPrefix: "relayconsole:",
			Redis:     pkgconfig.RedisConfig{Addr: "localhost:6379"},
		},
		Proxy: ProxyConfig{
			Server:      pkgconfig.ServerConfig{Addr: ":5173"},
			Target:      "http://backend:8000",
			StripPrefix: "/api",
			Metrics:     true,
		},
		Log: pkgconfig.LogConfig{Level: "warn", Development: true},
	}
}

// Load 按 base.yaml -> <env>.yaml -> secrets.env -> 环境变量 的顺序加载配置
func Load(env, dir string) (*Config, error) {
	cfg := Default()

	raw, err := pkgconfig.LoadConfig(env, dir)
	if err != nil {
		return nil, err
	}
	if err := pkgconfig.Decode(raw, cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖
	overrideFromEnv(cfg)
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if url := os.Getenv("RELAY_API_BASE_URL"); url != "" {
		cfg.API.BaseURL = url
	}
	if ms := os.Getenv("RELAY_API_TIMEOUT_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n > 0 {
			cfg.API.TimeoutMS = n
		}
	}
	if driver := os.Getenv("RELAY_STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if path := os.Getenv("RELAY_STORAGE_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if target := os.Getenv("RELAY_PROXY_TARGET"); target != "" {
		cfg.Proxy.Target = target
	}
	pkgconfig.OverrideServerFromEnv("RELAY_PROXY", &cfg.Proxy.Server)
	pkgconfig.OverrideRedisFromEnv(&cfg.Storage.Redis)
	pkgconfig.OverrideLogFromEnv(&cfg.Log)
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "relayconsole.yaml"
	}
	return filepath.Join(dir, "relayconsole", "state.yaml")
}
