package config

import (
	"os"
	"strconv"
)

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ServerConfig 监听配置
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// OverrideRedisFromEnv 从环境变量覆盖Redis配置
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.DB = n
		}
	}
}

// OverrideServerFromEnv 从环境变量覆盖监听配置
func OverrideServerFromEnv(prefix string, cfg *ServerConfig) {
	if addr := os.Getenv(prefix + "_ADDR"); addr != "" {
		cfg.Addr = addr
	}
}

// OverrideLogFromEnv 从环境变量覆盖日志配置
func OverrideLogFromEnv(cfg *LogConfig) {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = level
	}
	if dev := os.Getenv("LOG_DEVELOPMENT"); dev != "" {
		if b, err := strconv.ParseBool(dev); err == nil {
			cfg.Development = b
		}
	}
}
