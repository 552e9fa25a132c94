package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadConfig_MergesEnvOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "api:\n  base_url: http://localhost:8000\n  timeout_ms: 15000\nlog:\n  level: info\n")
	writeFile(t, dir, "production.yaml", "api:\n  base_url: https://relay.example.com\n")

	raw, err := LoadConfig("production", dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	api, ok := raw["api"].(map[string]interface{})
	if !ok {
		t.Fatalf("api section missing: %#v", raw)
	}
	if api["base_url"] != "https://relay.example.com" {
		t.Fatalf("base_url = %v", api["base_url"])
	}
	if api["timeout_ms"] != 15000 {
		t.Fatalf("timeout_ms should survive merge, got %v", api["timeout_ms"])
	}
}

func TestLoadConfig_MissingBaseIsEmpty(t *testing.T) {
	raw, err := LoadConfig("local", t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(raw) != 0 {
		t.Fatalf("expected empty config, got %#v", raw)
	}
}

func TestLoadConfig_SubstitutesPlaceholders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "storage:\n  redis:\n    password: ${REDIS_SECRET}\n    addr: ${RELAY_TEST_REDIS_HOST}:6379\n")
	writeFile(t, dir, "secrets.env", "# comment\nREDIS_SECRET=\"s3cret\"\nRELAY_TEST_REDIS_HOST=from-file\n")
	t.Setenv("RELAY_TEST_REDIS_HOST", "from-env")

	raw, err := LoadConfig("", dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	var out struct {
		Storage struct {
			Redis RedisConfig `yaml:"redis"`
		} `yaml:"storage"`
	}
	if err := Decode(raw, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Storage.Redis.Password != "s3cret" {
		t.Fatalf("password = %q", out.Storage.Redis.Password)
	}
	if out.Storage.Redis.Addr != "from-env:6379" {
		t.Fatalf("process env should win over secrets.env, got %q", out.Storage.Redis.Addr)
	}
}

func TestDecode_KeepsDefaults(t *testing.T) {
	out := struct {
		Level string `yaml:"level"`
		Addr  string `yaml:"addr"`
	}{Level: "warn", Addr: ":5173"}

	if err := Decode(map[string]interface{}{"addr": ":8080"}, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Level != "warn" || out.Addr != ":8080" {
		t.Fatalf("unexpected result: %+v", out)
	}
}
