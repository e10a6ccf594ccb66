package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigSaveAndLoad(t *testing.T) {
	// Use a temp dir as home
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg := CLIConfig{
		ServerURL:       "http://myhost:9090",
		Token:           "tok-123",
		SessionPath:     "/api/auth/me",
		RateLimitPerSec: 2.5,
		TimeoutSeconds:  10,
	}

	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(tmp, ".config", "rr", "config.yaml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not found: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config mode = %o, want 600", perm)
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestConfigLoadMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg != (CLIConfig{}) {
		t.Error("expected zero-value config for missing file")
	}
}

func TestConfigLoadInvalid(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	dir := filepath.Join(tmp, ".config", "rr")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server_url: [unclosed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetServerURL(t *testing.T) {
	tests := []struct {
		name string
		env  string
		cfg  CLIConfig
		want string
	}{
		{"env wins", "http://custom:1234", CLIConfig{ServerURL: "http://config:1"}, "http://custom:1234"},
		{"config", "", CLIConfig{ServerURL: "http://config:1"}, "http://config:1"},
		{"default", "", CLIConfig{}, DefaultServerURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RR_SERVER_URL", tt.env)
			if got := getServerURL(tt.cfg); got != tt.want {
				t.Errorf("url = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetCachePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Setenv("RR_CACHE_PATH", "/tmp/env.db")
	if p, _ := getCachePath(CLIConfig{CachePath: "/tmp/cfg.db"}); p != "/tmp/env.db" {
		t.Errorf("env path = %q", p)
	}

	t.Setenv("RR_CACHE_PATH", "")
	if p, _ := getCachePath(CLIConfig{CachePath: "/tmp/cfg.db"}); p != "/tmp/cfg.db" {
		t.Errorf("config path = %q", p)
	}

	p, err := getCachePath(CLIConfig{})
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if want := filepath.Join(home, ".config", "rr", "cache.db"); p != want {
		t.Errorf("default path = %q, want %q", p, want)
	}
}

func TestDebugFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"true", true},
		{"1", true},
		{"false", false},
		{"yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("RR_DEBUG", tt.value)
			if got := debugFromEnv(); got != tt.want {
				t.Errorf("debugFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFileCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RR_TOKEN", "")

	var creds fileCredentials
	if tok, err := creds.Load(); err != nil || tok != "" {
		t.Fatalf("initial load = %q, %v", tok, err)
	}

	if err := saveConfig(CLIConfig{ServerURL: "http://keep:1"}); err != nil {
		t.Fatalf("save config: %v", err)
	}
	if err := creds.Save("tok"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if tok, _ := creds.Load(); tok != "tok" {
		t.Errorf("token = %q, want tok", tok)
	}

	cfg, _ := loadConfig()
	if cfg.ServerURL != "http://keep:1" {
		t.Errorf("server_url lost on save: %q", cfg.ServerURL)
	}

	t.Setenv("RR_TOKEN", "env-tok")
	if tok, _ := creds.Load(); tok != "env-tok" {
		t.Errorf("env token = %q, want env-tok", tok)
	}
	t.Setenv("RR_TOKEN", "")

	if err := creds.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if tok, _ := creds.Load(); tok != "" {
		t.Errorf("token after clear = %q", tok)
	}
}
