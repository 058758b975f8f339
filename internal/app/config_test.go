package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Fatalf("port: want=5000 got=%d", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != 24*time.Hour {
		t.Fatalf("ttl: got=%s", cfg.Auth.AccessTokenTTL)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Fatalf("driver: got=%s", cfg.DB.Driver)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  cors_origins: ["https://app.webotixs.com"]
auth:
  jwt_secret: from-file
  access_token_ttl: 2h
db:
  driver: postgres
  host: db.internal
`)
	t.Setenv("AUTH_JWT_SECRET", "from-env")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port: got=%d", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://app.webotixs.com" {
		t.Fatalf("cors: got=%v", cfg.Server.CORSOrigins)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("env must override file: got=%s", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.AccessTokenTTL != 2*time.Hour {
		t.Fatalf("ttl: got=%s", cfg.Auth.AccessTokenTTL)
	}
	if cfg.DB.Host != "db.internal" || cfg.DB.Port != 5432 {
		t.Fatalf("db: got=%+v", cfg.DB)
	}
	if got := cfg.RedisBus(); got.Addr != "redis:6379" || got.Channel == "" {
		t.Fatalf("redis: got=%+v", got)
	}
}

func TestValidateRejectsWeakProductionSecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Mode = "production"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Fatalf("expected jwt_secret error, got=%v", err)
	}

	cfg.Auth.JWTSecret = strings.Repeat("s", 32)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("strong secret: %v", err)
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DB.Driver = "mysql"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected driver error")
	}
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		"SERVER_SHUTDOWN_TIMEOUT": "server.shutdown_timeout",
		"DB_MAX_OPEN_CONNS":       "db.max_open_conns",
		"HOME":                    "_env.home",
		"PATH_EXTRA":              "_env.path_extra",
	}
	for in, want := range cases {
		if got := envKey(in); got != want {
			t.Fatalf("envKey(%s): want=%s got=%s", in, want, got)
		}
	}
}
