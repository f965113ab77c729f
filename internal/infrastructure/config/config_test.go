package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.StorageBackend != BackendMemory {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ProgramID != "7AwuU7HNHrE2GgS4tRdZLdnJmG4Pz5HjgDkd7fDVtoLK" {
		t.Fatalf("unexpected program id %q", cfg.ProgramID)
	}
	if cfg.ExecutorWorkers != 8 || cfg.ReplayTTL != 24*time.Hour {
		t.Fatalf("unexpected executor defaults: %+v", cfg)
	}
	if cfg.Mongo.Database != "userstats" || cfg.Redis.Addr != "localhost:6379" || cfg.SQLite.Path != "userstats.db" {
		t.Fatalf("unexpected backend defaults: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":              "production",
		"JWT_SECRET":       "s3cret",
		"STORAGE_BACKEND":  "redis",
		"REDIS_ADDR":       "cache:6380",
		"REDIS_DB":         "2",
		"EXECUTOR_WORKERS": "3",
		"REPLAY_TTL":       "5m",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageBackend != BackendRedis || cfg.Redis.Addr != "cache:6380" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected redis config: %+v", cfg)
	}
	if cfg.ExecutorWorkers != 3 || cfg.ReplayTTL != 5*time.Minute {
		t.Fatalf("unexpected executor config: %+v", cfg)
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]struct {
		env  map[string]string
		want string
	}{
		"unknown backend": {map[string]string{"STORAGE_BACKEND": "postgres"}, "STORAGE_BACKEND"},
		"bad program id":  {map[string]string{"PROGRAM_ID": "not-base58-0OIl"}, "PROGRAM_ID"},
		"zero workers":    {map[string]string{"EXECUTOR_WORKERS": "0"}, "EXECUTOR_WORKERS"},
		"missing secret":  {map[string]string{"ENV": "production"}, "JWT_SECRET"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}

func TestConfig_SigningSecret(t *testing.T) {
	dev := &Config{Env: "development"}
	if got := dev.SigningSecret(); got != DevJWTSecret {
		t.Fatalf("development should fall back to the dev secret, got %q", got)
	}

	dev.JWTSecret = "s3cret"
	if got := dev.SigningSecret(); got != "s3cret" {
		t.Fatalf("explicit secret must win, got %q", got)
	}

	prod := &Config{Env: "production"}
	if got := prod.SigningSecret(); got != "" {
		t.Fatalf("production must not fall back, got %q", got)
	}
}
