package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.StorageBackend != StorageMemory || cfg.AuthBackend != AuthPlaceholder {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SimulatedLatency != time.Second {
		t.Fatalf("expected 1s latency, got %s", cfg.SimulatedLatency)
	}
	if cfg.Mongo.Database != "helios" {
		t.Fatalf("expected helios database, got %s", cfg.Mongo.Database)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORAGE_BACKEND":   "redis",
		"SIMULATED_LATENCY": "0s",
		"COOKIE_SECURE":     "true",
		"REDIS_ADDR":        "cache:6379",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StorageBackend != StorageRedis || cfg.SimulatedLatency != 0 || !cfg.CookieSecure || cfg.Redis.Addr != "cache:6379" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORAGE_BACKEND": "etcd",
	}))
	if err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestLoad_ProductionNeedsSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV": "production",
	}))
	if err == nil {
		t.Fatalf("expected error without COOKIE_SECRET")
	}
}
