// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"strings"
	"testing"
)

// clearEnv blanks every variable Load reads so tests see pure defaults.
// t.Setenv restores the originals afterwards, and envOrDefault treats the
// empty string as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_HOST", "APP_PORT", "APP_ENV",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Env != "development" {
		t.Errorf("Env: got %q, want development", cfg.Env)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr: got %q, want 0.0.0.0:8080", cfg.Addr())
	}
	if cfg.DBName != "blogpress" {
		t.Errorf("DBName: got %q, want blogpress", cfg.DBName)
	}
	if !cfg.IsDev() {
		t.Error("IsDev should be true by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("VALKEY_HOST", "valkey.internal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port: got %q, want 9090", cfg.Port)
	}
	if cfg.DBHost != "db.internal" {
		t.Errorf("DBHost: got %q, want db.internal", cfg.DBHost)
	}
	if cfg.ValkeyAddr() != "valkey.internal:6379" {
		t.Errorf("ValkeyAddr: got %q, want valkey.internal:6379", cfg.ValkeyAddr())
	}
}

func TestLoad_ProductionRequiresPassword(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Error("expected an error for production with the default password")
	}

	t.Setenv("POSTGRES_PASSWORD", "real-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with password: %v", err)
	}
	if cfg.IsDev() {
		t.Error("IsDev should be false in production")
	}
}

func TestDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")
	t.Setenv("POSTGRES_HOST", "h")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_DB", "d")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	dsn := cfg.DSN()
	want := "postgres://u:p@h:5433/d?sslmode=disable"
	if dsn != want {
		t.Errorf("DSN: got %q, want %q", dsn, want)
	}
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Errorf("DSN should use the postgres scheme: %q", dsn)
	}
}
