package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"expensebook/internal/config"
	"expensebook/internal/storage"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, &buf)
	if err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("visible")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"visible"`) {
		t.Errorf("unexpected log output: %s", out)
	}

	if _, err := SetupLogger(&config.Config{LogLevel: "loud"}, &buf); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("EXPENSEBOOK_TEST_ENV=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EXPENSEBOOK_TEST_ENV", "")
	os.Unsetenv("EXPENSEBOOK_TEST_ENV")

	LoadEnvFile(path)
	if got := os.Getenv("EXPENSEBOOK_TEST_ENV"); got != "loaded" {
		t.Errorf("EXPENSEBOOK_TEST_ENV = %q, want loaded", got)
	}

	// a missing file is ignored
	LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EXPENSEBOOK_CURRENCY", "ZZZ")
	if _, err := LoadAndValidateConfig(viper.New(), ""); err == nil {
		t.Error("expected validation error for unknown currency")
	}

	t.Setenv("EXPENSEBOOK_CURRENCY", "EUR")
	cfg, err := LoadAndValidateConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("LoadAndValidateConfig() error = %v", err)
	}
	if cfg.Currency != "EUR" {
		t.Errorf("Currency = %v, want EUR", cfg.Currency)
	}
}

func TestOpenBackend(t *testing.T) {
	cfg := &config.Config{
		StorageBackend: "sqlite",
		StoragePath:    filepath.Join(t.TempDir(), "nested", "book.db"),
		CacheSize:      4,
		CacheTTL:       time.Minute,
	}
	res, err := OpenBackend(context.Background(), nil, cfg)
	if err != nil {
		t.Fatalf("OpenBackend() error = %v", err)
	}
	defer res.Cleanup()

	if _, ok := res.KV.(*storage.CachedKV); !ok {
		t.Errorf("expected a cached store, got %T", res.KV)
	}
	if _, err := os.Stat(cfg.StoragePath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestStyles(t *testing.T) {
	for _, s := range []string{Success("ok"), Warning("careful"), Error("bad"), Title("T"), Subtle("s")} {
		if s == "" {
			t.Error("styled output should not be empty")
		}
	}
	if !strings.Contains(Success("saved"), "saved") {
		t.Error("Success should keep the message")
	}
}
