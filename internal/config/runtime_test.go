package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultRuntimeConfig(t *testing.T) {
	cfg := DefaultRuntimeConfig()

	if cfg.Editor.MaxHistory != 100 {
		t.Errorf("expected Editor.MaxHistory = 100, got %d", cfg.Editor.MaxHistory)
	}
	if cfg.Editor.Debounce != 100*time.Millisecond {
		t.Errorf("expected Editor.Debounce = 100ms, got %v", cfg.Editor.Debounce)
	}
	if cfg.Editor.FrameRate != 30 {
		t.Errorf("expected Editor.FrameRate = 30, got %v", cfg.Editor.FrameRate)
	}
	if cfg.Editor.DefaultLength != 120 {
		t.Errorf("expected Editor.DefaultLength = 120, got %d", cfg.Editor.DefaultLength)
	}
	if cfg.Storage.Path != "" || cfg.Storage.NoLock {
		t.Errorf("expected zero storage config, got %+v", cfg.Storage)
	}
}

func TestGlobalConfigExists(t *testing.T) {
	if Global == nil {
		t.Fatal("Global config should not be nil")
	}
}

func TestConfigReset(t *testing.T) {
	originalCfg := *Global
	defer func() { *Global = originalCfg }()

	Global.Editor.MaxHistory = 5
	Global.Reset()

	if Global.Editor.MaxHistory != 100 {
		t.Errorf("expected Editor.MaxHistory = 100 after reset, got %d", Global.Editor.MaxHistory)
	}
}

func TestConfigLoadFromEnv(t *testing.T) {
	t.Setenv("KEYLINE_MAX_HISTORY", "20")
	t.Setenv("KEYLINE_DEBOUNCE", "250ms")
	t.Setenv("KEYLINE_FRAME_RATE", "24")
	t.Setenv("KEYLINE_DEFAULT_LENGTH", "48")
	t.Setenv("KEYLINE_DB", "/tmp/keyline-db")

	cfg := DefaultRuntimeConfig()
	cfg.ReloadFromEnv()

	if cfg.Editor.MaxHistory != 20 {
		t.Errorf("expected MaxHistory = 20 from env, got %d", cfg.Editor.MaxHistory)
	}
	if cfg.Editor.Debounce != 250*time.Millisecond {
		t.Errorf("expected Debounce = 250ms from env, got %v", cfg.Editor.Debounce)
	}
	if cfg.Editor.FrameRate != 24 {
		t.Errorf("expected FrameRate = 24 from env, got %v", cfg.Editor.FrameRate)
	}
	if cfg.Editor.DefaultLength != 48 {
		t.Errorf("expected DefaultLength = 48 from env, got %d", cfg.Editor.DefaultLength)
	}
	if cfg.Storage.Path != "/tmp/keyline-db" {
		t.Errorf("expected Storage.Path from env, got %q", cfg.Storage.Path)
	}
}

func TestConfigLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("KEYLINE_DEBOUNCE", "invalid")
	t.Setenv("KEYLINE_MAX_HISTORY", "not-a-number")

	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()

	if cfg.Editor.Debounce != 100*time.Millisecond {
		t.Errorf("expected Debounce = 100ms (default), got %v", cfg.Editor.Debounce)
	}
	if cfg.Editor.MaxHistory != 100 {
		t.Errorf("expected MaxHistory = 100 (default), got %d", cfg.Editor.MaxHistory)
	}
}

func TestValidateClamps(t *testing.T) {
	cfg := &RuntimeConfig{Editor: EditorConfig{
		MaxHistory:    -1,
		Debounce:      time.Minute,
		FrameRate:     1000,
		DefaultLength: 0,
	}}
	cfg.Validate()

	if cfg.Editor.MaxHistory != 100 {
		t.Errorf("expected negative MaxHistory to fall back to 100, got %d", cfg.Editor.MaxHistory)
	}
	if cfg.Editor.Debounce != MaxDebounce {
		t.Errorf("expected Debounce clamped to %v, got %v", MaxDebounce, cfg.Editor.Debounce)
	}
	if cfg.Editor.FrameRate != MaxFrameRate {
		t.Errorf("expected FrameRate clamped to %v, got %v", MaxFrameRate, cfg.Editor.FrameRate)
	}
	if cfg.Editor.DefaultLength != 120 {
		t.Errorf("expected DefaultLength = 120, got %d", cfg.Editor.DefaultLength)
	}

	cfg.Editor.MaxHistory = MaxHistoryLimit + 1
	cfg.Validate()
	if cfg.Editor.MaxHistory != MaxHistoryLimit {
		t.Errorf("expected MaxHistory clamped to %d, got %d", MaxHistoryLimit, cfg.Editor.MaxHistory)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "editor:\n  max_history: 50\n  debounce: 40ms\nstorage:\n  no_lock: true\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KEYLINE_MAX_HISTORY", "")
	t.Setenv("KEYLINE_DEBOUNCE", "60ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Editor.MaxHistory != 50 {
		t.Errorf("expected MaxHistory = 50 from file, got %d", cfg.Editor.MaxHistory)
	}
	if cfg.Editor.Debounce != 60*time.Millisecond {
		t.Errorf("expected env to override file debounce, got %v", cfg.Editor.Debounce)
	}
	if cfg.Editor.FrameRate != 30 {
		t.Errorf("expected FrameRate default kept, got %v", cfg.Editor.FrameRate)
	}
	if !cfg.Storage.NoLock {
		t.Error("expected Storage.NoLock from file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Editor.MaxHistory <= 0 {
		t.Errorf("expected defaults, got %+v", cfg.Editor)
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("editor: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.HasPrefix(err.Error(), "parse config "+path+": ") {
		t.Errorf("expected the path in the error, got %q", err.Error())
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	cfg.Editor.Debounce = 250 * time.Millisecond
	cfg.Storage.Path = "/tmp/clips"

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	loaded := DefaultRuntimeConfig()
	if err := loaded.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Editor.Debounce != cfg.Editor.Debounce {
		t.Errorf("expected debounce %v, got %v", cfg.Editor.Debounce, loaded.Editor.Debounce)
	}
	if loaded.Storage.Path != "/tmp/clips" {
		t.Errorf("expected storage path kept, got %q", loaded.Storage.Path)
	}
}

func TestLogConfig(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	if cfg.Log.Level != "warn" || cfg.Log.MaxSize != 5<<20 || cfg.Log.File != "" {
		t.Errorf("unexpected default log config %+v", cfg.Log)
	}

	t.Setenv("KEYLINE_LOG_FILE", "/tmp/keyline.log")
	t.Setenv("KEYLINE_LOG_LEVEL", "loud")
	cfg.ReloadFromEnv()
	if cfg.Log.File != "/tmp/keyline.log" {
		t.Errorf("expected log file from env, got %q", cfg.Log.File)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected unknown level to fall back to warn, got %q", cfg.Log.Level)
	}

	cfg.Log.MaxSize = -1
	cfg.Validate()
	if cfg.Log.MaxSize != 5<<20 {
		t.Errorf("expected MaxSize default, got %d", cfg.Log.MaxSize)
	}
}
