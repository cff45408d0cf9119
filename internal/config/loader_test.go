package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nrepos_dir: /tmp/r\nlog_level: debug\ncors_origins: [a, b]\ntrain_timeout: 90s\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.ReposDir != "/tmp/r" || cfg.LogLevel != "debug" || len(cfg.CORSOrigins) != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.TrainTimeout.Std() != 90*time.Second {
		t.Fatalf("train_timeout=%v", cfg.TrainTimeout.Std())
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","repos_dir":"/m","max_body_bytes":42,"drain_timeout":"2s"}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.ReposDir != "/m" || cfg.MaxBodyBytes != 42 || cfg.DrainTimeout.Std() != 2*time.Second {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nrepos_dir=\"/x\"\nmax_queue_depth=9\nmax_wait=\"1m\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.ReposDir != "/x" || cfg.MaxQueueDepth != 9 || cfg.MaxWait.Std() != time.Minute {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	p = writeTempFile(t, d, "bad.yaml", "train_timeout: soon\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected duration error")
	}
	if _, err := Load(filepath.Join(d, "missing.json")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestEnvOverlay(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nrepos_dir: /from/file\n")
	t.Setenv("MLSERVED_ADDR", ":1234")
	t.Setenv("MLSERVED_CORS_ORIGINS", "x.com,y.com")
	t.Setenv("MLSERVED_TRAIN_TIMEOUT", "3s")
	cfg, err := Resolve(p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Addr != ":1234" {
		t.Fatalf("env did not override addr: %s", cfg.Addr)
	}
	if cfg.ReposDir != "/from/file" {
		t.Fatalf("unset env clobbered repos_dir: %s", cfg.ReposDir)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "y.com" {
		t.Fatalf("cors origins=%v", cfg.CORSOrigins)
	}
	if cfg.TrainTimeout.Std() != 3*time.Second {
		t.Fatalf("train_timeout=%v", cfg.TrainTimeout.Std())
	}
}

func TestResolveDefaultsAndValidate(t *testing.T) {
	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Addr != DefaultAddr || cfg.LogFormat != DefaultLogFormat || cfg.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.DrainTimeout.Std() != DefaultDrainTimeout {
		t.Fatalf("drain_timeout=%v", cfg.DrainTimeout.Std())
	}
	t.Setenv("MLSERVED_LOG_FORMAT", "xml")
	if _, err := Resolve(""); err == nil {
		t.Fatalf("expected invalid log format")
	}
}
