package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	_, err := Load("/nonexistent/path/contactdb.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent path")
	}
	// Load with empty path uses default search (may use defaults if no config file)
	cfg, _ := Load("")
	if cfg.Server.Addr != ":8080" {
		t.Errorf("default addr: got %s", cfg.Server.Addr)
	}
	if cfg.Server.TCPAddr != ":9090" {
		t.Errorf("default tcp_addr: got %s", cfg.Server.TCPAddr)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("default backend: got %s", cfg.Storage.Backend)
	}
	if !cfg.Index.NamePrefix || !cfg.Index.PhonePrefix {
		t.Errorf("default index flags: got %+v", cfg.Index)
	}
	if !cfg.Storage.Journal || !cfg.Storage.SaveOnClose {
		t.Errorf("default storage flags: got %+v", cfg.Storage)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	content := `
server:
  addr: ":9000"
  tcp_addr: ":9001"
storage:
  path: "test_data"
  backend: "JSON"
  journal: false
index:
  name_prefix: false
  phone_prefix: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr: got %s", cfg.Server.Addr)
	}
	if cfg.Storage.Path != "test_data" {
		t.Errorf("path: got %s", cfg.Storage.Path)
	}
	if cfg.Storage.Backend != BackendJSON {
		t.Errorf("backend: got %s", cfg.Storage.Backend)
	}
	if cfg.Storage.Journal {
		t.Errorf("journal: expected false")
	}
	if !cfg.Storage.SaveOnClose {
		t.Errorf("save_on_close: expected default true to survive")
	}
	if cfg.Index.NamePrefix || !cfg.Index.PhonePrefix {
		t.Errorf("index: got %+v", cfg.Index)
	}
}

func TestUnknownBackendFallsBackToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: redis\n  path: \"\"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("backend: got %s", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != "contact_data" {
		t.Errorf("path: got %q", cfg.Storage.Path)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadCheckpointSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	content := `
storage:
  checkpoint_bytes: 4096
  checkpoint_interval: 250ms
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.CheckpointBytes != 4096 {
		t.Errorf("checkpoint_bytes: got %d", cfg.Storage.CheckpointBytes)
	}
	if cfg.Storage.CheckpointInterval != 250*time.Millisecond {
		t.Errorf("checkpoint_interval: got %v", cfg.Storage.CheckpointInterval)
	}
}
