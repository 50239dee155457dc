package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisheknishant138/scope/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Persistence.Backend != DefaultBackend || !cfg.Persistence.Enabled {
		t.Errorf("Persistence = %+v, want enabled memory", cfg.Persistence)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if errors.Code(err) != "E141" {
		t.Errorf("missing config error = %v, want E141", err)
	}

	configJSON := `{
  "server": {"port": 8080, "host": "0.0.0.0"},
  "persistence": {"enabled": true, "backend": "bolt"},
  "log": {"level": "debug", "format": "json"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, "scope.json"), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Address() != "0.0.0.0:8080" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if cfg.Persistence.Path != "scope.db" {
		t.Errorf("Persistence.Path = %q, want scope.db default", cfg.Persistence.Path)
	}
	if cfg.StorePath() != filepath.Join(tmpDir, "scope.db") {
		t.Errorf("StorePath() = %q", cfg.StorePath())
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q", cfg.Metrics.Namespace)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `server:
  port: 9090
persistence:
  enabled: false
  backend: SQLite
  path: /var/lib/scope/state.sqlite
metrics:
  enabled: false
tracing:
  tracerName: scope-test
`
	if err := os.WriteFile(filepath.Join(tmpDir, "scope.yml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.Host != DefaultHost {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Persistence.Enabled || cfg.Persistence.Backend != "sqlite" {
		t.Errorf("Persistence = %+v", cfg.Persistence)
	}
	if cfg.StorePath() != "/var/lib/scope/state.sqlite" {
		t.Errorf("StorePath() = %q", cfg.StorePath())
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want false")
	}
	if cfg.Tracing.TracerName != "scope-test" {
		t.Errorf("TracerName = %q", cfg.Tracing.TracerName)
	}
}

func TestLoadPrefersJSON(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "scope.json"), []byte(`{"server":{"port":1111}}`), 0644)
	os.WriteFile(filepath.Join(tmpDir, "scope.yaml"), []byte("server:\n  port: 2222\n"), 0644)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 1111 {
		t.Errorf("Server.Port = %d, want 1111 from scope.json", cfg.Server.Port)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
	}{
		{"bad json", "scope.json", `{"server":`, "E140"},
		{"bad yaml", "scope.yaml", "server: [", "E140"},
		{"bad port", "scope.json", `{"server":{"port":70000}}`, "E142"},
		{"bad backend", "scope.json", `{"persistence":{"backend":"redis"}}`, "E142"},
		{"s3 without bucket", "scope.json", `{"persistence":{"backend":"s3"}}`, "E142"},
		{"bad level", "scope.json", `{"log":{"level":"loud"}}`, "E142"},
		{"bad format", "scope.json", `{"log":{"format":"xml"}}`, "E142"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, strings.ReplaceAll(tt.name, " ", "-")+"-"+tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			if errors.Code(err) != tt.wantCode {
				t.Errorf("LoadFile error = %v, want %s", err, tt.wantCode)
			}
		})
	}

	_, err := LoadFile(filepath.Join(tmpDir, "absent.json"))
	if errors.Code(err) != "E141" {
		t.Errorf("absent file error = %v, want E141", err)
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"out.json", "out.yaml"} {
		cfg := New()
		cfg.Server.Port = 5050
		cfg.Persistence.Backend = "bolt"

		path := filepath.Join(tmpDir, name)
		if err := cfg.SaveTo(path); err != nil {
			t.Fatalf("SaveTo(%s): %v", name, err)
		}
		if cfg.Path() != path {
			t.Errorf("Path() = %q, want %q", cfg.Path(), path)
		}

		loaded, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s): %v", name, err)
		}
		if loaded.Server.Port != 5050 || loaded.Persistence.Backend != "bolt" {
			t.Errorf("%s round trip = %+v", name, loaded)
		}
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log = LogConfig{Level: "warn", Format: "json"}

	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("output = %s, want JSON warn record", out)
	}
}
