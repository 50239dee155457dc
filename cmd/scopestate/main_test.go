package main

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/abhisheknishant138/scope/internal/config"
	"github.com/abhisheknishant138/scope/internal/errors"
	"github.com/abhisheknishant138/scope/pkg/urlcodec"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"initial", []string{"encode"}, `{}`, "/state/{}\n"},
		{"selected node", []string{"encode"}, `{"selectedNodeId":"n1"}`, `/state/{"selectedNodeId":"n1"}` + "\n"},
		{"escaped", []string{"encode", "--escaped"}, `{"selectedNodeId":"n1"}`, "/state/%7B%22selectedNodeId%22:%22n1%22%7D\n"},
		{"with state", []string{"encode", "--state"}, `{"searchQuery":"a/b"}`, `{"searchQuery":"a/b"}` + "\n" + `/state/{"searchQuery":"a<SLASH>b"}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeCommandFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	if err := os.WriteFile(path, []byte(`{"currentTopologyId":"hosts"}`), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := execute(t, "", "encode", path)
	if err != nil {
		t.Fatal(err)
	}
	if got != `/state/{"topologyId":"hosts"}`+"\n" {
		t.Errorf("output = %q", got)
	}
}

func TestEncodeCommandBadInput(t *testing.T) {
	_, err := execute(t, "not json", "encode")
	if errors.Code(err) != "E102" {
		t.Errorf("error = %v, want E102", err)
	}
	if stderrors.Is(err, urlcodec.ErrMalformedState) {
		t.Error("invalid input reported as a malformed view state")
	}
}

func TestDecodeCommand(t *testing.T) {
	want := `{"selectedNodeId":"n1"}` + "\n"
	for _, arg := range []string{
		`/state/{"selectedNodeId":"n1"}`,
		"/state/%7B%22selectedNodeId%22:%22n1%22%7D",
		`#!/state/{"selectedNodeId":"n1"}`,
		`#!/{"selectedNodeId":"n1"}`,
		`{"selectedNodeId":"n1"}`,
	} {
		t.Run(arg, func(t *testing.T) {
			got, err := execute(t, "", "decode", arg)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if got != want {
				t.Errorf("output = %q, want %q", got, want)
			}
		})
	}
}

func TestDecodeCommandApp(t *testing.T) {
	got, err := execute(t, "", "decode", "--app", `{"searchQuery":"a<SLASH>b"}`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `"searchQuery": "a/b"`) {
		t.Errorf("output = %s, want restored search query", got)
	}
}

func TestDecodeCommandMalformed(t *testing.T) {
	_, err := execute(t, "", "decode", "/state/{oops")
	if err == nil || !strings.Contains(err.Error(), "E100") {
		t.Errorf("error = %v, want E100", err)
	}
}

func TestVersionCommand(t *testing.T) {
	got, err := execute(t, "", "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if want := currentBuildInfo().Version + "\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestVersionCommandFormats(t *testing.T) {
	info := currentBuildInfo()

	got, err := execute(t, "", "version", "--output", "json")
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON buildInfo
	if err := json.Unmarshal([]byte(got), &fromJSON); err != nil {
		t.Fatalf("json output %q: %v", got, err)
	}
	if diff := cmp.Diff(info, fromJSON); diff != "" {
		t.Errorf("json (-want +got):\n%s", diff)
	}

	got, err = execute(t, "", "version", "-o", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML buildInfo
	if err := yaml.Unmarshal([]byte(got), &fromYAML); err != nil {
		t.Fatalf("yaml output %q: %v", got, err)
	}
	if diff := cmp.Diff(info, fromYAML); diff != "" {
		t.Errorf("yaml (-want +got):\n%s", diff)
	}

	got, err = execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "State prefix: "+urlcodec.StatePrefix) {
		t.Errorf("text output missing state prefix:\n%s", got)
	}

	if _, err := execute(t, "", "version", "-o", "toml"); err == nil {
		t.Error("unknown output format accepted")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Address() != "localhost:4040" {
		t.Errorf("Address() = %q", cfg.Address())
	}
}

func TestNewServerWiring(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scope.json")
	if err := os.WriteFile(path, []byte(`{"persistence":{"enabled":true,"backend":"bolt"},"metrics":{"enabled":true}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	srv, cleanup, err := newServer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	defer cleanup()

	if _, err := os.Stat(filepath.Join(dir, "scope.db")); err != nil {
		t.Errorf("bolt file not created: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + urlcodec.EscapedStatePath(`{"topologyId":"hosts"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET state path = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("metrics endpoint missing Go collector output")
	}
}
