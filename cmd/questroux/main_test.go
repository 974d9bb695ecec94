package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/questroux/engine"
	"github.com/nathoo/questroux/notify"
)

var (
	_ engine.Logger = (*runtimeLogger)(nil)
	_ notify.Logger = (*runtimeLogger)(nil)
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// testConfig writes a config that points at the reference catalog and a
// store inside the test's temp dir.
func testConfig(t *testing.T, backend string) string {
	t.Helper()
	t.Setenv("QUESTROUX_DB_PATH", "")
	dir := t.TempDir()
	catalog, err := filepath.Abs(filepath.Join("..", "..", "catalogs", "roux"))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, `
[catalog]
dir = "`+filepath.ToSlash(catalog)+`"

[storage]
backend = "`+backend+`"
path = "`+filepath.ToSlash(filepath.Join(dir, "state", "progress.db"))+`"

[engine]
scan_delay = "0s"
`)
	return path
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"--version"}, nil, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "questroux dev (commit none") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	if err := run(context.Background(), []string{"--nope"}, nil, nil, nil); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}

func TestRun_ScriptPersistsAcrossRuns(t *testing.T) {
	for _, backend := range []string{"sqlite", "file"} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			script := filepath.Join(t.TempDir(), "walk.txt")
			writeFile(t, script, "# first stop\ncode q1 LIB123\nscan q2\n/quit\n")

			var out bytes.Buffer
			if err := run(context.Background(), []string{"--config", cfg, "--script", script}, nil, &out, nil); err != nil {
				t.Fatalf("run: %v", err)
			}
			got := out.String()
			for _, want := range []string{"QuestRouX", "+40 XP (total 40 XP)", "+40 XP (total 80 XP)"} {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}

			writeFile(t, script, "/state\n")
			out.Reset()
			if err := run(context.Background(), []string{"--config", cfg, "--script", script}, nil, &out, nil); err != nil {
				t.Fatalf("second run: %v", err)
			}
			if !strings.Contains(out.String(), "XP: 80") {
				t.Errorf("progress not restored:\n%s", out.String())
			}
		})
	}
}

func TestRun_PlainWhenNotATerminal(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	var out bytes.Buffer
	in := strings.NewReader("progress\n/quit\n")
	if err := run(context.Background(), []string{"--config", cfg}, in, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "XP: 0 / 200") {
		t.Errorf("expected progress output:\n%s", out.String())
	}
}

func TestRun_BadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "[storage]\nbackend = \"redis\"\n")

	err := run(context.Background(), []string{"--config", path}, nil, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "storage.backend") {
		t.Errorf("err = %v, want invalid backend", err)
	}
}

func TestRun_MissingScript(t *testing.T) {
	cfg := testConfig(t, "file")
	err := run(context.Background(), []string{"--config", cfg, "--script", filepath.Join(t.TempDir(), "none.txt")}, nil, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "open script") {
		t.Errorf("err = %v, want open script failure", err)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	got, err := loadConfig(cfg, "/tmp/other.db", "somewhere")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if got.Storage.Path != "/tmp/other.db" || got.Catalog.Dir != "somewhere" {
		t.Errorf("overrides not applied: %+v", got)
	}
}

func TestRun_CorruptSnapshotStillRuns(t *testing.T) {
	cfg := testConfig(t, "file")
	snapshot := filepath.Join(filepath.Dir(cfg), "state", "progress.db")
	if err := os.MkdirAll(filepath.Dir(snapshot), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, snapshot, "{not json")

	script := filepath.Join(t.TempDir(), "walk.txt")
	writeFile(t, script, "/state\ncode q1 LIB123\n")

	var out, errOut bytes.Buffer
	if err := run(context.Background(), []string{"--config", cfg, "--script", script}, nil, &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Available:", msgLoadFailed, "XP: 0", "+40 XP (total 40 XP)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if !strings.Contains(errOut.String(), "load progress") {
		t.Errorf("expected the load failure to be logged, got %q", errOut.String())
	}

	// The next save replaced the bad snapshot.
	writeFile(t, script, "/state\n")
	out.Reset()
	if err := run(context.Background(), []string{"--config", cfg, "--script", script}, nil, &out, nil); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(out.String(), "XP: 40") || strings.Contains(out.String(), msgLoadFailed) {
		t.Errorf("second run output:\n%s", out.String())
	}
}
