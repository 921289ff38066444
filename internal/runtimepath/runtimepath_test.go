package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir_UsesOverrideFirst(t *testing.T) {
	td := filepath.Join(t.TempDir(), "rt")
	t.Setenv(EnvDir, td)
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
	if info, err := os.Stat(td); err != nil || !info.IsDir() {
		t.Fatalf("override dir not created: %v", err)
	}
}

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv(EnvDir, "")
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv(EnvDir, "")
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/winstack-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketAndPIDPaths(t *testing.T) {
	t.Setenv(EnvDir, t.TempDir())

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if !strings.HasSuffix(socket, "/winstack.sock") {
		t.Fatalf("SocketPath() = %q, missing suffix", socket)
	}

	pid, err := PIDFilePath()
	if err != nil {
		t.Fatalf("PIDFilePath() error: %v", err)
	}
	if !strings.HasSuffix(pid, "/winstack.pid") {
		t.Fatalf("PIDFilePath() = %q, missing suffix", pid)
	}
}

func TestWritePID(t *testing.T) {
	t.Setenv(EnvDir, t.TempDir())

	release, err := WritePID()
	if err != nil {
		t.Fatalf("WritePID() error: %v", err)
	}
	path, _ := PIDFilePath()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("pid file missing: %v", err)
	}
	// Our own pid does not block a second write.
	if _, err := WritePID(); err != nil {
		t.Fatalf("second WritePID() error: %v", err)
	}
	release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("pid file not removed: %v", err)
	}
}
