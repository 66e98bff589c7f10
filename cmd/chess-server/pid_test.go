package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestWritePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")

	p, err := writePIDFile(path, true)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSpace(string(data)) != strconv.Itoa(os.Getpid()) {
		t.Fatalf("unexpected PID file contents %q", data)
	}

	p.Release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("PID file not removed")
	}
}

func TestWritePIDFileReusesStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")
	// PIDs this large are never handed out on Linux
	if err := os.WriteFile(path, []byte("99999999\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := writePIDFile(path, true)
	if err != nil {
		t.Fatalf("stale PID file should be reused: %v", err)
	}
	p.Release()
}

func TestWritePIDFileCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")
	if err := os.WriteFile(path, []byte("not-a-pid"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := writePIDFile(path, true); err == nil {
		t.Fatalf("expected error for corrupted PID file")
	}
}
