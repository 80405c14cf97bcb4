package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingWriterBasicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}

	msg := []byte("hello\n")
	n, err := rw.Write(msg)
	if err != nil || n != len(msg) {
		t.Fatalf("Write = (%d, %v), want (%d, nil)", n, err, len(msg))
	}
	if rw.CurrentSize() != int64(len(msg)) {
		t.Errorf("CurrentSize = %d, want %d", rw.CurrentSize(), len(msg))
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(data, msg) {
		t.Errorf("file contents = %q, want %q", data, msg)
	}
}

func TestRotatingWriterAppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	if err := os.WriteFile(path, []byte("old\n"), 0644); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	if rw.CurrentSize() != 4 {
		t.Errorf("CurrentSize = %d, want 4", rw.CurrentSize())
	}
	rw.Write([]byte("new\n"))
	rw.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "old\nnew\n" {
		t.Errorf("contents = %q, want %q", data, "old\nnew\n")
	}
}

// smallWriter returns a writer with a tiny limit so tests can force
// rotation without writing megabytes.
func smallWriter(t *testing.T, dir string, backups int) *RotatingWriter {
	t.Helper()
	rw, err := NewRotatingWriter(filepath.Join(dir, "server.log"), RotationConfig{MaxBackups: backups})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.maxBytes = 100
	return rw
}

func TestRotation(t *testing.T) {
	dir := t.TempDir()
	rw := smallWriter(t, dir, 3)

	line := bytes.Repeat([]byte("x"), 60)
	rw.Write(line) // 60 bytes
	rw.Write(line) // would be 120: rotates first
	rw.Close()

	if _, err := os.Stat(filepath.Join(dir, "server.log.1")); err != nil {
		t.Fatalf("expected backup after rotation: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "server.log"))
	if len(data) != 60 {
		t.Errorf("current file has %d bytes, want 60", len(data))
	}
}

func TestRotationDropsOldest(t *testing.T) {
	dir := t.TempDir()
	rw := smallWriter(t, dir, 2)

	line := bytes.Repeat([]byte("x"), 60)
	for i := 0; i < 5; i++ {
		rw.Write(line)
	}
	rw.Close()

	if _, err := os.Stat(filepath.Join(dir, "server.log.1")); err != nil {
		t.Error("expected backup .1")
	}
	if _, err := os.Stat(filepath.Join(dir, "server.log.2")); err != nil {
		t.Error("expected backup .2")
	}
	if _, err := os.Stat(filepath.Join(dir, "server.log.3")); err == nil {
		t.Error("backup .3 should have been dropped with MaxBackups=2")
	}
}

func TestRotationZeroBackups(t *testing.T) {
	dir := t.TempDir()
	rw := smallWriter(t, dir, 0)

	line := bytes.Repeat([]byte("x"), 60)
	rw.Write(line)
	rw.Write(line)
	rw.Close()

	if _, err := os.Stat(filepath.Join(dir, "server.log.1")); err == nil {
		t.Error("no backups should be kept with MaxBackups=0")
	}
}

func TestRotationDisabled(t *testing.T) {
	dir := t.TempDir()
	rw, err := NewRotatingWriter(filepath.Join(dir, "server.log"), RotationConfig{MaxSizeMB: 0})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}

	rw.Write(bytes.Repeat([]byte("x"), 4096))
	rw.Close()

	if _, err := os.Stat(filepath.Join(dir, "server.log.1")); err == nil {
		t.Error("rotation should be disabled with MaxSizeMB=0")
	}
}

func TestWriteAfterClose(t *testing.T) {
	dir := t.TempDir()
	rw, err := NewRotatingWriter(filepath.Join(dir, "server.log"), DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.Close()

	if _, err := rw.Write([]byte("late\n")); err == nil {
		t.Error("expected error writing to closed writer")
	}
	// Double close is a no-op.
	if err := rw.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
