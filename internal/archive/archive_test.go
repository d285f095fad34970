package archive

import (
	"archive/tar"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func TestWriterExtractRoundtrip(t *testing.T) {
	src := t.TempDir()

	files := map[string]string{
		"metadata.json":     `{"name":"demo","version":"1.0"}`,
		"data/usr/bin/demo": "#!/bin/sh\necho demo\n",
	}
	for name, content := range files {
		path := filepath.Join(src, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0755); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	archivePath := filepath.Join(t.TempDir(), "demo.apg")
	w, err := NewWriter(archivePath)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for name := range files {
		if err := w.AddFile(filepath.Join(src, name), name); err != nil {
			t.Fatalf("AddFile(%s): %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	dest := t.TempDir()
	if err := Extract(archivePath, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for name, want := range files {
		got, err := os.ReadFile(filepath.Join(dest, name))
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s content = %q, want %q", name, got, want)
		}
	}

	info, err := os.Stat(filepath.Join(dest, "data/usr/bin/demo"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm()&0100 == 0 {
		t.Errorf("executable bit not preserved: mode %v", info.Mode())
	}
}

func TestExtractGzip(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "pkg.apg")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)

	content := []byte("hello from gzip\n")
	if err := tw.WriteHeader(&tar.Header{
		Name: "hello.txt",
		Mode: 0644,
		Size: int64(len(content)),
	}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar Close: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file Close: %v", err)
	}

	dest := t.TempDir()
	if err := Extract(archivePath, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "hello.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestExtractZstd(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "pkg.apg")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	tw := tar.NewWriter(zw)

	content := []byte("hello from zstd\n")
	if err := tw.WriteHeader(&tar.Header{
		Name: "hello.txt",
		Mode: 0644,
		Size: int64(len(content)),
	}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar Close: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zstd Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file Close: %v", err)
	}

	dest := t.TempDir()
	if err := Extract(archivePath, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "hello.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestExtractPlainTar(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "pkg.tar")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tw := tar.NewWriter(f)

	content := []byte("plain tar\n")
	if err := tw.WriteHeader(&tar.Header{
		Name: "plain.txt",
		Mode: 0644,
		Size: int64(len(content)),
	}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file Close: %v", err)
	}

	dest := t.TempDir()
	if err := Extract(archivePath, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dest, "plain.txt")); err != nil {
		t.Errorf("plain.txt not extracted: %v", err)
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "evil.apg")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tw := tar.NewWriter(f)

	content := []byte("evil\n")
	if err := tw.WriteHeader(&tar.Header{
		Name: "../escape.txt",
		Mode: 0644,
		Size: int64(len(content)),
	}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file Close: %v", err)
	}

	parent := t.TempDir()
	dest := filepath.Join(parent, "dest")

	err = Extract(archivePath, dest)
	if err == nil {
		t.Fatal("expected error for path traversal entry")
	}
	if !strings.Contains(err.Error(), "escapes") {
		t.Errorf("error = %v, want mention of escaping entry", err)
	}

	if _, statErr := os.Stat(filepath.Join(parent, "escape.txt")); !os.IsNotExist(statErr) {
		t.Error("traversal entry was written outside destination")
	}
}

func TestExtractMissingArchive(t *testing.T) {
	err := Extract(filepath.Join(t.TempDir(), "nope.apg"), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing archive")
	}
}
