// Package archive reads and writes the compressed tar archives used by APG
// packages and backup records. Extraction detects the compression format from
// magic bytes (xz, gzip, zstd); backups are always written as tar.xz.
package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

var (
	magicXZ   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// newDecompressor wraps r in a decompressing reader chosen by sniffing the
// stream's magic bytes. Unrecognized input is returned as-is (plain tar).
func newDecompressor(r *bufio.Reader) (io.Reader, error) {
	peek, err := r.Peek(6)
	if err != nil && len(peek) < 2 {
		return nil, fmt.Errorf("failed to read archive header: %w", err)
	}

	switch {
	case bytes.HasPrefix(peek, magicXZ):
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open xz stream: %w", err)
		}
		return xr, nil
	case bytes.HasPrefix(peek, magicGzip):
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return gr, nil
	case bytes.HasPrefix(peek, magicZstd):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return r, nil
	}
}

// Extract unpacks the archive at archivePath into destDir, creating destDir
// if needed. Entry paths are confined to destDir; entries that would escape
// it are rejected.
func Extract(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	dr, err := newDecompressor(bufio.NewReader(f))
	if err != nil {
		return err
	}

	tr := tar.NewReader(dr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive entry: %w", err)
		}

		target, err := securePath(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return fmt.Errorf("failed to extract %s: %w", hdr.Name, err)
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create parent for %s: %w", hdr.Name, err)
			}
			os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return fmt.Errorf("failed to create symlink %s: %w", hdr.Name, err)
			}
		default:
			// Hard links, devices and other entry types are not part of the
			// package format; skip them.
		}
	}
}

// securePath joins name onto destDir and verifies the result stays inside it.
func securePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.Clean(name))
	if target != destDir && !strings.HasPrefix(target, destDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination directory", name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

// Writer produces a tar.xz archive, one file at a time.
type Writer struct {
	f  *os.File
	xw *xz.Writer
	tw *tar.Writer
}

// NewWriter creates the archive file at path, truncating any existing file.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	xw, err := xz.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create xz writer: %w", err)
	}

	return &Writer{
		f:  f,
		xw: xw,
		tw: tar.NewWriter(xw),
	}, nil
}

// AddFile stores the regular file at src under the given archive name,
// preserving mode and modification time.
func (w *Writer) AddFile(src, name string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to build header for %s: %w", src, err)
	}
	hdr.Name = name

	if err := w.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", name, err)
	}

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer f.Close()

	if _, err := io.Copy(w.tw, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}

// Close flushes the tar and xz streams and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.tw.Close(); err != nil {
		w.xw.Close()
		w.f.Close()
		return fmt.Errorf("failed to close tar stream: %w", err)
	}
	if err := w.xw.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("failed to close xz stream: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return nil
}
