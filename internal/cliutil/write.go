// Package cliutil provides utilities for CLI operations.
package cliutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StdinPath is the argument that selects standard input as the spec source.
const StdinPath = "-"

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil { //nolint:gosec // G705 - CLI tool, not a web server
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// DisplayPath returns "<stdin>" for StdinPath and path otherwise.
func DisplayPath(path string) string {
	if path == StdinPath {
		return "<stdin>"
	}
	return path
}

// ReadSpec reads the document named by path, or stdin when path is StdinPath.
// Inputs larger than limit bytes are rejected; limit <= 0 disables the check.
func ReadSpec(path string, stdin io.Reader, limit int64) (string, error) {
	var r io.Reader
	if path == StdinPath {
		r = stdin
	} else {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("cliutil: opening spec: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("cliutil: reading %s: %w", DisplayPath(path), err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", fmt.Errorf("cliutil: %s exceeds maximum size of %d bytes", DisplayPath(path), limit)
	}
	return string(data), nil
}

// RejectSymlink returns an error if path exists and is a symlink.
func RejectSymlink(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cliutil: checking output path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("cliutil: refusing to write to symlink: %s", path)
	}
	return nil
}

// WriteFiles writes each named file under dir, creating dir if needed.
// Empty contents are skipped. It returns the paths written, in name order
// as given by names.
func WriteFiles(dir string, names []string, contents map[string]string) ([]string, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("cliutil: creating output directory: %w", err)
	}

	var written []string
	for _, name := range names {
		content := contents[name]
		if content == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if err := RejectSymlink(path); err != nil {
			return written, err
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return written, fmt.Errorf("cliutil: writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
