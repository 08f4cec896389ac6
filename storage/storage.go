// Package storage moves uploaded artifacts from intake into durable storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"plasticity-backend/apperr"
)

// Store relocates an intake file into durable storage under name and
// returns the resulting location. Same-name moves overwrite: last writer wins.
type Store interface {
	Move(ctx context.Context, intakePath, name string) (string, error)
}

// CleanName strips directories from a client-supplied file name.
// Names that reduce to nothing are a validation error.
func CleanName(original string) (string, error) {
	name := path.Base(strings.ReplaceAll(original, "\\", "/"))
	if name == "." || name == "/" || name == ".." || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("file name %q: %w", original, apperr.ErrValidation)
	}
	return name, nil
}

// Spool copies src into a new file under dir and returns its path.
func Spool(dir string, src io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create intake dir: %w: %w", apperr.ErrStorage, err)
	}
	f, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("create intake file: %w: %w", apperr.ErrStorage, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write intake file: %w: %w", apperr.ErrStorage, err)
	}
	return f.Name(), nil
}

// Local keeps files under Dir on the local filesystem.
type Local struct {
	Dir string
}

// Move renames the intake file to Dir/name, copying when the rename
// crosses filesystems. The returned location is Dir/name with forward slashes.
func (l Local) Move(ctx context.Context, intakePath, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("move upload: %w: %w", apperr.ErrStorage, err)
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w: %w", apperr.ErrStorage, err)
	}

	dst := filepath.Join(l.Dir, name)
	if err := os.Rename(intakePath, dst); err != nil {
		if err := copyFile(intakePath, dst); err != nil {
			return "", fmt.Errorf("move upload: %w: %w", apperr.ErrStorage, err)
		}
		os.Remove(intakePath)
	}
	return filepath.ToSlash(dst), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
