// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned for paths that would escape the public root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Local stores files on the filesystem under a public root directory.
// A file saved under key "uploads/a.pdf" is served at "/uploads/a.pdf".
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create public dir: %w", err)
	}
	return &Local{root: dir}, nil
}

// Root returns the directory files are written under.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) resolve(publicPath string) (string, error) {
	rel := strings.TrimPrefix(publicPath, "/")
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, publicPath)
	}
	return filepath.Join(l.root, filepath.FromSlash(rel)), nil
}

// Save writes data to key below the root, creating parent directories,
// and returns "/" + key.
func (l *Local) Save(_ context.Context, key, _ string, data []byte) (string, error) {
	full, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %s: %w", key, err)
	}
	return "/" + strings.TrimPrefix(key, "/"), nil
}

// Remove deletes the file behind a public path.
func (l *Local) Remove(_ context.Context, publicPath string) error {
	full, err := l.resolve(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("remove upload %s: %w", publicPath, err)
	}
	return nil
}
