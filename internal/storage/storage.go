// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage persists uploaded files. The default backend writes under
// the public directory served at /uploads and /icons; an S3-compatible
// bucket can be configured instead.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Store saves and removes uploaded files. Save returns the public path or
// URL stored alongside the owning row; Remove accepts that same value.
type Store interface {
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, publicPath string) error
}

// unsafeFilename matches every character not allowed in a stored filename.
var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFilename replaces every character outside [A-Za-z0-9.-] with an
// underscore.
// Example: "report (final).pdf" → "report__final_.pdf"
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" {
		name = ""
	}
	return unsafeFilename.ReplaceAllString(name, "_")
}

// ResearchKey builds the storage key for a research upload received at t:
// uploads/<year>/<month>/<day>/<sanitized name>. Month and day are not
// zero padded.
func ResearchKey(t time.Time, filename string) string {
	return fmt.Sprintf("uploads/%d/%d/%d/%s", t.Year(), int(t.Month()), t.Day(), SanitizeFilename(filename))
}

// IconKey builds the storage key for a content icon:
// icons/<contentKey>-<epochMillis><ext>.
func IconKey(contentKey string, t time.Time, ext string) string {
	return fmt.Sprintf("icons/%s-%d%s", SanitizeFilename(contentKey), t.UnixMilli(), strings.ToLower(ext))
}
