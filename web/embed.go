// Package web holds the site's static assets: the stylesheet and the
// dashboard scripts that drive the JSON API.
package web

import "embed"

// StaticFS is mounted under /static/ by the router.
//
//go:embed all:static
var StaticFS embed.FS
