// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging shrinks uploaded raster icons to a maximum width.
// Images already narrow enough, and anything that is not a decodable
// raster (SVG, ICO), pass through untouched.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register the GIF decoder
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register the WebP decoder
)

// IconMaxWidth is the widest icon stored without downscaling.
const IconMaxWidth = 256

// Result is the outcome of FitWidth.
type Result struct {
	Data        []byte
	Ext         string // extension for the output format, e.g. ".png"
	ContentType string
	Resized     bool
}

// FitWidth decodes data and, when it is wider than maxWidth, scales it down
// preserving the aspect ratio. JPEG stays JPEG and every other raster
// format is re-encoded as PNG. Undecodable input is returned unchanged
// with Resized false.
func FitWidth(data []byte, maxWidth int) (Result, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= maxWidth {
		return Result{Data: data}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("imaging: decode %s: %w", format, err)
	}

	b := src.Bounds()
	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	out := Result{Resized: true}
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85})
		out.Ext, out.ContentType = ".jpg", "image/jpeg"
	default:
		err = png.Encode(&buf, dst)
		out.Ext, out.ContentType = ".png", "image/png"
	}
	if err != nil {
		return Result{}, fmt.Errorf("imaging: encode: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}
