// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ContentType tells the dashboard which editor widget to show for a key.
// It is stored only; values are never validated against it.
type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypeTextarea ContentType = "textarea"
	ContentTypeColor    ContentType = "color"
	ContentTypeImage    ContentType = "image"
	ContentTypeIcon     ContentType = "icon"
)

// Section groups related content keys in the dashboard.
type Section string

const (
	SectionTheme    Section = "THEME"
	SectionHomeHero Section = "HOME_HERO"
	SectionAbout    Section = "ABOUT"
	SectionNav      Section = "NAV"
	SectionServices Section = "SERVICES"
	SectionContact  Section = "CONTACT"
	SectionImages   Section = "IMAGES"
)

// ContentItem is one editable key/value pair of the public site.
type ContentItem struct {
	Key       string      `json:"key" yaml:"key"`
	Section   Section     `json:"section" yaml:"section"`
	Label     string      `json:"label" yaml:"label"`
	Value     string      `json:"value" yaml:"value"`
	Type      ContentType `json:"type" yaml:"type"`
	UpdatedAt time.Time   `json:"updatedAt" yaml:"-"`
}

// ContentValues is a flat key/value view of all content items.
type ContentValues map[string]string

// Get returns the value for a key, or the fallback if the key is missing
// or blank.
func (v ContentValues) Get(key, fallback string) string {
	if s, ok := v[key]; ok && s != "" {
		return s
	}
	return fallback
}
