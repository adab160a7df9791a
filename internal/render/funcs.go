// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"encoding/json"
	"html/template"
	"strconv"
	"time"
	"unicode/utf8"

	"researchoffice/internal/models"
)

// buddhistEraOffset converts a Gregorian year to the Thai Buddhist Era.
const buddhistEraOffset = 543

var thaiMonths = [...]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

// ThaiYear returns the Buddhist Era year for a Gregorian year.
func ThaiYear(year int) int {
	return year + buddhistEraOffset
}

// ThaiMonth returns the Thai name of a month number (1-12), or "" when out
// of range.
func ThaiMonth(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return thaiMonths[month-1]
}

// ThaiDate formats t as a Thai long date, e.g. "5 มีนาคม 2567".
func ThaiDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.Itoa(t.Day()) + " " + ThaiMonth(int(t.Month())) + " " + strconv.Itoa(ThaiYear(t.Year()))
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}

// toJSON marshals v for embedding in a <script> element.
func toJSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return template.JS(b)
}

// statusBadge returns the Tailwind classes for a project status badge.
func statusBadge(s models.ProjectStatus) string {
	switch s {
	case models.ProjectApproved:
		return "bg-green-100 text-green-800"
	case models.ProjectRejected:
		return "bg-red-100 text-red-800"
	case models.ProjectReview:
		return "bg-blue-100 text-blue-800"
	default:
		return "bg-yellow-100 text-yellow-800"
	}
}
