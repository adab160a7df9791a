package handlers

import (
	"strings"
	"testing"
)

func TestValidateNews(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		content   string
		wantError bool
	}{
		{"valid", "ข่าวประชาสัมพันธ์", "เนื้อหา", false},
		{"empty title", "", "body", true},
		{"whitespace title", "   ", "body", true},
		{"title too long", strings.Repeat("a", 301), "body", true},
		{"thai title at limit", strings.Repeat("ก", 300), "body", false},
		{"empty content", "title", "", true},
		{"content too long", "title", strings.Repeat("a", 100_001), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateNews(tt.title, tt.content)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateResearch(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		author    string
		abstract  string
		wantError bool
	}{
		{"valid", "Rice", "Somchai", "Abstract", false},
		{"optional author and abstract", "Rice", "", "", false},
		{"empty title", "", "a", "b", true},
		{"author too long", "Rice", strings.Repeat("a", 301), "", true},
		{"abstract too long", "Rice", "", strings.Repeat("a", 20_001), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateResearch(tt.title, tt.author, tt.abstract)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateProject(t *testing.T) {
	if validateProject("", "desc") == "" {
		t.Error("expected error for empty title")
	}
	if msg := validateProject("Soil study", ""); msg != "" {
		t.Errorf("unexpected error: %s", msg)
	}
	if validateProject("x", strings.Repeat("a", 10_001)) == "" {
		t.Error("expected error for long description")
	}
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name      string
		user      string
		email     string
		password  string
		wantError bool
	}{
		{"valid", "Somchai", "somchai@example.com", "longenough", false},
		{"missing name", "", "a@b.co", "longenough", true},
		{"bad email", "Somchai", "not-an-email", "longenough", true},
		{"short password", "Somchai", "a@b.co", "short", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateSignup(tt.user, tt.email, tt.password)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}
