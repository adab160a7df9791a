package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits for submitted fields.
const (
	maxTitleLen       = 300
	maxAuthorLen      = 300
	maxAbstractLen    = 20_000
	maxNewsBodyLen    = 100_000
	maxDescriptionLen = 10_000
	maxNameLen        = 200
	minPasswordLen    = 8
)

// validateNews checks an article's fields and returns the first error found.
func validateNews(title, content string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if strings.TrimSpace(content) == "" {
		return "Content is required."
	}
	if utf8.RuneCountInString(content) > maxNewsBodyLen {
		return "Content is too long (max 100,000 characters)."
	}
	return ""
}

// validateResearch checks upload metadata. The file and date are checked
// by the handler.
func validateResearch(title, author, abstract string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(author) > maxAuthorLen {
		return "Author is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(abstract) > maxAbstractLen {
		return "Abstract is too long (max 20,000 characters)."
	}
	return ""
}

// validateProject checks a project submission.
func validateProject(title, description string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 10,000 characters)."
	}
	return ""
}

// validateSignup checks the registration form.
func validateSignup(name, email, password string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return "A valid email address is required."
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	return ""
}
