// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the review state of a research project.
type ProjectStatus string

const (
	ProjectPending  ProjectStatus = "PENDING"
	ProjectReview   ProjectStatus = "REVIEW"
	ProjectApproved ProjectStatus = "APPROVED"
	ProjectRejected ProjectStatus = "REJECTED"
)

// ProjectStatuses lists every status in workflow order.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectPending, ProjectReview, ProjectApproved, ProjectRejected}
}

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPending, ProjectReview, ProjectApproved, ProjectRejected:
		return true
	}
	return false
}

// Project is a research project submitted for approval.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Code        string        `json:"code"`
	Status      ProjectStatus `json:"status"`
	OwnerID     uuid.UUID     `json:"ownerId"`
	Owner       *ProjectOwner `json:"owner,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ProjectOwner is the public part of the submitting user.
type ProjectOwner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProjectCode formats the human-readable project code, e.g. RES-2026-007.
func ProjectCode(year, seq int) string {
	return fmt.Sprintf("RES-%d-%03d", year, seq)
}
