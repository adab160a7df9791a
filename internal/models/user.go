// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// Capability names a single action a role may be allowed to perform.
type Capability string

const (
	CapManageResearch Capability = "research:manage"
	CapManageNews     Capability = "news:manage"
	CapManageContent  Capability = "content:manage"
	CapManageUsers    Capability = "users:manage"
	CapReviewProjects Capability = "projects:review"
	CapManageSystem   Capability = "system:manage"
	CapSubmitProject  Capability = "projects:submit"
)

// roleCapabilities is the closed capability set of every role.
var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapManageResearch: true,
		CapManageNews:     true,
		CapManageContent:  true,
		CapManageUsers:    true,
		CapReviewProjects: true,
		CapManageSystem:   true,
		CapSubmitProject:  true,
	},
	RoleEditor: {
		CapManageResearch: true,
		CapManageNews:     true,
		CapSubmitProject:  true,
	},
	RoleViewer: {
		CapSubmitProject: true,
	},
}

// Roles lists every valid role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleViewer}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants the given capability. Unknown roles
// grant nothing.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// User represents an account with authentication and optional 2FA fields.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"`
	TOTPEnabled  bool      `json:"totpEnabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Needs2FAVerify returns true if login must be completed with a TOTP code.
// 2FA is opt-in, so users who never enrolled skip the verification step.
func (u *User) Needs2FAVerify() bool {
	return u.TOTPEnabled && u.TOTPSecret != nil
}
