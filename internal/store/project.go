// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"researchoffice/internal/models"
)

// projectCodeLock is the advisory lock key that serializes code generation.
const projectCodeLock = 0x5245535f434f4445 // "RES_CODE"

// ProjectStore handles research project rows.
type ProjectStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewProjectStore creates a new ProjectStore.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db, now: time.Now}
}

// Create inserts a PENDING project owned by ownerID and assigns its code,
// RES-<year>-<total project count + 1>. Counting and inserting happen in
// one transaction holding an advisory lock, so concurrent creations are
// serialized and never share a code.
func (s *ProjectStore) Create(ownerID uuid.UUID, title, description string) (*models.Project, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("create project: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`SELECT pg_advisory_xact_lock($1)`, int64(projectCodeLock)); err != nil {
		return nil, fmt.Errorf("create project: lock: %w", err)
	}

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&count); err != nil {
		return nil, fmt.Errorf("create project: count: %w", err)
	}

	p := &models.Project{
		Title:       title,
		Description: description,
		Code:        models.ProjectCode(s.now().Year(), count+1),
		Status:      models.ProjectPending,
		OwnerID:     ownerID,
	}
	err = tx.QueryRow(`
		INSERT INTO projects (title, description, code, status, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Description, p.Code, p.Status, p.OwnerID).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create project: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create project: commit: %w", err)
	}
	return p, nil
}

// List returns projects newest first with their owner's name and email.
// A nil ownerID lists every project.
func (s *ProjectStore) List(ownerID *uuid.UUID) ([]models.Project, error) {
	q := `
		SELECT p.id, p.title, p.description, p.code, p.status, p.owner_id,
		       p.created_at, p.updated_at, u.name, u.email
		FROM projects p
		JOIN users u ON u.id = p.owner_id`
	var args []any
	if ownerID != nil {
		q += ` WHERE p.owner_id = $1`
		args = append(args, *ownerID)
	}
	q += ` ORDER BY p.created_at DESC`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		owner := &models.ProjectOwner{}
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Code, &p.Status, &p.OwnerID,
			&p.CreatedAt, &p.UpdatedAt, &owner.Name, &owner.Email,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.Owner = owner
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateStatus sets a project's status. Returns ErrNotFound for unknown IDs.
func (s *ProjectStore) UpdateStatus(id uuid.UUID, status models.ProjectStatus) (*models.Project, error) {
	p := &models.Project{}
	err := s.db.QueryRow(`
		UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2
		RETURNING id, title, description, code, status, owner_id, created_at, updated_at
	`, status, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.Code, &p.Status, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("update project status: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update project status: %w", err)
	}
	return p, nil
}
