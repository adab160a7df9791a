// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"researchoffice/internal/models"
)

const researchColumns = `id, title, author, abstract, publication_date, year, month, file_path, tags, created_at`

// ResearchStore handles research paper rows.
type ResearchStore struct {
	db   *sql.DB
	tmap *pgtype.Map
}

// NewResearchStore creates a new ResearchStore.
func NewResearchStore(db *sql.DB) *ResearchStore {
	return &ResearchStore{db: db, tmap: pgtype.NewMap()}
}

func (s *ResearchStore) scan(row rowScanner, p *models.ResearchPaper) error {
	return row.Scan(
		&p.ID, &p.Title, &p.Author, &p.Abstract, &p.PublicationDate,
		&p.Year, &p.Month, &p.FilePath, s.tmap.SQLScanner(&p.Tags), &p.CreatedAt,
	)
}

// Create inserts a paper. Year and month are taken from the paper, which
// callers set through SetPublicationDate.
func (s *ResearchStore) Create(p *models.ResearchPaper) error {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	err := s.db.QueryRow(`
		INSERT INTO research_papers (title, author, abstract, publication_date, year, month, file_path, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, p.Title, p.Author, p.Abstract, p.PublicationDate, p.Year, p.Month, p.FilePath, p.Tags,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create research paper: %w", err)
	}
	return nil
}

// FindByID retrieves a paper. Returns nil if not found.
func (s *ResearchStore) FindByID(id uuid.UUID) (*models.ResearchPaper, error) {
	p := &models.ResearchPaper{}
	err := s.scan(s.db.QueryRow(`SELECT `+researchColumns+` FROM research_papers WHERE id = $1`, id), p)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find research paper: %w", err)
	}
	return p, nil
}

// Delete removes a paper row. Returns ErrNotFound if it does not exist.
func (s *ResearchStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM research_papers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete research paper: %w", err)
	}
	return expectAffected(res, "delete research paper")
}

// List returns every paper, newest publication first.
func (s *ResearchStore) List() ([]models.ResearchPaper, error) {
	return s.query(`SELECT ` + researchColumns + ` FROM research_papers ORDER BY publication_date DESC`)
}

// ListByYear returns the papers of one year, newest publication first.
func (s *ResearchStore) ListByYear(year int) ([]models.ResearchPaper, error) {
	return s.query(`
		SELECT `+researchColumns+` FROM research_papers
		WHERE year = $1 ORDER BY publication_date DESC
	`, year)
}

// ListYears returns the distinct publication years, most recent first.
func (s *ResearchStore) ListYears() ([]int, error) {
	rows, err := s.db.Query(`SELECT DISTINCT year FROM research_papers ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("list research years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan research year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func (s *ResearchStore) query(q string, args ...any) ([]models.ResearchPaper, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list research papers: %w", err)
	}
	defer rows.Close()

	var papers []models.ResearchPaper
	for rows.Next() {
		var p models.ResearchPaper
		if err := s.scan(rows, &p); err != nil {
			return nil, fmt.Errorf("scan research paper: %w", err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}
