// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ResearchPaper is an uploaded publication listed in the repository.
// Year and Month are derived from PublicationDate when the row is written.
type ResearchPaper struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Abstract        string    `json:"abstract"`
	PublicationDate time.Time `json:"publicationDate"`
	Year            int       `json:"year"`
	Month           int       `json:"month"`
	FilePath        string    `json:"filePath"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SetPublicationDate stores the date and the year/month columns derived
// from it.
func (p *ResearchPaper) SetPublicationDate(d time.Time) {
	p.PublicationDate = d
	p.Year = d.Year()
	p.Month = int(d.Month())
}
