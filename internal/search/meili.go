// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meilisearch/meilisearch-go"
)

// Meili is a Backend backed by a Meilisearch server. Writes are enqueued
// as Meilisearch tasks and not awaited.
type Meili struct {
	client meilisearch.ServiceManager
}

// NewMeili creates a Meilisearch backend. The underlying client is safe for
// concurrent use and should be created once per process.
func NewMeili(host, apiKey string) *Meili {
	return &Meili{client: meilisearch.New(host, meilisearch.WithAPIKey(apiKey))}
}

// Healthy reports whether the server answers its health endpoint.
func (m *Meili) Healthy() bool {
	return m.client.IsHealthy()
}

func (m *Meili) AddDocuments(ctx context.Context, index string, docs any) error {
	if _, err := m.client.Index(index).AddDocumentsWithContext(ctx, docs, PrimaryKey); err != nil {
		return fmt.Errorf("meili add documents %s: %w", index, err)
	}
	return nil
}

func (m *Meili) UpdateDocuments(ctx context.Context, index string, docs any) error {
	if _, err := m.client.Index(index).UpdateDocumentsWithContext(ctx, docs, PrimaryKey); err != nil {
		return fmt.Errorf("meili update documents %s: %w", index, err)
	}
	return nil
}

func (m *Meili) DeleteDocument(ctx context.Context, index, id string) error {
	if _, err := m.client.Index(index).DeleteDocumentWithContext(ctx, id); err != nil {
		return fmt.Errorf("meili delete document %s/%s: %w", index, id, err)
	}
	return nil
}

func (m *Meili) Search(ctx context.Context, index, query string, q Query) (*Result, error) {
	resp, err := m.client.Index(index).SearchWithContext(ctx, query, &meilisearch.SearchRequest{
		Limit:                 q.Limit,
		AttributesToHighlight: q.Highlight,
	})
	if err != nil {
		return nil, fmt.Errorf("meili search %s: %w", index, err)
	}

	// Hits are decoded through JSON so the result does not depend on the
	// client's hit representation.
	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, fmt.Errorf("meili encode hits: %w", err)
	}
	res := &Result{
		Query:              resp.Query,
		Limit:              resp.Limit,
		Offset:             resp.Offset,
		EstimatedTotalHits: resp.EstimatedTotalHits,
		ProcessingTimeMs:   resp.ProcessingTimeMs,
	}
	if err := json.Unmarshal(raw, &res.Hits); err != nil {
		return nil, fmt.Errorf("meili decode hits: %w", err)
	}
	if res.Hits == nil {
		res.Hits = []Hit{}
	}
	return res, nil
}

func (m *Meili) Configure(ctx context.Context, index string, s Settings) error {
	idx := m.client.Index(index)
	if len(s.Searchable) > 0 {
		attrs := s.Searchable
		if _, err := idx.UpdateSearchableAttributesWithContext(ctx, &attrs); err != nil {
			return fmt.Errorf("meili searchable attributes %s: %w", index, err)
		}
	}
	if len(s.Sortable) > 0 {
		attrs := s.Sortable
		if _, err := idx.UpdateSortableAttributesWithContext(ctx, &attrs); err != nil {
			return fmt.Errorf("meili sortable attributes %s: %w", index, err)
		}
	}
	return nil
}
