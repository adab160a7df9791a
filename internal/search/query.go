// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	// unifiedLimit is the per-index hit count of the site-wide search.
	unifiedLimit = 5
	// researchLimit is the hit count of the research-only search.
	researchLimit = 10
)

// Hit type tags added by the unified search.
const (
	TypeResearch = "research"
	TypeNews     = "news"
)

// Searcher runs read queries against the backend.
type Searcher struct {
	backend Backend
}

// NewSearcher creates a Searcher.
func NewSearcher(backend Backend) *Searcher {
	return &Searcher{backend: backend}
}

// Unified queries the research and news indexes in parallel and merges
// their hits, research first, each tagged with a "type" field. A blank
// query returns no hits without touching the backend. If one index fails
// the other's hits are still returned; only a failure of both is an error.
func (s *Searcher) Unified(ctx context.Context, q string) ([]Hit, error) {
	if strings.TrimSpace(q) == "" {
		return []Hit{}, nil
	}

	var research, news []Hit
	var researchErr, newsErr error

	// Legs record their own errors so one failure does not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		res, err := s.backend.Search(ctx, IndexResearch, q, Query{
			Limit:     unifiedLimit,
			Highlight: []string{"title", "abstract"},
		})
		if err != nil {
			researchErr = err
			return nil
		}
		research = tag(res.Hits, TypeResearch)
		return nil
	})
	g.Go(func() error {
		res, err := s.backend.Search(ctx, IndexNews, q, Query{
			Limit:     unifiedLimit,
			Highlight: []string{"title", "content"},
		})
		if err != nil {
			newsErr = err
			return nil
		}
		news = tag(res.Hits, TypeNews)
		return nil
	})
	_ = g.Wait()

	if researchErr != nil && newsErr != nil {
		return nil, fmt.Errorf("unified search: research: %v; news: %w", researchErr, newsErr)
	}
	if researchErr != nil {
		slog.Warn("research search failed", "query", q, "error", researchErr)
	}
	if newsErr != nil {
		slog.Warn("news search failed", "query", q, "error", newsErr)
	}

	hits := make([]Hit, 0, len(research)+len(news))
	hits = append(hits, research...)
	hits = append(hits, news...)
	return hits, nil
}

// Research queries only the research index, returning the raw result.
// A blank query returns an empty result without touching the backend.
func (s *Searcher) Research(ctx context.Context, q string) (*Result, error) {
	if strings.TrimSpace(q) == "" {
		return &Result{Hits: []Hit{}}, nil
	}
	return s.backend.Search(ctx, IndexResearch, q, Query{
		Limit:     researchLimit,
		Highlight: []string{"title", "abstract"},
	})
}

func tag(hits []Hit, typ string) []Hit {
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		tagged := make(Hit, len(h)+1)
		for k, v := range h {
			tagged[k] = v
		}
		tagged["type"] = typ
		out = append(out, tagged)
	}
	return out
}
