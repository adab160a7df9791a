package store

import (
	"errors"
	"testing"
	"time"

	"researchoffice/internal/models"
)

func TestNewsStoreLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewNewsStore(db)

	older := &models.NewsArticle{Title: "store-test older", Content: "c", Published: true, PublishDate: time.Now().Add(-48 * time.Hour)}
	newer := &models.NewsArticle{Title: "store-test newer", Content: "c", Published: true, PublishDate: time.Now()}
	draft := &models.NewsArticle{Title: "store-test draft", Content: "c", Published: false, PublishDate: time.Now()}
	for _, a := range []*models.NewsArticle{older, newer, draft} {
		if err := s.Create(a); err != nil {
			t.Fatalf("Create %q: %v", a.Title, err)
		}
		id := a.ID
		t.Cleanup(func() { db.Exec("DELETE FROM news WHERE id = $1", id) })
	}

	published, err := s.List(true)
	if err != nil {
		t.Fatalf("List(true): %v", err)
	}
	idxOlder, idxNewer := -1, -1
	for i, a := range published {
		if a.ID == draft.ID {
			t.Error("draft should not be listed when publishedOnly")
		}
		if a.ID == older.ID {
			idxOlder = i
		}
		if a.ID == newer.ID {
			idxNewer = i
		}
	}
	if idxNewer == -1 || idxOlder == -1 || idxNewer > idxOlder {
		t.Errorf("expected newer before older, got indexes %d and %d", idxNewer, idxOlder)
	}

	all, err := s.List(false)
	if err != nil {
		t.Fatalf("List(false): %v", err)
	}
	var sawDraft bool
	for _, a := range all {
		sawDraft = sawDraft || a.ID == draft.ID
	}
	if !sawDraft {
		t.Error("List(false) should include drafts")
	}

	draft.Published = true
	draft.Title = "store-test draft published"
	if err := s.Update(draft); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.FindByID(draft.ID)
	if got == nil || !got.Published || got.Title != "store-test draft published" {
		t.Errorf("Update not persisted: %+v", got)
	}

	if err := s.Delete(older.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}
	if err := s.Update(older); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update of deleted row: got %v, want ErrNotFound", err)
	}
}
