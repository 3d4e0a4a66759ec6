package store

import (
	"context"
	"sync"
	"testing"

	"dialoguehub/pkg/domain"
)

func TestMemoryStoreReplaceHighlightsCreatesWithDefaultTitle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.ReplaceHighlights(ctx, 3, []domain.Highlight{domain.Highlight(`{"russian":"привет","translation":"hi"}`)}); err != nil {
		t.Fatalf("replace highlights: %v", err)
	}
	d, ok, err := s.GetDialogue(ctx, 3)
	if err != nil || !ok {
		t.Fatalf("get dialogue: ok=%v err=%v", ok, err)
	}
	if d.Title != "Dialogue 3" {
		t.Fatalf("title = %q, want Dialogue 3", d.Title)
	}
	if len(d.Highlights) != 1 || string(d.Highlights[0]) != `{"russian":"привет","translation":"hi"}` {
		t.Fatalf("unexpected highlights: %+v", d.Highlights)
	}
}

func TestMemoryStoreReplaceHighlightsOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	two := []domain.Highlight{domain.Highlight(`{"russian":"да"}`), domain.Highlight(`{"russian":"нет"}`)}
	if err := s.ReplaceHighlights(ctx, 1, two); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.ReplaceHighlights(ctx, 1, []domain.Highlight{}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	d, _, _ := s.GetDialogue(ctx, 1)
	if len(d.Highlights) != 0 {
		t.Fatalf("expected highlights replaced, got %d", len(d.Highlights))
	}
}

func TestMemoryStoreImportTranscriptKeepsFirstText(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	got, err := s.ImportTranscript(ctx, 5, "first")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got != "first" {
		t.Fatalf("stored = %q, want first", got)
	}
	got, err = s.ImportTranscript(ctx, 5, "second")
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if got != "first" {
		t.Fatalf("second import overwrote text: %q", got)
	}
}

func TestMemoryStoreImportTranscriptConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := "text"
			if i%2 == 1 {
				text = "other"
			}
			results[i], _ = s.ImportTranscript(ctx, 9, text)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		if r != results[0] {
			t.Fatalf("callers saw different transcripts: %v", results)
		}
	}
}

func TestMemoryStoreListSortedByNumber(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, n := range []int{10, 2, 1} {
		s.Put(domain.Dialogue{Number: n})
	}
	list, err := s.ListDialogues(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Number != 1 || list[1].Number != 2 || list[2].Number != 10 {
		t.Fatalf("unexpected order: %+v", list)
	}
}

func TestIsMongoURL(t *testing.T) {
	tests := map[string]bool{
		"mongodb://localhost:27017":             true,
		"MONGODB+SRV://cluster.example.net/db":  true,
		"postgres://u:p@localhost:5432/dialogs": false,
		"host=localhost user=postgres":          false,
	}
	for url, want := range tests {
		if got := IsMongoURL(url); got != want {
			t.Fatalf("IsMongoURL(%q) = %v, want %v", url, got, want)
		}
	}
}
