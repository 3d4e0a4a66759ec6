package app

import (
	"testing"

	"dialoguehub/pkg/domain"
	"dialoguehub/pkg/fileindex"
)

func numbers(list []domain.Summary) []int {
	out := make([]int, 0, len(list))
	for _, s := range list {
		out = append(out, s.Number)
	}
	return out
}

func TestReconcileFilesIntersection(t *testing.T) {
	idx := fileindex.Index{
		7: {AudioID: "a7", TranscriptID: "t7"},
		8: {AudioID: "a8"},
		9: {TranscriptID: "t9"},
	}
	got := reconcile(domain.ModeFiles, idx, nil)
	if len(got) != 1 {
		t.Fatalf("expected one complete pair, got %+v", got)
	}
	want := domain.Summary{Number: 7, Label: "Dialogue 7", AudioID: "a7", TranscriptID: "t7"}
	if got[0] != want {
		t.Fatalf("entry = %+v, want %+v", got[0], want)
	}
}

func TestReconcileSortsNumerically(t *testing.T) {
	idx := fileindex.Index{
		10: {AudioID: "a10", TranscriptID: "t10"},
		2:  {AudioID: "a2", TranscriptID: "t2"},
		1:  {AudioID: "a1", TranscriptID: "t1"},
	}
	for _, mode := range []domain.Mode{domain.ModeFiles, domain.ModeHybrid, domain.ModeDatabase} {
		got := numbers(reconcile(mode, idx, nil))
		if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 10 {
			t.Fatalf("%s: order = %v, want [1 2 10]", mode, got)
		}
	}
}

func TestReconcileHybridUsesStoredTitle(t *testing.T) {
	idx := fileindex.Index{
		1: {AudioID: "a1", TranscriptID: "t1"},
		2: {AudioID: "a2", TranscriptID: "t2"},
	}
	records := []domain.Dialogue{{Number: 1, Title: "At the market"}}
	got := reconcile(domain.ModeHybrid, idx, records)
	if got[0].Label != "At the market" {
		t.Fatalf("label = %q, want stored title", got[0].Label)
	}
	if got[1].Label != "Dialogue 2" {
		t.Fatalf("label = %q, want generated label", got[1].Label)
	}
	if got[0].TranscriptID != "t1" {
		t.Fatalf("transcript id should come from the file index, got %q", got[0].TranscriptID)
	}
}

func TestReconcileDatabaseUnionWithFlags(t *testing.T) {
	idx := fileindex.Index{
		3: {AudioID: "a3"},
		7: {AudioID: "a7", TranscriptID: "t7"},
		9: {TranscriptID: "t9"},
	}
	records := []domain.Dialogue{
		{Number: 3, Title: "Dialogue 3", TranscriptText: "text", Highlights: []domain.Highlight{domain.Highlight(`{"russian":"да"}`)}},
		{Number: 9, TranscriptText: "orphan"},
	}
	got := reconcile(domain.ModeDatabase, idx, records)
	if len(got) != 2 {
		t.Fatalf("expected entries for audio numbers only, got %+v", got)
	}
	if !*got[0].HasTranscript || !*got[0].HasHighlights {
		t.Fatalf("number 3 flags = %v/%v, want true/true", *got[0].HasTranscript, *got[0].HasHighlights)
	}
	if *got[1].HasTranscript || *got[1].HasHighlights {
		t.Fatalf("number 7 flags should be false without a record")
	}
	if got[1].TranscriptID != "" {
		t.Fatalf("database mode does not expose transcript ids")
	}
}
