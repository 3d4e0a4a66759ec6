package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"dialoguehub/pkg/domain"
)

// MemoryStore keeps dialogue records in-process. It backs files mode, where
// no database is configured, and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	dialogues map[int]domain.Dialogue
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{dialogues: make(map[int]domain.Dialogue)}
}

// Put stores d as-is, replacing any record with the same number.
func (m *MemoryStore) Put(d domain.Dialogue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialogues[d.Number] = cloneDialogue(d)
}

func (m *MemoryStore) ListDialogues(_ context.Context) ([]domain.Dialogue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Dialogue, 0, len(m.dialogues))
	for _, d := range m.dialogues {
		res = append(res, cloneDialogue(d))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Number < res[j].Number })
	return res, nil
}

func (m *MemoryStore) GetDialogue(_ context.Context, number int) (domain.Dialogue, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.dialogues[number]
	if !ok {
		return domain.Dialogue{}, false, nil
	}
	return cloneDialogue(d), true, nil
}

func (m *MemoryStore) ReplaceHighlights(_ context.Context, number int, highlights []domain.Highlight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.findOrCreateLocked(number)
	d.Highlights = cloneHighlights(highlights)
	d.UpdatedAt = time.Now().UTC()
	m.dialogues[number] = d
	return nil
}

func (m *MemoryStore) ImportTranscript(_ context.Context, number int, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.findOrCreateLocked(number)
	if d.TranscriptText == "" {
		d.TranscriptText = text
		d.UpdatedAt = time.Now().UTC()
	}
	m.dialogues[number] = d
	return d.TranscriptText, nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) findOrCreateLocked(number int) domain.Dialogue {
	if d, ok := m.dialogues[number]; ok {
		return d
	}
	now := time.Now().UTC()
	return domain.Dialogue{
		Number:     number,
		Title:      domain.DefaultTitle(number),
		Highlights: []domain.Highlight{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func cloneDialogue(d domain.Dialogue) domain.Dialogue {
	d.Highlights = cloneHighlights(d.Highlights)
	return d
}

func cloneHighlights(highlights []domain.Highlight) []domain.Highlight {
	out := make([]domain.Highlight, 0, len(highlights))
	for _, h := range highlights {
		out = append(out, append(domain.Highlight(nil), h...))
	}
	return out
}
