package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dialoguehub/pkg/domain"
	"dialoguehub/pkg/fileindex"
	"dialoguehub/pkg/storage"
)

// SaveHighlights replaces the highlight list of a dialogue with the elements
// as sent. Objects without a "date" key are stamped with the save time.
func (a *App) SaveHighlights(ctx context.Context, number int, highlights []domain.Highlight) (domain.SaveResult, error) {
	now := time.Now()
	stamped := make([]domain.Highlight, 0, len(highlights))
	for _, h := range highlights {
		stamped = append(stamped, domain.WithDefaultDate(h, now))
	}

	if a.mode == domain.ModeFiles {
		return a.saveHighlightsFile(ctx, number, stamped)
	}
	if err := a.store.ReplaceHighlights(ctx, number, stamped); err != nil {
		return domain.SaveResult{}, err
	}
	return domain.SaveResult{Success: true}, nil
}

func (a *App) saveHighlightsFile(ctx context.Context, number int, highlights []domain.Highlight) (domain.SaveResult, error) {
	data, err := json.MarshalIndent(highlights, "", "  ")
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("encode highlights: %w", err)
	}
	ref, created, err := a.folder.Put(ctx, fileindex.HighlightsName(number), bytes.NewReader(data), int64(len(data)), "application/json")
	if err != nil {
		return domain.SaveResult{}, err
	}
	status := "updated"
	if created {
		status = "created"
	}
	return domain.SaveResult{Status: status, FileID: ref.ID}, nil
}

func (a *App) contentFromFiles(ctx context.Context, number int) (domain.Content, error) {
	content := domain.Content{Highlights: []domain.Highlight{}}

	ref, found, err := a.folder.FindByName(ctx, fileindex.TranscriptName(number))
	if err != nil {
		return domain.Content{}, err
	}
	if found {
		if content.Transcript, err = storage.ReadText(ctx, a.folder, ref.ID); err != nil {
			return domain.Content{}, err
		}
	}

	ref, found, err = a.folder.FindByName(ctx, fileindex.HighlightsName(number))
	if err != nil {
		return domain.Content{}, err
	}
	if !found {
		return content, nil
	}
	raw, err := storage.ReadText(ctx, a.folder, ref.ID)
	if err != nil {
		return domain.Content{}, err
	}
	var highlights []domain.Highlight
	if err := json.Unmarshal([]byte(raw), &highlights); err != nil {
		return domain.Content{}, fmt.Errorf("decode %s: %w", ref.Name, err)
	}
	if highlights != nil {
		content.Highlights = highlights
	}
	return content, nil
}
