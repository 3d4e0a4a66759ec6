package app

import (
	"context"
	"fmt"
	"strconv"

	"dialoguehub/pkg/fileindex"
	"dialoguehub/pkg/storage"
)

// GetOrImport returns the stored transcript of number, importing it from the
// folder file transcript{number}.txt when the record has none yet.
func (a *App) GetOrImport(ctx context.Context, number int) (string, error) {
	if !a.mode.UsesDatabase() {
		return "", fmt.Errorf("transcript import needs a record store (mode %s)", a.mode)
	}
	d, _, err := a.store.GetDialogue(ctx, number)
	if err != nil {
		return "", err
	}
	if d.TranscriptText != "" {
		return d.TranscriptText, nil
	}
	return a.importTranscript(ctx, number)
}

// importTranscript collapses concurrent imports of the same number within
// this process; the store's conditional upsert settles races between
// processes.
func (a *App) importTranscript(ctx context.Context, number int) (string, error) {
	v, err, _ := a.imports.Do(strconv.Itoa(number), func() (any, error) {
		ref, found, err := a.folder.FindByName(ctx, fileindex.TranscriptName(number))
		if err != nil {
			return "", err
		}
		if !found {
			return "", nil
		}
		text, err := storage.ReadText(ctx, a.folder, ref.ID)
		if err != nil {
			return "", err
		}
		return a.store.ImportTranscript(ctx, number, text)
	})
	if err != nil {
		return "", fmt.Errorf("import transcript %d: %w", number, err)
	}
	return v.(string), nil
}

// ImportReport summarizes a bulk transcript import.
type ImportReport struct {
	Scanned  int
	Imported int
	Skipped  int
	Failed   map[int]error
}

// ImportAll eagerly imports every transcript file in the folder whose record
// has no transcript yet. Failures are collected per number and do not stop
// the run.
func (a *App) ImportAll(ctx context.Context) (ImportReport, error) {
	report := ImportReport{Failed: make(map[int]error)}
	if !a.mode.UsesDatabase() {
		return report, fmt.Errorf("transcript import needs a record store (mode %s)", a.mode)
	}
	files, err := a.folder.List(ctx)
	if err != nil {
		return report, err
	}
	idx := a.matcher.Group(toIndexFiles(files))
	for _, n := range idx.Numbers() {
		if idx[n].TranscriptID == "" {
			continue
		}
		report.Scanned++
		d, _, err := a.store.GetDialogue(ctx, n)
		if err != nil {
			report.Failed[n] = err
			continue
		}
		if d.TranscriptText != "" {
			report.Skipped++
			continue
		}
		if _, err := a.importTranscript(ctx, n); err != nil {
			report.Failed[n] = err
			continue
		}
		report.Imported++
	}
	return report, nil
}
