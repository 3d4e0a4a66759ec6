package app

import (
	"dialoguehub/pkg/domain"
	"dialoguehub/pkg/fileindex"
)

// reconcile merges the per-number file groups with stored records. Output is
// ordered by ascending dialogue number.
//
// files and hybrid list only numbers that have both audio and a transcript
// file; database lists every number with audio and reports what the record
// holds through the has* flags.
func reconcile(mode domain.Mode, idx fileindex.Index, records []domain.Dialogue) []domain.Summary {
	byNumber := make(map[int]domain.Dialogue, len(records))
	for _, d := range records {
		byNumber[d.Number] = d
	}

	out := make([]domain.Summary, 0, len(idx))
	for _, n := range idx.Numbers() {
		g := idx[n]
		if g.AudioID == "" {
			continue
		}
		switch mode {
		case domain.ModeFiles:
			if g.TranscriptID == "" {
				continue
			}
			out = append(out, domain.Summary{
				Number:       n,
				Label:        domain.DefaultTitle(n),
				AudioID:      g.AudioID,
				TranscriptID: g.TranscriptID,
				HighlightsID: g.HighlightsID,
			})
		case domain.ModeHybrid:
			if g.TranscriptID == "" {
				continue
			}
			label := domain.DefaultTitle(n)
			if d, ok := byNumber[n]; ok && d.Title != "" {
				label = d.Title
			}
			out = append(out, domain.Summary{
				Number:       n,
				Label:        label,
				AudioID:      g.AudioID,
				TranscriptID: g.TranscriptID,
			})
		default:
			d, ok := byNumber[n]
			label := domain.DefaultTitle(n)
			if ok && d.Title != "" {
				label = d.Title
			}
			hasTranscript := ok && d.TranscriptText != ""
			hasHighlights := ok && len(d.Highlights) > 0
			out = append(out, domain.Summary{
				Number:        n,
				Label:         label,
				AudioID:       g.AudioID,
				HasTranscript: &hasTranscript,
				HasHighlights: &hasHighlights,
			})
		}
	}
	return out
}
