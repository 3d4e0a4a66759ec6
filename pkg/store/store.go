package store

import (
	"context"
	"fmt"
	"strings"

	"dialoguehub/pkg/domain"
)

// Store persists dialogue records keyed by dialogue number.
type Store interface {
	ListDialogues(ctx context.Context) ([]domain.Dialogue, error)
	GetDialogue(ctx context.Context, number int) (domain.Dialogue, bool, error)

	// ReplaceHighlights finds or creates the record for number and overwrites
	// its highlight list.
	ReplaceHighlights(ctx context.Context, number int, highlights []domain.Highlight) error

	// ImportTranscript stores text on the record only when the record has no
	// transcript yet, creating the record if needed. It returns the transcript
	// that is stored once the call completes.
	ImportTranscript(ctx context.Context, number int, text string) (string, error)

	Close() error
}

// Open picks an implementation from the URL scheme: mongodb:// and
// mongodb+srv:// open a MongoStore, anything else is handed to Postgres.
func Open(ctx context.Context, databaseURL, mongoDatabase string) (Store, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL required")
	}
	if IsMongoURL(databaseURL) {
		return NewMongoStore(ctx, databaseURL, mongoDatabase)
	}
	return NewGormStore(databaseURL)
}

// IsMongoURL reports whether url points at MongoDB.
func IsMongoURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "mongodb://") || strings.HasPrefix(lower, "mongodb+srv://")
}

func normalizeHighlights(highlights []domain.Highlight) []domain.Highlight {
	if highlights == nil {
		return []domain.Highlight{}
	}
	return highlights
}
