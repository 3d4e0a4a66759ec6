package app

import (
	"context"
	"fmt"

	"dialoguehub/pkg/domain"
	"dialoguehub/pkg/fileindex"
	"dialoguehub/pkg/storage"
	"dialoguehub/pkg/store"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Config holds runtime dependencies for the core application. Folder and
// Store are built once by the caller and owned by the App afterwards.
type Config struct {
	Mode            domain.Mode
	Folder          storage.Folder
	Store           store.Store
	AudioExtensions []string
}

// App reconciles the file-storage folder with the record store.
type App struct {
	mode    domain.Mode
	folder  storage.Folder
	store   store.Store
	matcher *fileindex.Matcher
	imports singleflight.Group
}

// New validates the wiring for the selected mode.
func New(cfg Config) (*App, error) {
	if cfg.Folder == nil {
		return nil, fmt.Errorf("folder required")
	}
	mode := cfg.Mode
	if mode == "" {
		mode = domain.ModeDatabase
	}
	if mode.UsesDatabase() && cfg.Store == nil {
		return nil, fmt.Errorf("%s mode: %w", mode, ErrStoreRequired)
	}
	return &App{
		mode:    mode,
		folder:  cfg.Folder,
		store:   cfg.Store,
		matcher: fileindex.NewMatcher(cfg.AudioExtensions),
	}, nil
}

// Mode returns the active mode.
func (a *App) Mode() domain.Mode {
	return a.mode
}

// ListDialogues groups the folder listing by dialogue number and merges it
// with the stored records according to the mode.
func (a *App) ListDialogues(ctx context.Context) ([]domain.Summary, error) {
	var (
		files   []storage.FileRef
		records []domain.Dialogue
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		files, err = a.folder.List(gctx)
		return err
	})
	if a.mode.UsesDatabase() {
		g.Go(func() error {
			var err error
			records, err = a.store.ListDialogues(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reconcile(a.mode, a.matcher.Group(toIndexFiles(files)), records), nil
}

// GetDialogue returns the transcript and highlights of one dialogue. Missing
// data yields empty values rather than an error.
func (a *App) GetDialogue(ctx context.Context, number int) (domain.Content, error) {
	if a.mode == domain.ModeFiles {
		return a.contentFromFiles(ctx, number)
	}
	d, ok, err := a.store.GetDialogue(ctx, number)
	if err != nil {
		return domain.Content{}, err
	}
	transcript := d.TranscriptText
	if transcript == "" {
		transcript, err = a.importTranscript(ctx, number)
		if err != nil {
			return domain.Content{}, err
		}
	}
	highlights := []domain.Highlight{}
	if ok && d.Highlights != nil {
		highlights = d.Highlights
	}
	return domain.Content{Transcript: transcript, Highlights: highlights}, nil
}

// OpenFile opens a folder file for streaming. The caller closes Body.
func (a *App) OpenFile(ctx context.Context, id string) (*storage.Object, error) {
	return a.folder.Open(ctx, id)
}

// Close releases the record store.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func toIndexFiles(refs []storage.FileRef) []fileindex.File {
	out := make([]fileindex.File, 0, len(refs))
	for _, ref := range refs {
		out = append(out, fileindex.File{ID: ref.ID, Name: ref.Name})
	}
	return out
}
