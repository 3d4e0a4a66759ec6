// Package bootstrap builds the long-lived clients shared by the dialogue
// binaries from a loaded config.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"dialoguehub/internal/ratelimit"
	"dialoguehub/pkg/domain"
	"dialoguehub/pkg/storage"
	"dialoguehub/pkg/store"
	"dialoguehub/services/dialogue/internal/config"
)

// OpenFolder connects to the configured folder backend. Drive gets write
// scope only in files mode, where highlights are stored as folder files.
func OpenFolder(ctx context.Context, cfg config.FileConfig, mode domain.Mode) (storage.Folder, error) {
	switch cfg.FolderBackend {
	case config.BackendMinio:
		return storage.NewMinioFolder(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.FolderID, cfg.MinioUseSSL)
	default:
		readOnly := mode != domain.ModeFiles
		scope := storage.ScopeReadWrite
		if readOnly {
			scope = storage.ScopeReadOnly
		}
		creds, err := storage.LoadGoogleCredentials(ctx, cfg.GoogleCredentials, scope)
		if err != nil {
			return nil, err
		}
		return storage.NewDriveFolder(ctx, creds, cfg.FolderID, readOnly)
	}
}

// OpenStore connects to the record store. Files mode needs none and gets nil.
func OpenStore(ctx context.Context, cfg config.FileConfig, mode domain.Mode) (store.Store, error) {
	if !mode.UsesDatabase() {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	st, err := store.Open(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// OpenHighlightLimiter returns nil when highlight rate limiting is disabled.
func OpenHighlightLimiter(cfg config.FileConfig) (*ratelimit.FixedWindowLimiter, error) {
	if cfg.HighlightRateLimitPerMinute <= 0 {
		return nil, nil
	}
	return ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "dialogue:ratelimit:highlights", cfg.HighlightRateLimitPerMinute, time.Minute)
}
