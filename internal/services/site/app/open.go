package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/louisbranch/agencysite/internal/platform/logging"
	"github.com/louisbranch/agencysite/internal/services/site/storage/sqlite"
)

// OpenStore opens the SQLite store at path, creating its directory.
func OpenStore(ctx context.Context, path string, logger *zap.Logger) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(ctx, path, sqlite.WithLogger(logging.OrNop(logger).Named("store")))
	if err != nil {
		return nil, fmt.Errorf("open site store: %w", err)
	}
	return store, nil
}
