package build

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dtobolski/sitecv/internal/config"
	"github.com/dtobolski/sitecv/internal/manifest"
	"github.com/dtobolski/sitecv/internal/publication"
	"github.com/dtobolski/sitecv/internal/storage"
)

// OpenIndex opens the query index for the site, rebuilding it from the CSV
// when it is missing, stale or force is set. It reports whether a rebuild
// happened. The caller closes the returned DB.
func OpenIndex(paths config.Paths, force bool, log *zap.Logger) (*storage.DB, bool, error) {
	if log == nil {
		log = zap.NewNop()
	}

	digest, err := manifest.HashFile(paths.PublicationsCSV)
	if err != nil {
		return nil, false, err
	}
	if digest == manifest.Missing {
		return nil, false, fmt.Errorf("%w: %s", publication.ErrNotFound, paths.PublicationsCSV)
	}

	dbPath := config.DBPath(paths.Root)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, false, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		return nil, false, err
	}

	indexed, err := db.SourceDigest()
	if err != nil {
		db.Close()
		return nil, false, err
	}
	if !force && indexed == digest {
		return db, false, nil
	}

	records, err := publication.Load(paths.PublicationsCSV)
	if err != nil {
		db.Close()
		return nil, false, err
	}
	n, err := db.Rebuild(records, digest)
	if err != nil {
		db.Close()
		return nil, false, fmt.Errorf("rebuilding index: %w", err)
	}
	log.Info("Rebuilt publication index", zap.Int("records", n), zap.String("path", dbPath))

	return db, true, nil
}
