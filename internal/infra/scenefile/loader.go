package scenefile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/mkaji/scenebox/internal/domain/scene"
)

// LoadDirectory reads every snapshot file in dir and returns the parsed
// scenes keyed by file base name. An unreadable directory is an error;
// an unreadable or corrupt file is logged and skipped.
func LoadDirectory(dir string) (map[string]*scene.Scene, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scene directory")
	}

	scenes := make(map[string]*scene.Scene)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			zlog.Warn().Err(err).Msgf("skipping unreadable scene file: %s", path)
			continue
		}

		name := strings.TrimSuffix(entry.Name(), Ext)
		sc, err := Parse(name, data)
		if err != nil {
			zlog.Warn().Err(err).Msgf("skipping invalid scene file: %s", path)
			continue
		}

		scenes[name] = sc
		zlog.Debug().Msgf("loaded scene %s (%d items, %d bytes, %s)", name, sc.Items, sc.Size(), sc.Bounds)
	}

	return scenes, nil
}
