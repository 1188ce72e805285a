package manifest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/jgivc/gallerysync/internal/entity"
)

// Repository reads and writes per-trip gallery manifests: data/<trip>.json,
// one ordered JSON array per trip.
type Repository struct {
	fs  afero.Fs
	dir string
	log *slog.Logger
}

func New(fs afero.Fs, dir string, log *slog.Logger) *Repository {
	return &Repository{
		fs:  fs,
		dir: dir,
		log: log.With(slog.String("item", "ManifestRepository")),
	}
}

// Load returns the prior manifest for a trip, or nil when there is none.
// A malformed prior manifest degrades to empty: metadata preservation is
// best-effort and must never block a sync. Both the bare-array format and the
// legacy {"photos": [...]} wrapper are accepted.
func (r *Repository) Load(trip string) []entity.ManifestEntry {
	data, err := afero.ReadFile(r.fs, r.path(trip))
	if err != nil {
		if !os.IsNotExist(err) {
			r.log.Warn("Cannot read prior manifest", slog.String("trip", trip), slog.Any("error", err))
		}

		return nil
	}

	var entries []entity.ManifestEntry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries
	}

	var wrapped struct {
		Photos []entity.ManifestEntry `json:"photos"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		return wrapped.Photos
	}

	r.log.Warn("Prior manifest is not valid JSON, ignoring", slog.String("trip", trip))

	return nil
}

// Save writes the manifest with stable two-space indentation so successive
// runs produce reviewable diffs.
func (r *Repository) Save(trip string, entries []entity.ManifestEntry) (string, error) {
	if err := r.fs.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create manifest dir %s: %w", r.dir, err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("cannot encode manifest for %s: %w", trip, err)
	}
	data = append(data, '\n')

	path := r.path(trip)
	if err := afero.WriteFile(r.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("cannot write manifest %s: %w", path, err)
	}

	return path, nil
}

func (r *Repository) path(trip string) string {
	return filepath.Join(r.dir, trip+".json")
}
