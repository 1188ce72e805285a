package tempfile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// chunkSize is the streaming copy buffer for downloads.
const chunkSize = 64 * 1024

// Store writes downloaded bytes into uniquely named temp files. Each file is
// owned by the publishing iteration that created it and must be removed
// before the next iteration begins.
type Store struct {
	fs  afero.Fs
	dir string
	log *slog.Logger
}

func New(fs afero.Fs, dir string, log *slog.Logger) *Store {
	return &Store{
		fs:  fs,
		dir: dir,
		log: log.With(slog.String("item", "TempfileStore")),
	}
}

// Save streams r into a new temp file with the given extension and returns
// its path. An empty result is an error: a zero-byte download indicates a
// broken source, never a valid image.
func (s *Store) Save(ctx context.Context, r io.Reader, ext string) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create temp dir %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, uuid.NewString()+ext)
	file, err := s.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("cannot create temp file %s: %w", path, err)
	}

	written, err := io.CopyBuffer(file, &contextReader{ctx: ctx, r: r}, make([]byte, chunkSize))
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.Remove(path)

		return "", fmt.Errorf("cannot write temp file %s: %w", path, err)
	}

	if written == 0 {
		s.Remove(path)

		return "", fmt.Errorf("downloaded content is empty")
	}

	return path, nil
}

// Remove deletes a temp file, logging instead of failing: cleanup must never
// mask the error that preceded it.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}

	if err := s.fs.Remove(path); err != nil {
		s.log.Warn("Cannot remove temp file", slog.String("path", path), slog.Any("error", err))
	}
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
