package tempfile

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newStore(fs afero.Fs) *Store {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	return New(fs, "/tmp/gallerysync", log)
}

func TestSaveWritesUniqueFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newStore(fs)

	first, err := store.Save(context.Background(), strings.NewReader("jpeg-bytes"), ".jpg")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(first, "/tmp/gallerysync/"))
	require.True(t, strings.HasSuffix(first, ".jpg"))

	second, err := store.Save(context.Background(), strings.NewReader("more"), ".png")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.True(t, strings.HasSuffix(second, ".png"))

	data, err := afero.ReadFile(fs, first)
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(data))
}

func TestSaveRejectsEmptyReader(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newStore(fs)

	_, err := store.Save(context.Background(), strings.NewReader(""), ".jpg")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty")

	empty, err := afero.IsEmpty(fs, "/tmp/gallerysync")
	require.NoError(t, err)
	require.True(t, empty)
}

func TestSaveStopsOnCancelledContext(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newStore(fs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, strings.NewReader("jpeg-bytes"), ".jpg")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRemoveToleratesMissingFile(t *testing.T) {
	store := newStore(afero.NewMemMapFs())

	store.Remove("/tmp/gallerysync/nope.jpg")
	store.Remove("")
}
