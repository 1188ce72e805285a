package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/jgivc/gallerysync/internal/common"
	"github.com/jgivc/gallerysync/internal/entity"
	"github.com/jgivc/gallerysync/internal/util"
)

// Source is the remote side of content resolution: metadata refetches,
// binary fetches, and the API-specific candidate endpoint shapes.
type Source interface {
	GetItem(ctx context.Context, itemURL string) (*entity.RemoteItem, error)
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error)
	MetadataCandidates(driveID, shareURL string, itemIDs []string) []string
	ContentCandidates(driveID, shareURL string, itemIDs []string, name string) []string
	ThumbnailContentCandidates(driveID, shareURL string, itemIDs []string) []string
}

type TempStore interface {
	Save(ctx context.Context, r io.Reader, ext string) (string, error)
}

// Resolver turns a discovered item into a local temp file by trying an
// ordered cascade of access paths. The listing API populates download routes
// inconsistently, so no single route is trusted: each tier's candidates are
// exhausted before the next tier is even constructed.
type Resolver struct {
	source Source
	store  TempStore
	log    *slog.Logger
}

func New(source Source, store TempStore, log *slog.Logger) *Resolver {
	return &Resolver{
		source: source,
		store:  store,
		log:    log.With(slog.String("item", "Resolver")),
	}
}

// Resolve downloads the item's bytes into a temp file and returns its path.
// When every tier is exhausted the last failure is surfaced, wrapped as a
// no-content error.
func (r *Resolver) Resolve(ctx context.Context, item *entity.RemoteItem, shareURL string) (string, error) {
	itemIDs := item.ItemIDs()
	if len(itemIDs) == 0 {
		return "", fmt.Errorf("%w: item has no id", common.ErrNoContent)
	}

	_, driveID := item.ResolveIDs()
	name := item.DisplayName()

	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		ext = ".jpg"
	}

	attempt := &attemptState{ext: ext}

	tiers := []func(ctx context.Context) []string{
		func(context.Context) []string {
			return fieldURLs(item)
		},
		func(ctx context.Context) []string {
			return r.refetchedURLs(ctx, driveID, shareURL, itemIDs)
		},
		func(context.Context) []string {
			return r.source.ContentCandidates(driveID, shareURL, itemIDs, name)
		},
		func(context.Context) []string {
			return r.source.ThumbnailContentCandidates(driveID, shareURL, itemIDs)
		},
	}

	for _, tier := range tiers {
		if filePath, ok := r.tryURLs(ctx, tier(ctx), attempt); ok {
			return filePath, nil
		}
	}

	if attempt.lastErr != nil {
		return "", fmt.Errorf("%w: %v", common.ErrNoContent, attempt.lastErr)
	}

	return "", common.ErrNoContent
}

type attemptState struct {
	ext     string
	seen    map[string]struct{}
	lastErr error
}

// tryURLs attempts each not-yet-tried URL in order, returning the temp file
// path of the first success. Failures only update the last error; the
// cascade decides when to give up.
func (r *Resolver) tryURLs(ctx context.Context, urls []string, state *attemptState) (string, bool) {
	if state.seen == nil {
		state.seen = make(map[string]struct{})
	}

	for _, candidate := range urls {
		if candidate == "" {
			continue
		}
		if _, tried := state.seen[candidate]; tried {
			continue
		}
		state.seen[candidate] = struct{}{}

		body, err := r.source.Fetch(ctx, candidate)
		if err != nil {
			state.lastErr = err

			continue
		}

		filePath, err := r.store.Save(ctx, body, state.ext)
		body.Close()
		if err != nil {
			state.lastErr = err

			continue
		}

		return filePath, true
	}

	return "", false
}

// fieldURLs gathers tier-1 candidates: the item's and its alias's direct
// download URLs, then their thumbnails largest-first.
func fieldURLs(item *entity.RemoteItem) []string {
	urls := []string{item.DownloadURL}
	if item.RemoteItem != nil {
		urls = append(urls, item.RemoteItem.DownloadURL)
	}
	urls = append(urls, item.ThumbnailURLs()...)
	if item.RemoteItem != nil {
		urls = append(urls, item.RemoteItem.ThumbnailURLs()...)
	}

	return util.UniqueStrings(urls)
}

// refetchedURLs is tier 2: re-request the item's metadata through every
// addressable shape and gather whatever download routes the fresh responses
// carry. A metadata fetch that fails is skipped, not fatal; the tier simply
// yields fewer candidates.
func (r *Resolver) refetchedURLs(ctx context.Context, driveID, shareURL string, itemIDs []string) []string {
	var urls []string
	for _, metadataURL := range r.source.MetadataCandidates(driveID, shareURL, itemIDs) {
		payload, err := r.source.GetItem(ctx, metadataURL)
		if err != nil || payload == nil {
			continue
		}

		urls = append(urls, payload.DownloadURL)
		urls = append(urls, payload.ThumbnailURLs()...)
		if payload.RemoteItem != nil {
			urls = append(urls, payload.RemoteItem.DownloadURL)
			urls = append(urls, payload.RemoteItem.ThumbnailURLs()...)
		}
	}

	return util.UniqueStrings(urls)
}
