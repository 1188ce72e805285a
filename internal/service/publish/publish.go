package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/jgivc/gallerysync/internal/common"
	"github.com/jgivc/gallerysync/internal/entity"
	"github.com/jgivc/gallerysync/internal/util"
)

// publicIDSlugLen is how much of the slugged item id is appended to the
// public identifier to keep it unique without making URLs unwieldy.
const publicIDSlugLen = 12

type Resolver interface {
	Resolve(ctx context.Context, item *entity.RemoteItem, shareURL string) (string, error)
}

type Publisher interface {
	Upload(ctx context.Context, filePath, publicID string, overwrite bool) (string, error)
	URL(publicID string) (string, error)
}

type TempStore interface {
	Remove(path string)
}

// Pipeline publishes crawled image items one by one and assembles the trip
// manifest, preserving human-curated captions from the prior manifest.
type Pipeline struct {
	resolver  Resolver
	publisher Publisher
	store     TempStore
	prefix    string
	overwrite bool
	log       *slog.Logger
}

func New(resolver Resolver, publisher Publisher, store TempStore, prefix string, overwrite bool, log *slog.Logger) *Pipeline {
	return &Pipeline{
		resolver:  resolver,
		publisher: publisher,
		store:     store,
		prefix:    strings.Trim(prefix, "/"),
		overwrite: overwrite,
		log:       log.With(slog.String("item", "PublishPipeline")),
	}
}

// Run publishes the items in crawl order. Per-item failures are logged and
// skipped; an authentication rejection from the store aborts immediately
// since it means misconfiguration, not per-item noise.
func (p *Pipeline) Run(
	ctx context.Context,
	target entity.CrawlTarget,
	items []*entity.RemoteItem,
	existing map[string]entity.ManifestEntry,
) ([]entity.ManifestEntry, error) {
	var images []*entity.RemoteItem
	for _, item := range items {
		if item.IsImage() {
			images = append(images, item)
		}
	}

	var manifest []entity.ManifestEntry
	for index, item := range images {
		entry, err := p.publishOne(ctx, target, item, index+1, len(images), existing)
		if err != nil {
			if errors.Is(err, common.ErrAuthRejected) {
				return nil, fmt.Errorf("publish aborted for trip %s: %w", target.Trip, err)
			}

			p.log.Warn("Skipped item",
				slog.String("trip", target.Trip),
				slog.String("name", item.DisplayName()),
				slog.Int("index", index+1),
				slog.Int("total", len(images)),
				slog.Any("error", err))

			continue
		}

		manifest = append(manifest, entry)
	}

	return manifest, nil
}

func (p *Pipeline) publishOne(
	ctx context.Context,
	target entity.CrawlTarget,
	item *entity.RemoteItem,
	index, total int,
	existing map[string]entity.ManifestEntry,
) (entity.ManifestEntry, error) {
	var entry entity.ManifestEntry

	itemID, _ := item.ResolveIDs()
	if itemID == "" {
		return entry, fmt.Errorf("item has no id")
	}

	fileName := util.TextOrDefault(item.DisplayName(), fmt.Sprintf("photo-%d", index))

	filePath, err := p.resolver.Resolve(ctx, item, target.ShareURL)
	if err != nil {
		return entry, err
	}
	defer p.store.Remove(filePath)

	publicID := p.publicID(target.Trip, fileName, itemID)

	uploadedID, err := p.publisher.Upload(ctx, filePath, publicID, p.overwrite)
	switch {
	case err == nil:
		p.log.Info("Uploaded",
			slog.String("trip", target.Trip),
			slog.String("name", fileName),
			slog.Int("index", index),
			slog.Int("total", total))
	case !p.overwrite && errors.Is(err, common.ErrDuplicateAsset):
		// The identifier is deterministic, so a duplicate means a prior run
		// already published these bytes: reuse it.
		uploadedID = publicID
		p.log.Info("Reused existing",
			slog.String("trip", target.Trip),
			slog.String("name", fileName),
			slog.Int("index", index),
			slog.Int("total", total))
	default:
		return entry, err
	}

	src, err := p.publisher.URL(uploadedID)
	if err != nil {
		return entry, err
	}

	title, description := p.captions(fileName, index, target.Label, existing)

	return entity.ManifestEntry{
		Src:         src,
		Title:       title,
		Description: description,
		Name:        fileName,
	}, nil
}

// publicID derives the stable publish identifier. The same remote item always
// maps to the same id regardless of crawl order, which is what makes
// re-publication idempotent.
func (p *Pipeline) publicID(trip, fileName, itemID string) string {
	stem := strings.TrimSuffix(fileName, path.Ext(fileName))
	leaf := util.Slugify(stem)

	idSlug := util.Slugify(itemID)
	if len(idSlug) > publicIDSlugLen {
		idSlug = idSlug[:publicIDSlugLen]
	}
	if idSlug != "" {
		leaf = leaf + "-" + idSlug
	}

	folder := trip
	if p.prefix != "" {
		folder = p.prefix + "/" + trip
	}

	return folder + "/" + leaf
}

// captions resolves the manifest title and description, preferring rows a
// human already edited in the prior manifest (matched by source file name).
func (p *Pipeline) captions(fileName string, index int, tripLabel string, existing map[string]entity.ManifestEntry) (string, string) {
	var preservedTitle, preservedDescription string
	if prior, ok := existing[fileName]; ok {
		preservedTitle = strings.TrimSpace(prior.Title)
		preservedDescription = strings.TrimSpace(prior.Description)
	}

	title := preservedTitle
	if title == "" {
		title = util.TitleFromName(fileName, fmt.Sprintf("Photo %d", index))
	}

	description := preservedDescription
	if description == "" {
		description = util.DescriptionFor(title, tripLabel)
	}

	return title, description
}
