package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/jgivc/gallerysync/internal/adapter/cloudinary"
	"github.com/jgivc/gallerysync/internal/adapter/graph"
	"github.com/jgivc/gallerysync/internal/common"
	"github.com/jgivc/gallerysync/internal/config"
	"github.com/jgivc/gallerysync/internal/entity"
	"github.com/jgivc/gallerysync/internal/repository/manifest"
	"github.com/jgivc/gallerysync/internal/service/crawler"
	"github.com/jgivc/gallerysync/internal/service/planner"
	"github.com/jgivc/gallerysync/internal/service/publish"
	"github.com/jgivc/gallerysync/internal/service/resolver"
	"github.com/jgivc/gallerysync/internal/storage/tempfile"
)

const (
	tokenTimeout = 30 * time.Second

	// diagnosticLimit bounds the first-page dump logged when a trip yields
	// nothing: enough to see what the share actually contains.
	diagnosticLimit = 20
	diagnosticRows  = 10
)

// App wires the sync: token exchange, trip planning, then one crawl and
// publish pass per trip. Trips are independent; a failed trip is recorded and
// the next one proceeds. Only an authentication rejection stops the run.
type App struct {
	cfg *config.Config
	log *slog.Logger
}

func New(cfg *config.Config, log *slog.Logger) *App {
	return &App{
		cfg: cfg,
		log: log.With(slog.String("item", "App")),
	}
}

func (a *App) Run(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	if strings.TrimSpace(a.cfg.TripMap) == "" {
		return fmt.Errorf("%w: no trip map configured, provide --map-json or TRIP_SHARE_URLS_JSON", common.ErrInvalidTripMap)
	}

	trips, err := config.ParseTripMap(a.cfg.TripMap)
	if err != nil {
		return err
	}

	tokenCtx, cancel := context.WithTimeout(ctx, tokenTimeout)
	defer cancel()

	token, err := graph.ExchangeRefreshToken(tokenCtx, &http.Client{Timeout: tokenTimeout}, graph.TokenConfig{
		ClientID:     a.cfg.Graph.ClientID,
		ClientSecret: a.cfg.Graph.ClientSecret,
		RefreshToken: a.cfg.Graph.RefreshToken,
		Tenant:       a.cfg.Graph.Tenant,
		Scope:        a.cfg.Graph.Scope,
	})
	if err != nil {
		return fmt.Errorf("cannot obtain access token: %w", err)
	}

	client := graph.New(graph.ClientConfig{Token: token}, a.log)

	publisher, err := cloudinary.New(a.cfg.Cloudinary, a.log)
	if err != nil {
		return err
	}

	targets, err := planner.New(client, a.log).Expand(ctx, trips)
	if err != nil {
		return fmt.Errorf("cannot expand trip targets: %w", err)
	}

	fs := afero.NewOsFs()
	store := tempfile.New(fs, a.cfg.TempDir, a.log)
	manifests := manifest.New(fs, a.cfg.DataDir, a.log)
	crawl := crawler.New(client, a.cfg.MaxItems, a.cfg.MaxDepth, a.log)
	pipeline := publish.New(
		resolver.New(client, store, a.log),
		publisher,
		store,
		a.cfg.FolderPrefix,
		a.cfg.Overwrite,
		a.log,
	)

	return a.syncAll(ctx, client, crawl, pipeline, manifests, targets)
}

// syncAll runs the trips sequentially. A failed trip is recorded and the rest
// proceed; only an authentication rejection aborts the run, since every later
// upload would fail the same way.
func (a *App) syncAll(
	ctx context.Context,
	lister crawler.Lister,
	crawl *crawler.Crawler,
	pipeline *publish.Pipeline,
	manifests *manifest.Repository,
	targets []entity.CrawlTarget,
) error {
	var failures []string
	for _, target := range targets {
		a.log.Info("Syncing trip", slog.String("trip", target.Trip), slog.String("label", target.Label))

		if err := a.syncTrip(ctx, lister, crawl, pipeline, manifests, target); err != nil {
			if errors.Is(err, common.ErrAuthRejected) {
				return err
			}

			failures = append(failures, fmt.Sprintf("%s: %v", target.Trip, err))
			a.log.Error("Trip failed", slog.String("trip", target.Trip), slog.Any("error", err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d trips failed: %s", len(failures), len(targets), strings.Join(failures, "; "))
	}

	a.log.Info("All trips synced", slog.Int("trips", len(targets)))

	return nil
}

func (a *App) syncTrip(
	ctx context.Context,
	lister crawler.Lister,
	crawl *crawler.Crawler,
	pipeline *publish.Pipeline,
	manifests *manifest.Repository,
	target entity.CrawlTarget,
) error {
	items, err := crawl.Collect(ctx, target)
	if err != nil {
		return err
	}

	existing := entity.MetadataByName(manifests.Load(target.Trip))

	entries, err := pipeline.Run(ctx, target, items, existing)
	if err != nil {
		return err
	}

	// An empty result is indistinguishable from a misconfigured share, so it
	// is a failure, with a first-page dump to aid debugging.
	if len(entries) == 0 {
		a.dumpFirstPage(ctx, lister, target)

		return fmt.Errorf("%w in shared folder for trip %s", common.ErrNoImagesFound, target.Trip)
	}

	path, err := manifests.Save(target.Trip, entries)
	if err != nil {
		return err
	}

	a.log.Info("Manifest updated",
		slog.String("trip", target.Trip),
		slog.String("path", path),
		slog.Int("photos", len(entries)))

	return nil
}

// dumpFirstPage logs the first listing page of an empty trip with its
// classification flags. Best effort only: its own failure is logged and
// swallowed.
func (a *App) dumpFirstPage(ctx context.Context, lister crawler.Lister, target entity.CrawlTarget) {
	var (
		items []*entity.RemoteItem
		err   error
	)
	if target.Mode == entity.TargetModeDriveItem && target.DriveID != "" && target.ItemID != "" {
		items, err = lister.ListDriveChildren(ctx, target.DriveID, target.ItemID, diagnosticLimit)
	} else {
		items, err = lister.ListShareChildren(ctx, target.ShareURL, diagnosticLimit)
	}
	if err != nil {
		a.log.Warn("Debug listing failed", slog.String("trip", target.Trip), slog.Any("error", err))

		return
	}

	if len(items) == 0 {
		a.log.Warn("Debug listing returned no children", slog.String("trip", target.Trip))

		return
	}

	var folders, files, images int
	for _, item := range items {
		if item.IsFolder() {
			folders++
		}
		if item.File != nil || (item.RemoteItem != nil && item.RemoteItem.File != nil) {
			files++
		}
		if item.IsImage() {
			images++
		}
	}

	a.log.Warn("Debug listing",
		slog.String("trip", target.Trip),
		slog.Int("total", len(items)),
		slog.Int("folders", folders),
		slog.Int("files", files),
		slog.Int("image_detected", images))

	for i, item := range items {
		if i >= diagnosticRows {
			break
		}

		mime, remoteMime := "-", "-"
		if item.File != nil && item.File.MimeType != "" {
			mime = item.File.MimeType
		}
		if item.RemoteItem != nil && item.RemoteItem.File != nil && item.RemoteItem.File.MimeType != "" {
			remoteMime = item.RemoteItem.File.MimeType
		}

		a.log.Warn("Debug item",
			slog.String("name", strings.TrimSpace(item.DisplayName())),
			slog.Bool("folder", item.IsFolder()),
			slog.Bool("image", item.IsImage()),
			slog.String("mime", mime),
			slog.String("remote_mime", remoteMime))
	}
}
