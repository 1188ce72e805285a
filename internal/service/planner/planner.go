package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jgivc/gallerysync/internal/common"
	"github.com/jgivc/gallerysync/internal/entity"
	"github.com/jgivc/gallerysync/internal/util"
)

// childListLimit caps the subfolder enumeration of a children-mode trip.
const childListLimit = 200

type ShareLister interface {
	ListShareChildren(ctx context.Context, shareURL string, limit int) ([]*entity.RemoteItem, error)
}

// Planner expands the normalized trip map into concrete crawl targets: one
// per single-mode trip, one per subfolder for children-mode trips.
type Planner struct {
	lister ShareLister
	log    *slog.Logger
}

func New(lister ShareLister, log *slog.Logger) *Planner {
	return &Planner{
		lister: lister,
		log:    log.With(slog.String("item", "Planner")),
	}
}

// Expand resolves every trip map entry, in sorted key order so output is
// deterministic. Any ambiguity (duplicate keys, empty children expansion,
// unresolvable folder ids) is a configuration error that aborts planning.
func (p *Planner) Expand(ctx context.Context, trips map[string]entity.TripConfig) ([]entity.CrawlTarget, error) {
	keys := make([]string, 0, len(trips))
	for key := range trips {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := make(map[string]struct{})
	var targets []entity.CrawlTarget

	for _, key := range keys {
		cfg := trips[key]
		if strings.TrimSpace(cfg.ShareURL) == "" {
			return nil, fmt.Errorf("%w: trip %q is missing share_url", common.ErrInvalidTripMap, key)
		}

		if cfg.Mode == entity.TripModeChildren {
			expanded, err := p.expandChildren(ctx, key, cfg, seen)
			if err != nil {
				return nil, err
			}
			targets = append(targets, expanded...)

			continue
		}

		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate trip key %q", common.ErrInvalidTripMap, key)
		}
		seen[key] = struct{}{}

		label := util.TextOrDefault(cfg.Label, titleFromKey(key))
		targets = append(targets, entity.CrawlTarget{
			Trip:     key,
			Label:    label,
			Mode:     entity.TargetModeShare,
			ShareURL: cfg.ShareURL,
		})
	}

	return targets, nil
}

func (p *Planner) expandChildren(ctx context.Context, key string, cfg entity.TripConfig, seen map[string]struct{}) ([]entity.CrawlTarget, error) {
	children, err := p.lister.ListShareChildren(ctx, cfg.ShareURL, childListLimit)
	if err != nil {
		return nil, fmt.Errorf("cannot list subfolders for trip %q: %w", key, err)
	}

	var folders []*entity.RemoteItem
	for _, child := range children {
		if child.IsFolder() && child.DisplayName() != "" {
			folders = append(folders, child)
		}
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("%w: trip %q has children_as_trips but no subfolders were found", common.ErrInvalidTripMap, key)
	}

	sort.SliceStable(folders, func(i, j int) bool {
		return strings.ToLower(folders[i].DisplayName()) < strings.ToLower(folders[j].DisplayName())
	})

	var targets []entity.CrawlTarget
	for _, folder := range folders {
		name := folder.DisplayName()

		trip := util.Slugify(name)
		if cfg.Prefix != "" {
			trip = util.Slugify(cfg.Prefix) + "-" + trip
		}
		if _, dup := seen[trip]; dup {
			return nil, fmt.Errorf("%w: duplicate trip key %q derived from folder %q", common.ErrInvalidTripMap, trip, name)
		}

		itemID, driveID := folder.ResolveIDs()
		if itemID == "" || driveID == "" {
			return nil, fmt.Errorf("%w: cannot resolve drive/item ids for subfolder %q", common.ErrInvalidTripMap, name)
		}

		seen[trip] = struct{}{}
		targets = append(targets, entity.CrawlTarget{
			Trip:     trip,
			Label:    name,
			Mode:     entity.TargetModeDriveItem,
			ShareURL: cfg.ShareURL,
			DriveID:  driveID,
			ItemID:   itemID,
		})

		p.log.Info("Planned child trip", slog.String("trip", trip), slog.String("folder", name))
	}

	return targets, nil
}

func titleFromKey(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "-", " "), " ")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}

	return strings.Join(words, " ")
}
