package crawler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jgivc/gallerysync/internal/entity"
)

const (
	modeShareRoot = "share_root"
	modeDriveItem = "drive_item"
	modeShareItem = "share_item"
)

type Lister interface {
	ListShareChildren(ctx context.Context, shareURL string, limit int) ([]*entity.RemoteItem, error)
	ListDriveChildren(ctx context.Context, driveID, itemID string, limit int) ([]*entity.RemoteItem, error)
	ListShareItemChildren(ctx context.Context, shareURL, itemID string, limit int) ([]*entity.RemoteItem, error)
}

// node is one queued traversal unit. Folder children keep the drive address
// when it resolves, otherwise they stay share-relative.
type node struct {
	mode     string
	shareURL string
	driveID  string
	itemID   string
	depth    int
}

type driveKey struct{ driveID, itemID string }
type shareKey struct{ shareURL, itemID string }

// Crawler walks a remote folder tree breadth-first, collecting image items.
// Shallower items across all branches are discovered before deeper ones;
// that ordering is the manifest's ordering contract.
type Crawler struct {
	lister   Lister
	maxItems int
	maxDepth int
	log      *slog.Logger
}

func New(lister Lister, maxItems, maxDepth int, log *slog.Logger) *Crawler {
	return &Crawler{
		lister:   lister,
		maxItems: maxItems,
		maxDepth: maxDepth,
		log:      log.With(slog.String("item", "Crawler")),
	}
}

// Collect crawls one target and returns its image items in visit order.
// A listing failure aborts the whole crawl: downstream idempotence depends on
// the tree having been seen completely up to maxDepth, so a partial crawl is
// never silently accepted.
func (c *Crawler) Collect(ctx context.Context, target entity.CrawlTarget) ([]*entity.RemoteItem, error) {
	seed := node{mode: modeShareRoot, shareURL: target.ShareURL}
	if target.Mode == entity.TargetModeDriveItem {
		seed = node{mode: modeDriveItem, shareURL: target.ShareURL, driveID: target.DriveID, itemID: target.ItemID}
	}

	// Listings are capped generously per call; the item cap is enforced
	// on the collected output.
	listLimit := c.maxItems
	if listLimit < 200 {
		listLimit = 200
	}

	queue := []node{seed}
	visitedDrive := make(map[driveKey]struct{})
	visitedShare := make(map[shareKey]struct{})
	var images []*entity.RemoteItem

	for len(queue) > 0 && len(images) < c.maxItems {
		current := queue[0]
		queue = queue[1:]

		children, visited, err := c.listNode(ctx, current, listLimit, visitedDrive, visitedShare)
		if err != nil {
			return nil, err
		}
		if visited {
			continue
		}

		for _, child := range children {
			if child.IsImage() {
				images = append(images, child)
				if len(images) >= c.maxItems {
					break
				}
			}

			if current.depth >= c.maxDepth || !child.IsFolder() {
				continue
			}

			childItemID, childDriveID := child.ResolveIDs()
			if childItemID == "" {
				continue
			}

			next := node{shareURL: current.shareURL, itemID: childItemID, depth: current.depth + 1}
			if childDriveID != "" {
				next.mode = modeDriveItem
				next.driveID = childDriveID
			} else if current.shareURL != "" {
				next.mode = modeShareItem
			} else {
				continue
			}

			queue = append(queue, next)
		}
	}

	c.log.Info("Crawl finished",
		slog.String("trip", target.Trip),
		slog.Int("images", len(images)),
		slog.Int("folders_visited", len(visitedDrive)+len(visitedShare)))

	return images, nil
}

// listNode lists one node's children, marking it visited first. A node whose
// address was already visited reports visited=true and is skipped: that is
// the guard against duplicate links and folder cycles.
func (c *Crawler) listNode(
	ctx context.Context,
	current node,
	limit int,
	visitedDrive map[driveKey]struct{},
	visitedShare map[shareKey]struct{},
) ([]*entity.RemoteItem, bool, error) {
	switch current.mode {
	case modeDriveItem:
		if current.driveID == "" || current.itemID == "" {
			return nil, true, nil
		}
		key := driveKey{driveID: current.driveID, itemID: current.itemID}
		if _, ok := visitedDrive[key]; ok {
			return nil, true, nil
		}
		visitedDrive[key] = struct{}{}

		children, err := c.lister.ListDriveChildren(ctx, current.driveID, current.itemID, limit)
		if err != nil {
			return nil, false, fmt.Errorf("cannot list drive folder %s/%s: %w", current.driveID, current.itemID, err)
		}

		return children, false, nil

	case modeShareItem:
		if current.shareURL == "" || current.itemID == "" {
			return nil, true, nil
		}
		key := shareKey{shareURL: current.shareURL, itemID: current.itemID}
		if _, ok := visitedShare[key]; ok {
			return nil, true, nil
		}
		visitedShare[key] = struct{}{}

		children, err := c.lister.ListShareItemChildren(ctx, current.shareURL, current.itemID, limit)
		if err != nil {
			return nil, false, fmt.Errorf("cannot list share folder item %s: %w", current.itemID, err)
		}

		return children, false, nil

	default:
		if current.shareURL == "" {
			return nil, true, nil
		}

		children, err := c.lister.ListShareChildren(ctx, current.shareURL, limit)
		if err != nil {
			return nil, false, fmt.Errorf("cannot list share root: %w", err)
		}

		return children, false, nil
	}
}
