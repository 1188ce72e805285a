package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jgivc/gallerysync/internal/entity"
)

type listCall struct {
	kind    string
	driveID string
	itemID  string
}

type fakeLister struct {
	shareRoot     []*entity.RemoteItem
	driveChildren map[string][]*entity.RemoteItem // key driveID/itemID
	shareChildren map[string][]*entity.RemoteItem // key itemID
	failDrive     map[string]error
	calls         []listCall
}

func (f *fakeLister) ListShareChildren(_ context.Context, shareURL string, _ int) ([]*entity.RemoteItem, error) {
	f.calls = append(f.calls, listCall{kind: "share_root"})

	return f.shareRoot, nil
}

func (f *fakeLister) ListDriveChildren(_ context.Context, driveID, itemID string, _ int) ([]*entity.RemoteItem, error) {
	f.calls = append(f.calls, listCall{kind: "drive", driveID: driveID, itemID: itemID})

	key := driveID + "/" + itemID
	if err := f.failDrive[key]; err != nil {
		return nil, err
	}

	return f.driveChildren[key], nil
}

func (f *fakeLister) ListShareItemChildren(_ context.Context, shareURL, itemID string, _ int) ([]*entity.RemoteItem, error) {
	f.calls = append(f.calls, listCall{kind: "share_item", itemID: itemID})

	return f.shareChildren[itemID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func image(name string) *entity.RemoteItem {
	return &entity.RemoteItem{ID: "id-" + name, Name: name, File: &entity.FileFacet{MimeType: "image/jpeg"}}
}

func driveFolder(name, driveID, itemID string) *entity.RemoteItem {
	return &entity.RemoteItem{
		ID:              itemID,
		Name:            name,
		Folder:          &entity.FolderFacet{},
		ParentReference: &entity.ParentReference{DriveID: driveID},
	}
}

func shareFolder(name, itemID string) *entity.RemoteItem {
	return &entity.RemoteItem{ID: itemID, Name: name, Folder: &entity.FolderFacet{}}
}

func shareTarget() entity.CrawlTarget {
	return entity.CrawlTarget{Trip: "trip", Mode: entity.TargetModeShare, ShareURL: "https://share/abc"}
}

func names(items []*entity.RemoteItem) []string {
	var out []string
	for _, item := range items {
		out = append(out, item.Name)
	}

	return out
}

func TestCollectBreadthFirstOrder(t *testing.T) {
	// Root: img a, folder F1, img b, folder F2. F1: img c, folder F3.
	// F2: img d. F3: img e. BFS discovers a,b before c,d before e.
	lister := &fakeLister{
		shareRoot: []*entity.RemoteItem{
			image("a.jpg"),
			driveFolder("F1", "d1", "f1"),
			image("b.jpg"),
			driveFolder("F2", "d1", "f2"),
		},
		driveChildren: map[string][]*entity.RemoteItem{
			"d1/f1": {image("c.jpg"), driveFolder("F3", "d1", "f3")},
			"d1/f2": {image("d.jpg")},
			"d1/f3": {image("e.jpg")},
		},
	}

	images, err := New(lister, 50, 5, testLogger()).Collect(context.Background(), shareTarget())
	require.NoError(t, err)
	require.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"}, names(images))
}

func TestCollectHonorsMaxDepth(t *testing.T) {
	lister := &fakeLister{
		shareRoot: []*entity.RemoteItem{
			image("a.jpg"),
			driveFolder("F1", "d1", "f1"),
		},
		driveChildren: map[string][]*entity.RemoteItem{
			"d1/f1": {image("b.jpg"), driveFolder("F2", "d1", "f2")},
			"d1/f2": {image("never.jpg")},
		},
	}

	images, err := New(lister, 50, 1, testLogger()).Collect(context.Background(), shareTarget())
	require.NoError(t, err)
	require.Equal(t, []string{"a.jpg", "b.jpg"}, names(images))

	for _, call := range lister.calls {
		require.NotEqual(t, "f2", call.itemID, "folder beyond max depth must not be expanded")
	}
}

func TestCollectHonorsMaxItems(t *testing.T) {
	lister := &fakeLister{
		shareRoot: []*entity.RemoteItem{
			image("a.jpg"), image("b.jpg"), image("c.jpg"), image("d.jpg"),
		},
	}

	images, err := New(lister, 2, 5, testLogger()).Collect(context.Background(), shareTarget())
	require.NoError(t, err)
	require.Equal(t, []string{"a.jpg", "b.jpg"}, names(images))
}

func TestCollectNeverRevisitsAnAddress(t *testing.T) {
	// F1 and F2 both link to F1 (a folder loop). Each address is listed once.
	lister := &fakeLister{
		shareRoot: []*entity.RemoteItem{
			driveFolder("F1", "d1", "f1"),
			driveFolder("F2", "d1", "f2"),
		},
		driveChildren: map[string][]*entity.RemoteItem{
			"d1/f1": {image("a.jpg"), driveFolder("F2", "d1", "f2")},
			"d1/f2": {image("b.jpg"), driveFolder("F1", "d1", "f1")},
		},
	}

	images, err := New(lister, 50, 10, testLogger()).Collect(context.Background(), shareTarget())
	require.NoError(t, err)
	require.Equal(t, []string{"a.jpg", "b.jpg"}, names(images))

	counts := make(map[listCall]int)
	for _, call := range lister.calls {
		counts[call]++
	}
	for call, count := range counts {
		require.Equal(t, 1, count, "address listed more than once: %+v", call)
	}
}

func TestCollectFallsBackToShareAddressing(t *testing.T) {
	// A folder without a resolvable drive id is crawled share-relative.
	lister := &fakeLister{
		shareRoot: []*entity.RemoteItem{shareFolder("F1", "f1")},
		shareChildren: map[string][]*entity.RemoteItem{
			"f1": {image("a.jpg")},
		},
	}

	images, err := New(lister, 50, 5, testLogger()).Collect(context.Background(), shareTarget())
	require.NoError(t, err)
	require.Equal(t, []string{"a.jpg"}, names(images))
	require.Equal(t, "share_item", lister.calls[1].kind)
}

func TestCollectStartsFromDriveItemTarget(t *testing.T) {
	lister := &fakeLister{
		driveChildren: map[string][]*entity.RemoteItem{
			"d9/root": {image("a.jpg")},
		},
	}

	target := entity.CrawlTarget{
		Trip:     "trip",
		Mode:     entity.TargetModeDriveItem,
		ShareURL: "https://share/abc",
		DriveID:  "d9",
		ItemID:   "root",
	}

	images, err := New(lister, 50, 5, testLogger()).Collect(context.Background(), target)
	require.NoError(t, err)
	require.Equal(t, []string{"a.jpg"}, names(images))
	require.Equal(t, []listCall{{kind: "drive", driveID: "d9", itemID: "root"}}, lister.calls)
}

func TestCollectPropagatesListingFailure(t *testing.T) {
	lister := &fakeLister{
		shareRoot: []*entity.RemoteItem{
			image("a.jpg"),
			driveFolder("F1", "d1", "f1"),
		},
		failDrive: map[string]error{"d1/f1": fmt.Errorf("listing exploded")},
	}

	_, err := New(lister, 50, 5, testLogger()).Collect(context.Background(), shareTarget())
	require.Error(t, err)
	require.Contains(t, err.Error(), "listing exploded")
}
