package planner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jgivc/gallerysync/internal/common"
	"github.com/jgivc/gallerysync/internal/entity"
)

type fakeLister struct {
	children map[string][]*entity.RemoteItem
	err      error
}

func (f *fakeLister) ListShareChildren(_ context.Context, shareURL string, _ int) ([]*entity.RemoteItem, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.children[shareURL], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func folder(name, itemID, driveID string) *entity.RemoteItem {
	return &entity.RemoteItem{
		ID:              itemID,
		Name:            name,
		Folder:          &entity.FolderFacet{},
		ParentReference: &entity.ParentReference{DriveID: driveID},
	}
}

func TestExpandSingleTrip(t *testing.T) {
	p := New(&fakeLister{}, testLogger())

	targets, err := p.Expand(context.Background(), map[string]entity.TripConfig{
		"iceland": {Key: "iceland", Mode: entity.TripModeSingle, ShareURL: "https://share/abc", Label: "Iceland"},
	})
	require.NoError(t, err)
	require.Equal(t, []entity.CrawlTarget{
		{Trip: "iceland", Label: "Iceland", Mode: entity.TargetModeShare, ShareURL: "https://share/abc"},
	}, targets)
}

func TestExpandDerivesLabelFromKey(t *testing.T) {
	p := New(&fakeLister{}, testLogger())

	targets, err := p.Expand(context.Background(), map[string]entity.TripConfig{
		"south-island": {Key: "south-island", Mode: entity.TripModeSingle, ShareURL: "https://share/abc"},
	})
	require.NoError(t, err)
	require.Equal(t, "South Island", targets[0].Label)
}

func TestExpandChildrenSortsAndPrefixes(t *testing.T) {
	lister := &fakeLister{children: map[string][]*entity.RemoteItem{
		"https://share/root": {
			folder("Zanzibar", "i-z", "d1"),
			{ID: "img", Name: "cover.jpg", File: &entity.FileFacet{MimeType: "image/jpeg"}},
			folder("Arusha", "i-a", "d1"),
		},
	}}
	p := New(lister, testLogger())

	targets, err := p.Expand(context.Background(), map[string]entity.TripConfig{
		"tanzania": {Key: "tanzania", Mode: entity.TripModeChildren, ShareURL: "https://share/root", Prefix: "Tanzania"},
	})
	require.NoError(t, err)
	require.Len(t, targets, 2)

	require.Equal(t, "tanzania-arusha", targets[0].Trip)
	require.Equal(t, "Arusha", targets[0].Label)
	require.Equal(t, entity.TargetModeDriveItem, targets[0].Mode)
	require.Equal(t, "d1", targets[0].DriveID)
	require.Equal(t, "i-a", targets[0].ItemID)

	require.Equal(t, "tanzania-zanzibar", targets[1].Trip)
}

func TestExpandChildrenUsesAliasIDs(t *testing.T) {
	aliased := &entity.RemoteItem{
		ID:   "local",
		Name: "Day 1",
		RemoteItem: &entity.RemoteItem{
			ID:              "remote",
			Folder:          &entity.FolderFacet{},
			ParentReference: &entity.ParentReference{DriveID: "owner-drive"},
		},
	}
	lister := &fakeLister{children: map[string][]*entity.RemoteItem{"https://share/root": {aliased}}}

	targets, err := New(lister, testLogger()).Expand(context.Background(), map[string]entity.TripConfig{
		"trip": {Key: "trip", Mode: entity.TripModeChildren, ShareURL: "https://share/root"},
	})
	require.NoError(t, err)
	require.Equal(t, "remote", targets[0].ItemID)
	require.Equal(t, "owner-drive", targets[0].DriveID)
	require.Equal(t, "day-1", targets[0].Trip)
}

func TestExpandFailures(t *testing.T) {
	testCases := []struct {
		name   string
		trips  map[string]entity.TripConfig
		lister *fakeLister
	}{
		{
			name: "missing share url",
			trips: map[string]entity.TripConfig{
				"x": {Key: "x", Mode: entity.TripModeSingle},
			},
			lister: &fakeLister{},
		},
		{
			name: "children with no subfolders",
			trips: map[string]entity.TripConfig{
				"x": {Key: "x", Mode: entity.TripModeChildren, ShareURL: "https://share/empty"},
			},
			lister: &fakeLister{children: map[string][]*entity.RemoteItem{
				"https://share/empty": {{ID: "f", Name: "a.jpg", File: &entity.FileFacet{MimeType: "image/jpeg"}}},
			}},
		},
		{
			name: "duplicate derived trip keys",
			trips: map[string]entity.TripConfig{
				"x": {Key: "x", Mode: entity.TripModeChildren, ShareURL: "https://share/dup"},
			},
			lister: &fakeLister{children: map[string][]*entity.RemoteItem{
				"https://share/dup": {folder("Day 1", "i1", "d1"), folder("Day-1", "i2", "d1")},
			}},
		},
		{
			name: "subfolder without drive id",
			trips: map[string]entity.TripConfig{
				"x": {Key: "x", Mode: entity.TripModeChildren, ShareURL: "https://share/nodrive"},
			},
			lister: &fakeLister{children: map[string][]*entity.RemoteItem{
				"https://share/nodrive": {{ID: "i1", Name: "Day 1", Folder: &entity.FolderFacet{}}},
			}},
		},
		{
			name: "child trip collides with planned single trip",
			trips: map[string]entity.TripConfig{
				"day-1":  {Key: "day-1", Mode: entity.TripModeSingle, ShareURL: "https://share/a"},
				"parent": {Key: "parent", Mode: entity.TripModeChildren, ShareURL: "https://share/dup2"},
			},
			lister: &fakeLister{children: map[string][]*entity.RemoteItem{
				"https://share/dup2": {folder("Day 1", "i1", "d1")},
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.lister, testLogger()).Expand(context.Background(), tc.trips)
			require.Error(t, err)
			require.ErrorIs(t, err, common.ErrInvalidTripMap)
		})
	}
}

func TestExpandPropagatesListingFailure(t *testing.T) {
	lister := &fakeLister{err: fmt.Errorf("boom")}

	_, err := New(lister, testLogger()).Expand(context.Background(), map[string]entity.TripConfig{
		"x": {Key: "x", Mode: entity.TripModeChildren, ShareURL: "https://share/a"},
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, common.ErrInvalidTripMap)
}
