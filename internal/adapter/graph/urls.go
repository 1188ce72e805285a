package graph

import (
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/jgivc/gallerysync/internal/util"
)

// thumbnailContentSizes is the order thumbnail content endpoints are tried,
// largest first.
var thumbnailContentSizes = []string{"large", "medium", "small"}

// EncodeShareURL converts a sharing link into the Graph share id form:
// "u!" plus the unpadded URL-safe base64 of the link.
func EncodeShareURL(shareURL string) string {
	return "u!" + base64.RawURLEncoding.EncodeToString([]byte(shareURL))
}

// MetadataCandidates builds every addressable metadata URL for an item: the
// drive-scoped form plus three share-scoped shapes. Listing responses often
// return stale or missing download URLs; refetching metadata through any of
// these shapes can repair them.
func (c *Client) MetadataCandidates(driveID, shareURL string, itemIDs []string) []string {
	q := url.Values{}
	q.Set("$select", "id,name,remoteItem,thumbnails,@microsoft.graph.downloadUrl")
	query := q.Encode()

	shareID := ""
	if shareURL != "" {
		shareID = url.PathEscape(EncodeShareURL(shareURL))
	}
	encodedDriveID := url.PathEscape(driveID)

	var candidates []string
	for _, itemID := range itemIDs {
		encodedItemID := url.PathEscape(itemID)
		if driveID != "" {
			candidates = append(candidates,
				fmt.Sprintf("%s/drives/%s/items/%s?%s", c.base, encodedDriveID, encodedItemID, query))
		}
		if shareID != "" {
			candidates = append(candidates,
				fmt.Sprintf("%s/shares/%s/driveItem/children/%s?%s", c.base, shareID, encodedItemID, query),
				fmt.Sprintf("%s/shares/%s/driveItem/items/%s?%s", c.base, shareID, encodedItemID, query),
				fmt.Sprintf("%s/shares/%s/items/%s/driveItem?%s", c.base, shareID, encodedItemID, query))
		}
	}

	return util.UniqueStrings(candidates)
}

// ContentCandidates builds direct /content endpoints for every addressing
// combination, including the name-addressed form scoped to the share root.
func (c *Client) ContentCandidates(driveID, shareURL string, itemIDs []string, name string) []string {
	shareID := ""
	if shareURL != "" {
		shareID = url.PathEscape(EncodeShareURL(shareURL))
	}
	encodedDriveID := url.PathEscape(driveID)

	var candidates []string
	if shareID != "" && name != "" {
		candidates = append(candidates,
			fmt.Sprintf("%s/shares/%s/driveItem:/%s:/content", c.base, shareID, url.PathEscape(name)))
	}

	for _, itemID := range itemIDs {
		encodedItemID := url.PathEscape(itemID)
		if driveID != "" {
			candidates = append(candidates,
				fmt.Sprintf("%s/drives/%s/items/%s/content", c.base, encodedDriveID, encodedItemID))
		}
		if shareID != "" {
			candidates = append(candidates,
				fmt.Sprintf("%s/shares/%s/driveItem/children/%s/content", c.base, shareID, encodedItemID),
				fmt.Sprintf("%s/shares/%s/driveItem/items/%s/content", c.base, shareID, encodedItemID),
				fmt.Sprintf("%s/shares/%s/items/%s/driveItem/content", c.base, shareID, encodedItemID))
		}
	}

	return util.UniqueStrings(candidates)
}

// ThumbnailContentCandidates builds thumbnail /content endpoints for the same
// addressing combinations, each size tried largest to smallest.
func (c *Client) ThumbnailContentCandidates(driveID, shareURL string, itemIDs []string) []string {
	shareID := ""
	if shareURL != "" {
		shareID = url.PathEscape(EncodeShareURL(shareURL))
	}
	encodedDriveID := url.PathEscape(driveID)

	var candidates []string
	for _, itemID := range itemIDs {
		encodedItemID := url.PathEscape(itemID)
		for _, size := range thumbnailContentSizes {
			if driveID != "" {
				candidates = append(candidates,
					fmt.Sprintf("%s/drives/%s/items/%s/thumbnails/0/%s/content", c.base, encodedDriveID, encodedItemID, size))
			}
			if shareID != "" {
				candidates = append(candidates,
					fmt.Sprintf("%s/shares/%s/driveItem/children/%s/thumbnails/0/%s/content", c.base, shareID, encodedItemID, size),
					fmt.Sprintf("%s/shares/%s/driveItem/items/%s/thumbnails/0/%s/content", c.base, shareID, encodedItemID, size),
					fmt.Sprintf("%s/shares/%s/items/%s/driveItem/thumbnails/0/%s/content", c.base, shareID, encodedItemID, size))
			}
		}
	}

	return util.UniqueStrings(candidates)
}
