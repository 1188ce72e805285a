package entity

import (
	"path"
	"strings"
)

// Facets of a Graph drive item. Only the fields the sync cares about are
// mapped; everything else in the listing payload is ignored.
type FileFacet struct {
	MimeType string `json:"mimeType"`
}

type FolderFacet struct {
	ChildCount int `json:"childCount"`
}

type ImageFacet struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ParentReference struct {
	DriveID string `json:"driveId"`
	ID      string `json:"id"`
}

type Thumbnail struct {
	URL string `json:"url"`
}

// ThumbnailSet holds the size variants of one thumbnail entry. Crop maps the
// c200x200_Crop key some listings return instead of the standard sizes.
type ThumbnailSet struct {
	Large  *Thumbnail `json:"large"`
	Medium *Thumbnail `json:"medium"`
	Small  *Thumbnail `json:"small"`
	Source *Thumbnail `json:"source"`
	Crop   *Thumbnail `json:"c200x200_Crop"`
}

// RemoteItem is one record of a Graph children listing. RemoteItem.RemoteItem
// is the "shared with me" alias: when present it points at the item actually
// owned by another drive and supersedes the local id for resolution.
type RemoteItem struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	File            *FileFacet       `json:"file"`
	Folder          *FolderFacet     `json:"folder"`
	Image           *ImageFacet      `json:"image"`
	ParentReference *ParentReference `json:"parentReference"`
	RemoteItem      *RemoteItem      `json:"remoteItem"`
	Thumbnails      []ThumbnailSet   `json:"thumbnails"`
	DownloadURL     string           `json:"@microsoft.graph.downloadUrl"`
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {},
	".tif": {}, ".tiff": {}, ".heic": {}, ".heif": {}, ".avif": {},
}

func (r *RemoteItem) IsFolder() bool {
	if r == nil {
		return false
	}
	if r.Folder != nil {
		return true
	}

	return r.RemoteItem != nil && r.RemoteItem.Folder != nil
}

// IsImage reports whether the item (or its alias) carries an image facet, an
// image mime type, or a known image file extension.
func (r *RemoteItem) IsImage() bool {
	if r == nil {
		return false
	}
	if r.Image != nil {
		return true
	}
	if r.File != nil && strings.HasPrefix(strings.ToLower(r.File.MimeType), "image/") {
		return true
	}

	if alias := r.RemoteItem; alias != nil {
		if alias.Image != nil {
			return true
		}
		if alias.File != nil && strings.HasPrefix(strings.ToLower(alias.File.MimeType), "image/") {
			return true
		}
	}

	_, ok := imageExtensions[strings.ToLower(path.Ext(r.DisplayName()))]

	return ok
}

// DisplayName prefers the item's own name and falls back to the alias name.
func (r *RemoteItem) DisplayName() string {
	if r == nil {
		return ""
	}
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	if r.RemoteItem != nil {
		return strings.TrimSpace(r.RemoteItem.Name)
	}

	return ""
}

// ResolveIDs returns the addressable (itemID, driveID) pair for the item.
// An alias always wins: its id and owning drive address the real bytes.
func (r *RemoteItem) ResolveIDs() (itemID, driveID string) {
	if r == nil {
		return "", ""
	}

	alias := r.RemoteItem
	if alias != nil && alias.ID != "" {
		itemID = alias.ID
	} else {
		itemID = r.ID
	}

	if alias != nil && alias.ParentReference != nil && alias.ParentReference.DriveID != "" {
		driveID = alias.ParentReference.DriveID
	} else if r.ParentReference != nil {
		driveID = r.ParentReference.DriveID
	}

	return itemID, driveID
}

// ItemIDs returns the alias id (if any) followed by the item's own id,
// deduplicated and without empty values.
func (r *RemoteItem) ItemIDs() []string {
	if r == nil {
		return nil
	}

	var ids []string
	if r.RemoteItem != nil && r.RemoteItem.ID != "" {
		ids = append(ids, r.RemoteItem.ID)
	}
	if r.ID != "" && (len(ids) == 0 || ids[0] != r.ID) {
		ids = append(ids, r.ID)
	}

	return ids
}

// ThumbnailURLs lists the item's thumbnail URLs largest-first. Listing
// responses populate these inconsistently, so callers must treat every entry
// as a candidate, not a guarantee.
func (r *RemoteItem) ThumbnailURLs() []string {
	if r == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var urls []string
	for _, set := range r.Thumbnails {
		for _, thumb := range []*Thumbnail{set.Large, set.Medium, set.Small, set.Source, set.Crop} {
			if thumb == nil || strings.TrimSpace(thumb.URL) == "" {
				continue
			}
			if _, ok := seen[thumb.URL]; ok {
				continue
			}
			seen[thumb.URL] = struct{}{}
			urls = append(urls, thumb.URL)
		}
	}

	return urls
}
