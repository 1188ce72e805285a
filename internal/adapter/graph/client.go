package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jgivc/gallerysync/internal/entity"
)

const (
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	selectFields = "id,name,file,folder,image,webUrl,parentReference,remoteItem,thumbnails,@microsoft.graph.downloadUrl"

	// maxPageSize is the largest $top Graph accepts on children listings.
	maxPageSize = 200
	// maxPages bounds pathological paginated responses per listing call.
	maxPages = 20

	requestTimeout = 60 * time.Second
)

type ClientConfig struct {
	BaseURL    string // Defaults to DefaultBaseURL.
	Token      string // Bearer token attached to API-host requests only.
	HTTPClient *http.Client
}

// Client talks to the Microsoft Graph drive API: paginated children
// listings, item metadata, and binary content fetches.
type Client struct {
	base  string
	token string
	http  *http.Client
	log   *slog.Logger
}

func New(cfg ClientConfig, log *slog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return &Client{
		base:  base,
		token: cfg.Token,
		http:  httpClient,
		log:   log.With(slog.String("item", "GraphClient")),
	}
}

type listResponse struct {
	Value    []*entity.RemoteItem `json:"value"`
	NextLink string               `json:"@odata.nextLink"`
}

// ListShareChildren lists the immediate children of a share link's root
// folder, following pagination up to the page ceiling.
func (c *Client) ListShareChildren(ctx context.Context, shareURL string, limit int) ([]*entity.RemoteItem, error) {
	shareID := EncodeShareURL(shareURL)
	first := fmt.Sprintf("%s/shares/%s/driveItem/children?%s", c.base, url.PathEscape(shareID), c.listQuery(limit))

	return c.listPages(ctx, first, limit)
}

// ListDriveChildren lists the children of a (drive, item) addressed folder.
func (c *Client) ListDriveChildren(ctx context.Context, driveID, itemID string, limit int) ([]*entity.RemoteItem, error) {
	first := fmt.Sprintf("%s/drives/%s/items/%s/children?%s",
		c.base, url.PathEscape(driveID), url.PathEscape(itemID), c.listQuery(limit))

	return c.listPages(ctx, first, limit)
}

// ListShareItemChildren lists the children of a share-relative item. Graph
// does not reliably support one canonical address for this, so two endpoint
// shapes are tried in order and the last failure is returned only when both
// fail.
func (c *Client) ListShareItemChildren(ctx context.Context, shareURL, itemID string, limit int) ([]*entity.RemoteItem, error) {
	shareID := url.PathEscape(EncodeShareURL(shareURL))
	encodedItemID := url.PathEscape(itemID)

	candidates := []string{
		fmt.Sprintf("%s/shares/%s/driveItem/items/%s/children?%s", c.base, shareID, encodedItemID, c.listQuery(limit)),
		fmt.Sprintf("%s/shares/%s/items/%s/driveItem/children?%s", c.base, shareID, encodedItemID, c.listQuery(limit)),
	}

	var lastErr error
	for _, first := range candidates {
		items, err := c.listPages(ctx, first, limit)
		if err == nil {
			return items, nil
		}
		lastErr = err
	}

	return nil, lastErr
}

func (c *Client) listQuery(limit int) string {
	top := limit
	if top > maxPageSize {
		top = maxPageSize
	}

	q := url.Values{}
	q.Set("$top", fmt.Sprintf("%d", top))
	q.Set("$select", selectFields)

	return q.Encode()
}

func (c *Client) listPages(ctx context.Context, first string, limit int) ([]*entity.RemoteItem, error) {
	next := first
	pageCount := 0
	var items []*entity.RemoteItem

	for next != "" {
		var page listResponse
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Value {
			if item != nil {
				items = append(items, item)
			}
		}

		if len(items) >= limit {
			break
		}

		next = strings.TrimSpace(page.NextLink)
		pageCount++
		if pageCount > maxPages {
			c.log.Warn("Page ceiling reached", slog.String("url", first))

			break
		}
	}

	if len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// GetItem fetches one item's metadata from an absolute Graph URL.
func (c *Client) GetItem(ctx context.Context, itemURL string) (*entity.RemoteItem, error) {
	var item entity.RemoteItem
	if err := c.getJSON(ctx, itemURL, &item); err != nil {
		return nil, err
	}

	return &item, nil
}

// Fetch streams the response body of a GET. The bearer token is attached only
// when the URL targets the API host: download URLs are pre-authorized and
// some CDNs reject an unexpected Authorization header.
func (c *Client) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build request for %s: %w", rawURL, err)
	}

	if c.isAPIHost(rawURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch %s: %w", rawURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()

		return nil, fmt.Errorf("unexpected status %d for %s: %s", resp.StatusCode, rawURL, strings.TrimSpace(string(body)))
	}

	return resp.Body, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("cannot build request for %s: %w", rawURL, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.isAPIHost(rawURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cannot get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return fmt.Errorf("unexpected status %d for %s: %s", resp.StatusCode, rawURL, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode response from %s: %w", rawURL, err)
	}

	return nil
}

func (c *Client) isAPIHost(rawURL string) bool {
	return strings.HasPrefix(rawURL, c.base+"/")
}
