package cloudinary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/jgivc/gallerysync/internal/common"
	"github.com/jgivc/gallerysync/internal/config"
)

// deliveryTransformation limits the published rendition the gallery links to.
const deliveryTransformation = "c_limit,f_auto,q_auto,w_1800"

// Publisher uploads image files to Cloudinary and builds delivery URLs.
type Publisher struct {
	cld *cloudinary.Cloudinary
	log *slog.Logger
}

func New(cfg config.CloudinaryConfig, log *slog.Logger) (*Publisher, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cannot configure cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &Publisher{
		cld: cld,
		log: log.With(slog.String("item", "CloudinaryPublisher")),
	}, nil
}

// Upload publishes the file under publicID and returns the id the store
// reports back. Failures are classified so callers can distinguish duplicate
// conflicts and credential rejections from per-item noise.
func (p *Publisher) Upload(ctx context.Context, filePath, publicID string, overwrite bool) (string, error) {
	resp, err := p.cld.Upload.Upload(ctx, filePath, uploader.UploadParams{
		PublicID:       publicID,
		Overwrite:      api.Bool(overwrite),
		ResourceType:   "image",
		UseFilename:    api.Bool(false),
		UniqueFilename: api.Bool(false),
	})
	if err != nil {
		return "", classify(err.Error())
	}
	if resp.Error.Message != "" {
		return "", classify(resp.Error.Message)
	}

	if resp.PublicID != "" {
		return resp.PublicID, nil
	}

	return publicID, nil
}

// URL builds the optimized delivery URL for a published asset.
func (p *Publisher) URL(publicID string) (string, error) {
	img, err := p.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("cannot build delivery asset for %s: %w", publicID, err)
	}
	img.Transformation = deliveryTransformation

	rawURL, err := img.String()
	if err != nil {
		return "", fmt.Errorf("cannot build delivery URL for %s: %w", publicID, err)
	}

	return rawURL, nil
}

// classify folds Cloudinary's message shapes into the error taxonomy:
// signature and api-key rejections are fatal misconfiguration, duplicate
// public ids are a recognized non-fatal conflict.
func classify(message string) error {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "invalid signature"),
		strings.Contains(lower, "api key") && strings.Contains(lower, "invalid"),
		strings.Contains(lower, "authorization required"),
		strings.Contains(lower, "must supply api_key"):
		return fmt.Errorf("%w: %s", common.ErrAuthRejected, message)
	case strings.Contains(lower, "already exists"),
		strings.Contains(lower, "duplicate"):
		return fmt.Errorf("%w: %s", common.ErrDuplicateAsset, message)
	}

	return fmt.Errorf("upload failed: %s", message)
}
