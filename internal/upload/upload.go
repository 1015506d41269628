// Package upload moves raw image assets to the durable image host,
// falling back to inline previews when the host is unreachable.
package upload

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hobbybyrox/hobbyshop/internal/imaging"
	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// Asset is a raw image picked by the admin.
type Asset struct {
	Filename string
	Data     []byte
}

// Host stores an asset and returns its durable URL.
type Host interface {
	Upload(ctx context.Context, a Asset) (string, error)
}

// Service pairs every upload with a local preview so the caller always
// gets something to show.
type Service struct {
	host Host
	log  *slog.Logger
}

// NewService returns a Service uploading to host. A nil host makes every
// upload degrade to its preview.
func NewService(host Host, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{host: host, log: log}
}

// Store builds a preview for a, then tries the durable upload.
// Ok carries the durable URL, Degraded the preview and the upload error,
// Failed means a is not an accepted image at all.
func (s *Service) Store(ctx context.Context, a Asset) model.Result[string] {
	preview, err := imaging.Preview(a.Data)
	if err != nil {
		return model.Failed[string](model.Invalid("%s: %v", a.Filename, err))
	}
	return s.upload(ctx, a, preview)
}

// Retry re-uploads the image held in a transient preview.
func (s *Service) Retry(ctx context.Context, preview string) model.Result[string] {
	_, data, err := imaging.ParseDataURI(preview)
	if err != nil {
		return model.Failed[string](model.Invalid("preview: %v", err))
	}
	return s.upload(ctx, Asset{Filename: "preview.jpg", Data: data}, preview)
}

func (s *Service) upload(ctx context.Context, a Asset, preview string) model.Result[string] {
	if s.host == nil {
		return model.Degraded(preview, fmt.Errorf("%w: no image host configured", model.ErrUpload))
	}

	url, err := s.host.Upload(ctx, a)
	if err == nil && !model.IsDurable(url) {
		err = fmt.Errorf("host returned non-durable url %q", url)
	}
	if err != nil {
		s.log.Warn("image upload failed, keeping local preview", "file", a.Filename, "error", err)
		return model.Degraded(preview, fmt.Errorf("%w: %v", model.ErrUpload, err))
	}
	return model.OK(url)
}
