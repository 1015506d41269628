package admin

import (
	"context"
	"strings"

	"github.com/hobbybyrox/hobbyshop/internal/model"
	"github.com/hobbybyrox/hobbyshop/internal/upload"
)

// ImageSource is either a URL typed by the admin or a raw asset to upload.
// URL wins when both are set.
type ImageSource struct {
	URL   string
	Asset *upload.Asset
}

// FromURL is shorthand for an ImageSource holding a link.
func FromURL(u string) ImageSource {
	return ImageSource{URL: u}
}

// FromAsset is shorthand for an ImageSource holding raw data.
func FromAsset(filename string, data []byte) ImageSource {
	return ImageSource{Asset: &upload.Asset{Filename: filename, Data: data}}
}

// resolve turns each source into a reference. Links pass through as Ok,
// assets go through the upload service. A Failed outcome (not an image,
// empty source) aborts with a validation error before anything changes.
func (c *Controller) resolve(ctx context.Context, srcs []ImageSource) ([]string, []model.Result[string], error) {
	refs := make([]string, 0, len(srcs))
	outcomes := make([]model.Result[string], 0, len(srcs))

	for i, src := range srcs {
		var res model.Result[string]
		switch {
		case strings.TrimSpace(src.URL) != "":
			res = model.OK(strings.TrimSpace(src.URL))
		case src.Asset != nil:
			res = c.uploads.Store(ctx, *src.Asset)
		default:
			res = model.Failed[string](model.Invalid("image %d: empty source", i+1))
		}
		if !res.Usable() {
			return nil, nil, res.Reason
		}
		refs = append(refs, res.Value)
		outcomes = append(outcomes, res)
	}
	return refs, outcomes, nil
}

// Pending is an entry holding a reference that will not survive a publish.
type Pending struct {
	Kind  string // "product", "banner" or "gallery"
	ID    string // product id, empty otherwise
	Index int    // position within the product images, banners or gallery
	Ref   string
}

// Unpublishable lists every non-durable reference in the current state.
func (c *Controller) Unpublishable() []Pending {
	return pendingIn(c.State())
}

func pendingIn(s model.State) []Pending {
	var out []Pending
	for _, id := range s.Products.IDs() {
		for i, ref := range s.Products[id].Images {
			if !model.IsDurable(ref) {
				out = append(out, Pending{Kind: "product", ID: id, Index: i, Ref: ref})
			}
		}
	}
	for i, ref := range s.HeroSlides {
		if !model.IsDurable(ref) {
			out = append(out, Pending{Kind: "banner", Index: i, Ref: ref})
		}
	}
	for i, item := range s.InspirationItems {
		if !model.IsDurable(string(item)) {
			out = append(out, Pending{Kind: "gallery", Index: i, Ref: string(item)})
		}
	}
	return out
}

// RetryUploads re-uploads every data-URI preview and swaps in the durable
// URLs that come back. It reports how many references were fixed and how
// many remain unpublishable.
func (c *Controller) RetryUploads(ctx context.Context) (fixed, remaining int, err error) {
	replaced := map[string]string{}
	for _, p := range c.Unpublishable() {
		if _, done := replaced[p.Ref]; done || !strings.HasPrefix(p.Ref, "data:") {
			continue
		}
		res := c.uploads.Retry(ctx, p.Ref)
		if res.Status == model.StatusOK {
			replaced[p.Ref] = res.Value
		}
	}

	if len(replaced) > 0 {
		err = c.mutate(ctx, func(s *model.State) error {
			for id, p := range s.Products {
				for i, ref := range p.Images {
					if u, ok := replaced[ref]; ok {
						p.Images[i] = u
						fixed++
					}
				}
				if u, ok := replaced[p.Thumbnail]; ok {
					p.Thumbnail = u
				}
				s.Products[id] = p
			}
			for i, ref := range s.HeroSlides {
				if u, ok := replaced[ref]; ok {
					s.HeroSlides[i] = u
					fixed++
				}
			}
			for i, item := range s.InspirationItems {
				if u, ok := replaced[string(item)]; ok {
					s.InspirationItems[i] = model.GalleryItem(u)
					fixed++
				}
			}
			return nil
		})
		if err != nil {
			return 0, 0, err
		}
	}
	return fixed, len(c.Unpublishable()), nil
}
