package model

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Document names, as used for cache keys and read-side artifact names.
const (
	DocCatalog = "products"
	DocBanners = "hero"
	DocGallery = "inspiration"
)

// DocumentNames lists the published documents in publish order.
var DocumentNames = []string{DocCatalog, DocBanners, DocGallery}

// BannerSet is the published form of data/hero.json.
type BannerSet struct {
	Images []string `json:"images"`
}

// GallerySet is the published form of data/inspiration.json.
type GallerySet struct {
	Items []GalleryItem `json:"items"`
}

// GalleryItem is one gallery image. Older exports stored items as
// objects with an "image" or "url" field; both decode to the plain
// reference and always encode back as a string.
type GalleryItem string

// UnmarshalJSON accepts a string or a legacy {"image"|"url": ...} object.
func (g *GalleryItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*g = GalleryItem(s)
		return nil
	}
	var legacy struct {
		Image string `json:"image"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("gallery item: %w", err)
	}
	if legacy.Image != "" {
		*g = GalleryItem(legacy.Image)
	} else {
		*g = GalleryItem(legacy.URL)
	}
	return nil
}

// Documents is the set of documents published together as one revision.
type Documents struct {
	Catalog Catalog
	Banners []string
	Gallery []string
}

// Durable filters every image reference in the set down to durable ones.
func (d Documents) Durable() Documents {
	return Documents{
		Catalog: d.Catalog.Durable(),
		Banners: DurableRefs(d.Banners),
		Gallery: DurableRefs(d.Gallery),
	}
}

// State is the admin panel's editable state. Its JSON form is both the
// backup/import document and the relay's publish payload.
type State struct {
	Products         Catalog       `json:"products"`
	HeroSlides       []string      `json:"heroSlides"`
	InspirationItems []GalleryItem `json:"inspirationItems"`
}

// NewState returns an empty state with non-nil collections.
func NewState() State {
	return State{
		Products:         Catalog{},
		HeroSlides:       []string{},
		InspirationItems: []GalleryItem{},
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{
		Products:         s.Products.Clone(),
		HeroSlides:       slices.Clone(s.HeroSlides),
		InspirationItems: slices.Clone(s.InspirationItems),
	}
	if out.HeroSlides == nil {
		out.HeroSlides = []string{}
	}
	if out.InspirationItems == nil {
		out.InspirationItems = []GalleryItem{}
	}
	return out
}

// Documents converts the state into the unfiltered publish set.
func (s State) Documents() Documents {
	gallery := make([]string, len(s.InspirationItems))
	for i, item := range s.InspirationItems {
		gallery[i] = string(item)
	}
	return Documents{
		Catalog: s.Products.Clone(),
		Banners: slices.Clone(s.HeroSlides),
		Gallery: gallery,
	}
}

// Revision is the opaque handle of a published revision.
type Revision string

// Short returns the abbreviated handle shown in confirmations.
func (r Revision) Short() string {
	if len(r) > 7 {
		return string(r[:7])
	}
	return string(r)
}
