package model

import (
	"slices"
	"sort"
	"strings"
)

// Product is a catalog entry as published in data/products.json.
type Product struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Extra       string   `json:"extra"`
	Images      []string `json:"images"`
	Thumbnail   string   `json:"thumbnail"`
}

// Catalog maps product identifiers to products.
type Catalog map[string]Product

// IsDurable reports whether ref points at the persistent image host.
// Data URIs, blob URLs and plain http links never survive a publish.
func IsDurable(ref string) bool {
	return strings.HasPrefix(ref, "https://")
}

// IsTransient reports whether ref is a client-side preview.
func IsTransient(ref string) bool {
	return strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "blob:")
}

// DurableRefs returns the durable references of refs, in order.
func DurableRefs(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if IsDurable(ref) {
			out = append(out, ref)
		}
	}
	return out
}

// Clone returns a deep copy of the product.
func (p Product) Clone() Product {
	p.Images = slices.Clone(p.Images)
	if p.Images == nil {
		p.Images = []string{}
	}
	return p
}

// Durable returns a copy holding only durable image references. The
// thumbnail is kept when it still appears in the filtered list, otherwise
// it falls back to the first durable image or is cleared.
func (p Product) Durable() Product {
	out := p.Clone()
	out.Images = DurableRefs(p.Images)
	if out.Thumbnail != "" && !slices.Contains(out.Images, out.Thumbnail) {
		out.Thumbnail = ""
		if len(out.Images) > 0 {
			out.Thumbnail = out.Images[0]
		}
	}
	return out
}

// CoverImage is the image a listing shows for the product.
func (p Product) CoverImage() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// Clone returns a deep copy of the catalog.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for id, p := range c {
		out[id] = p.Clone()
	}
	return out
}

// Durable applies Product.Durable to every product.
func (c Catalog) Durable() Catalog {
	out := make(Catalog, len(c))
	for id, p := range c {
		out[id] = p.Durable()
	}
	return out
}

// IDs returns the product identifiers in ascending order.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FindByName returns the first product (by id order) with the given name.
func (c Catalog) FindByName(name string) (string, Product, bool) {
	for _, id := range c.IDs() {
		if c[id].Name == name {
			return id, c[id], true
		}
	}
	return "", Product{}, false
}
