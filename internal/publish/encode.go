// Package publish commits the three storefront documents to the content
// store as one revision.
package publish

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hobbybyrox/hobbyshop/internal/content"
	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// File is one encoded document and the path it is published at.
type File struct {
	Path string
	Body []byte
}

// Encode serializes docs in publish order: catalog, banners, gallery.
// Nil collections are written as empty ones so the schema stays stable.
func Encode(docs model.Documents) ([]File, error) {
	catalog := docs.Catalog
	if catalog == nil {
		catalog = model.Catalog{}
	}
	banners := model.BannerSet{Images: nonNil(docs.Banners)}
	gallery := model.GallerySet{Items: make([]model.GalleryItem, 0, len(docs.Gallery))}
	for _, ref := range docs.Gallery {
		gallery.Items = append(gallery.Items, model.GalleryItem(ref))
	}

	values := []struct {
		name string
		v    any
	}{
		{model.DocCatalog, catalog},
		{model.DocBanners, banners},
		{model.DocGallery, gallery},
	}

	files := make([]File, 0, len(values))
	for _, d := range values {
		body, err := marshal(d.v)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", d.name, err)
		}
		files = append(files, File{Path: content.DocumentPath(d.name), Body: body})
	}
	return files, nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
