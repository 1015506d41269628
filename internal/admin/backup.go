package admin

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// requiredKeys are the top-level collections of a state document.
var requiredKeys = []string{"products", "heroSlides", "inspirationItems"}

// ExportState renders the current state as an indented JSON document.
func (c *Controller) ExportState() ([]byte, error) {
	s := c.State()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseState decodes a state document, requiring all three collections.
func ParseState(data []byte) (model.State, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.State{}, model.Invalid("state document: %v", err)
	}
	for _, k := range requiredKeys {
		v, ok := raw[k]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			return model.State{}, model.Invalid("state document: missing %q", k)
		}
	}

	var s model.State
	if err := json.Unmarshal(raw["products"], &s.Products); err != nil {
		return model.State{}, model.Invalid("products: %v", err)
	}
	if err := json.Unmarshal(raw["heroSlides"], &s.HeroSlides); err != nil {
		return model.State{}, model.Invalid("heroSlides: %v", err)
	}
	if err := json.Unmarshal(raw["inspirationItems"], &s.InspirationItems); err != nil {
		return model.State{}, model.Invalid("inspirationItems: %v", err)
	}
	return s.Clone(), nil
}

// ImportState replaces all three collections with those in data. An
// invalid document changes nothing.
func (c *Controller) ImportState(ctx context.Context, data []byte) error {
	next, err := ParseState(data)
	if err != nil {
		return err
	}
	err = c.mutate(ctx, func(s *model.State) error {
		*s = next
		return nil
	})
	if err != nil {
		return err
	}
	c.log.Info("state imported", "products", len(next.Products),
		"banners", len(next.HeroSlides), "gallery", len(next.InspirationItems))
	return nil
}
