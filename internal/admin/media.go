package admin

import (
	"context"
	"slices"

	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// Direction moves a gallery item towards the start or the end.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// AddBanner appends one rotation image.
func (c *Controller) AddBanner(ctx context.Context, src ImageSource) (model.Result[string], error) {
	refs, outcomes, err := c.resolve(ctx, []ImageSource{src})
	if err != nil {
		return model.Failed[string](err), err
	}
	err = c.mutate(ctx, func(s *model.State) error {
		s.HeroSlides = append(s.HeroSlides, refs[0])
		return nil
	})
	if err != nil {
		return model.Failed[string](err), err
	}
	return outcomes[0], nil
}

// RemoveBanner deletes the banner at index.
func (c *Controller) RemoveBanner(ctx context.Context, index int) error {
	return c.mutate(ctx, func(s *model.State) error {
		if err := checkIndex("banner", index, len(s.HeroSlides)); err != nil {
			return err
		}
		s.HeroSlides = slices.Delete(s.HeroSlides, index, index+1)
		return nil
	})
}

// AddGalleryItems appends images to the gallery in the given order.
func (c *Controller) AddGalleryItems(ctx context.Context, srcs []ImageSource) ([]model.Result[string], error) {
	if len(srcs) == 0 {
		return nil, model.Invalid("no gallery images given")
	}
	refs, outcomes, err := c.resolve(ctx, srcs)
	if err != nil {
		return nil, err
	}
	err = c.mutate(ctx, func(s *model.State) error {
		for _, ref := range refs {
			s.InspirationItems = append(s.InspirationItems, model.GalleryItem(ref))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

// ReorderGalleryItem swaps the item at index with its neighbour in
// direction dir. Moving past either end is a no-op.
func (c *Controller) ReorderGalleryItem(ctx context.Context, index int, dir Direction) error {
	return c.mutate(ctx, func(s *model.State) error {
		if err := checkIndex("gallery", index, len(s.InspirationItems)); err != nil {
			return err
		}
		if dir != Up && dir != Down {
			return model.Invalid("unknown direction %d", dir)
		}
		j := index + int(dir)
		if j < 0 || j >= len(s.InspirationItems) {
			return nil
		}
		items := s.InspirationItems
		items[index], items[j] = items[j], items[index]
		return nil
	})
}

// DeleteGalleryItem removes the gallery item at index.
func (c *Controller) DeleteGalleryItem(ctx context.Context, index int) error {
	return c.mutate(ctx, func(s *model.State) error {
		if err := checkIndex("gallery", index, len(s.InspirationItems)); err != nil {
			return err
		}
		s.InspirationItems = slices.Delete(s.InspirationItems, index, index+1)
		return nil
	})
}
