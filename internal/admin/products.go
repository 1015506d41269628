package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// ProductInput holds the fields of a new product.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Extra       string
	Images      []ImageSource
}

// ProductEdit changes the fields that are set. A nil Images keeps the
// current images; an empty non-nil slice clears them.
type ProductEdit struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Extra       *string
	Images      []ImageSource
}

// Change reports what a mutation did with its images.
type Change struct {
	ID      string
	Uploads []model.Result[string]
}

// Degraded reports whether any image fell back to a local preview.
func (c Change) Degraded() bool {
	for _, r := range c.Uploads {
		if r.Status == model.StatusDegraded {
			return true
		}
	}
	return false
}

// AddProduct validates in, resolves its images and stores it under a
// fresh identifier.
func (c *Controller) AddProduct(ctx context.Context, in ProductInput) (Change, error) {
	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    in.Category,
		Extra:       strings.TrimSpace(in.Extra),
	}
	if err := validateProduct(p); err != nil {
		return Change{}, err
	}

	refs, outcomes, err := c.resolve(ctx, in.Images)
	if err != nil {
		return Change{}, err
	}
	p.Images = refs
	p.Thumbnail = firstImage(refs)

	var id string
	err = c.mutate(ctx, func(s *model.State) error {
		id, err = c.freshID(s)
		if err != nil {
			return err
		}
		s.Products[id] = p
		return nil
	})
	if err != nil {
		return Change{}, err
	}

	c.log.Info("product added", "id", id, "name", p.Name, "images", len(refs))
	return Change{ID: id, Uploads: outcomes}, nil
}

// EditProduct applies e to the product with the given id.
func (c *Controller) EditProduct(ctx context.Context, id string, e ProductEdit) (Change, error) {
	var refs []string
	var outcomes []model.Result[string]
	if e.Images != nil {
		var err error
		refs, outcomes, err = c.resolve(ctx, e.Images)
		if err != nil {
			return Change{}, err
		}
	}

	err := c.mutate(ctx, func(s *model.State) error {
		p, ok := s.Products[id]
		if !ok {
			return fmt.Errorf("product %s: %w", id, model.ErrNotFound)
		}
		if e.Name != nil {
			p.Name = strings.TrimSpace(*e.Name)
		}
		if e.Description != nil {
			p.Description = strings.TrimSpace(*e.Description)
		}
		if e.Price != nil {
			p.Price = *e.Price
		}
		if e.Category != nil {
			p.Category = *e.Category
		}
		if e.Extra != nil {
			p.Extra = strings.TrimSpace(*e.Extra)
		}
		if e.Images != nil {
			p.Images = refs
			p.Thumbnail = firstImage(refs)
		}
		if err := validateProduct(p); err != nil {
			return err
		}
		s.Products[id] = p
		return nil
	})
	if err != nil {
		return Change{}, err
	}

	c.log.Info("product edited", "id", id)
	return Change{ID: id, Uploads: outcomes}, nil
}

// DeleteProduct removes a product. Its id is never handed out again in
// this session.
func (c *Controller) DeleteProduct(ctx context.Context, id string) error {
	err := c.mutate(ctx, func(s *model.State) error {
		if _, ok := s.Products[id]; !ok {
			return fmt.Errorf("product %s: %w", id, model.ErrNotFound)
		}
		delete(s.Products, id)
		return nil
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.retired[id] = true
	c.mu.Unlock()
	c.log.Info("product deleted", "id", id)
	return nil
}

// freshID runs under c.mu.
func (c *Controller) freshID(s *model.State) (string, error) {
	for range 8 {
		id, err := c.newID()
		if err != nil {
			return "", fmt.Errorf("generating product id: %w", err)
		}
		if _, taken := s.Products[id]; !taken && !c.retired[id] {
			return id, nil
		}
	}
	return "", errors.New("generating product id: too many collisions")
}

func firstImage(refs []string) string {
	if len(refs) == 0 {
		return ""
	}
	return refs[0]
}
