// Package cart keeps the shopper's cart lines and renders them as an
// order message.
package cart

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hobbybyrox/hobbyshop/internal/model"
	"github.com/hobbybyrox/hobbyshop/internal/store"
)

// Cart holds at most one line per product name. Every mutation is
// written through to the database before it is kept in memory.
type Cart struct {
	db *sql.DB

	mu    sync.Mutex
	lines []model.CartLine
}

// Open loads the persisted cart.
func Open(ctx context.Context, db *sql.DB) (*Cart, error) {
	lines, err := store.LoadCart(ctx, db)
	if err != nil {
		return nil, err
	}
	return &Cart{db: db, lines: lines}, nil
}

// AddLine adds one unit of name. An existing line only gains quantity and
// keeps the price it was first added at.
func (c *Cart) AddLine(ctx context.Context, name string, unitPrice float64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Invalid("product name is required")
	}
	if unitPrice < 0 {
		return model.Invalid("price must not be negative, got %v", unitPrice)
	}

	return c.update(ctx, func(lines []model.CartLine) []model.CartLine {
		if i := index(lines, name); i >= 0 {
			lines[i].Quantity++
			return lines
		}
		return append(lines, model.CartLine{Name: name, Price: unitPrice, Quantity: 1})
	})
}

// RemoveLine drops the line for name. Removing an absent name is a no-op.
func (c *Cart) RemoveLine(ctx context.Context, name string) error {
	return c.update(ctx, func(lines []model.CartLine) []model.CartLine {
		if i := index(lines, name); i >= 0 {
			return slices.Delete(lines, i, i+1)
		}
		return lines
	})
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	return c.update(ctx, func([]model.CartLine) []model.CartLine { return nil })
}

// Prune drops the lines whose name no longer appears in catalog and
// returns the dropped names. An empty catalog prunes nothing, so a cart
// is never wiped because the catalog failed to load.
func (c *Cart) Prune(ctx context.Context, catalog model.Catalog) ([]string, error) {
	if len(catalog) == 0 {
		return nil, nil
	}
	var dropped []string
	err := c.update(ctx, func(lines []model.CartLine) []model.CartLine {
		return slices.DeleteFunc(lines, func(l model.CartLine) bool {
			if _, _, ok := catalog.FindByName(l.Name); ok {
				return false
			}
			dropped = append(dropped, l.Name)
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return dropped, nil
}

func (c *Cart) update(ctx context.Context, fn func([]model.CartLine) []model.CartLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := fn(slices.Clone(c.lines))
	if err := store.SaveCart(ctx, c.db, next); err != nil {
		return err
	}
	c.lines = next
	return nil
}

// QuantityOf returns the quantity of name, 0 when absent.
func (c *Cart) QuantityOf(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := index(c.lines, name); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Lines returns a copy of the cart lines in the order they were added.
func (c *Cart) Lines() []model.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.lines)
}

// Total is the sum of all line subtotals at their captured prices.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return total(c.lines)
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// LineView is a cart line with the image the shop shows next to it.
type LineView struct {
	model.CartLine
	Thumbnail string
}

// LineViews pairs each line with the cover image of the catalog product
// of the same name. Lines whose product was renamed or removed get none.
func (c *Cart) LineViews(catalog model.Catalog) []LineView {
	lines := c.Lines()
	out := make([]LineView, len(lines))
	for i, l := range lines {
		out[i] = LineView{CartLine: l}
		if _, p, ok := catalog.FindByName(l.Name); ok {
			out[i].Thumbnail = p.CoverImage()
		}
	}
	return out
}

func index(lines []model.CartLine, name string) int {
	return slices.IndexFunc(lines, func(l model.CartLine) bool { return l.Name == name })
}

func total(lines []model.CartLine) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Subtotal()
	}
	return sum
}

func euros(v float64) string {
	return fmt.Sprintf("€%.2f", v)
}
