package storefront

import "github.com/hobbybyrox/hobbyshop/internal/model"

// CategoryAll selects every product.
const CategoryAll = "all"

// Listing is one product as shown in the shop grid.
type Listing struct {
	ID      string
	Product model.Product
}

// FilterByCategory lists the products of category in id order.
func FilterByCategory(c model.Catalog, category string) []Listing {
	var out []Listing
	for _, id := range c.IDs() {
		p := c[id]
		if category == "" || category == CategoryAll || p.Category == category {
			out = append(out, Listing{ID: id, Product: p})
		}
	}
	return out
}
