package model

// CartLine is one line of the shopper's cart. Lines join the catalog by
// product name; the price is the one captured when the line was added.
type CartLine struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Subtotal is Price times Quantity.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}
