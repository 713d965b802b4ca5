// Package cart models the client-held selection staged before checkout.
// The kiosk owns the durable copy (local storage); this package normalizes
// whatever the client sends, applies the merge and quantity rules, and
// derives totals.
package cart

import (
	"encoding/json"

	"github.com/kudzaim/kiosk-commerce/internal/models"
)

// DefaultVATRate is the fixed VAT applied to kiosk totals
const DefaultVATRate = 0.15

// Line is one cart entry. Lines are identified by (productId, size, color).
type Line struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
}

// Key identifies a line for merge purposes
type Key struct {
	ProductID string
	Size      string
	Color     string
}

func (l Line) key() Key {
	return Key{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

// Cart is an ordered list of lines
type Cart struct {
	Lines []Line `json:"lines"`
}

// New creates an empty cart
func New() *Cart {
	return &Cart{}
}

// Decode restores a cart from its serialized form. Corrupt data yields an
// empty cart rather than an error so a bad stored blob never blocks the
// kiosk.
func Decode(data []byte) *Cart {
	if len(data) == 0 {
		return New()
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return New()
	}

	for _, l := range c.Lines {
		if l.ProductID == "" || l.Quantity < 1 || l.Price < 0 {
			return New()
		}
	}

	return &c
}

// Encode serializes the cart for client-side storage
func (c *Cart) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// AddItem merges quantity into an existing line with the same
// (productId, size, color), appending a new line otherwise.
func (c *Cart) AddItem(productID, name string, price float64, size, color string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	line := Line{
		ProductID: productID,
		Name:      name,
		Price:     price,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
	}

	for i := range c.Lines {
		if c.Lines[i].key() == line.key() {
			c.Lines[i].Quantity += quantity
			return
		}
	}

	c.Lines = append(c.Lines, line)
}

// ChangeQuantity adjusts a line's quantity by delta. Dropping to zero or
// below removes the line; a line never persists at quantity 0.
func (c *Cart) ChangeQuantity(key Key, delta int) {
	for i := range c.Lines {
		if c.Lines[i].key() != key {
			continue
		}

		c.Lines[i].Quantity += delta

		if c.Lines[i].Quantity < 1 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		}
		return
	}
}

// RemoveItem deletes a line unconditionally
func (c *Cart) RemoveItem(key Key) {
	for i := range c.Lines {
		if c.Lines[i].key() == key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart after a confirmed order
func (c *Cart) Clear() {
	c.Lines = nil
}

// Totals holds the derived money amounts of a cart
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	VAT      float64 `json:"vat"`
	Total    float64 `json:"total"`
}

// Totals derives subtotal, VAT and total at the given rate
func (c *Cart) Totals(vatRate float64) Totals {
	var subtotal float64
	for _, l := range c.Lines {
		subtotal += l.Price * float64(l.Quantity)
	}

	subtotal = models.RoundMoney(subtotal)
	vat := models.RoundMoney(subtotal * vatRate)

	return Totals{
		Subtotal: subtotal,
		VAT:      vat,
		Total:    models.RoundMoney(subtotal + vat),
	}
}

// Items converts the cart lines into the denormalized order snapshot
func (c *Cart) Items() models.OrderItems {
	items := make(models.OrderItems, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, models.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	return items
}
