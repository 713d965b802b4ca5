package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddItemMergesMatchingLines(t *testing.T) {
	c := New()
	c.AddItem("p1", "Sneaker", 120, "42", "Black", 2)
	c.AddItem("p1", "Sneaker", 120, "42", "Black", 3)

	assert.Len(t, c.Lines, 1)
	assert.Equal(t, 5, c.Lines[0].Quantity)
}

func TestAddItemKeepsDistinctVariants(t *testing.T) {
	c := New()
	c.AddItem("p1", "Sneaker", 120, "42", "Black", 1)
	c.AddItem("p1", "Sneaker", 120, "43", "Black", 1)
	c.AddItem("p1", "Sneaker", 120, "42", "White", 1)

	assert.Len(t, c.Lines, 3)
}

func TestChangeQuantityDecrementToZeroRemovesLine(t *testing.T) {
	c := New()
	c.AddItem("p1", "Sneaker", 120, "42", "Black", 1)

	c.ChangeQuantity(Key{ProductID: "p1", Size: "42", Color: "Black"}, -1)

	assert.Empty(t, c.Lines)
}

func TestChangeQuantityNeverLeavesZeroQuantityLine(t *testing.T) {
	c := New()
	c.AddItem("p1", "Sneaker", 120, "42", "Black", 3)

	key := Key{ProductID: "p1", Size: "42", Color: "Black"}
	c.ChangeQuantity(key, -1)
	assert.Equal(t, 2, c.Lines[0].Quantity)

	c.ChangeQuantity(key, -5)
	assert.Empty(t, c.Lines)
}

func TestRemoveItem(t *testing.T) {
	c := New()
	c.AddItem("p1", "Sneaker", 120, "42", "Black", 1)
	c.AddItem("p2", "Cap", 50, "", "Red", 1)

	c.RemoveItem(Key{ProductID: "p1", Size: "42", Color: "Black"})

	assert.Len(t, c.Lines, 1)
	assert.Equal(t, "p2", c.Lines[0].ProductID)
}

func TestTotals(t *testing.T) {
	c := New()
	c.AddItem("p1", "Sneaker", 120, "42", "Black", 2)
	c.AddItem("p2", "Cap", 50, "", "Red", 1)

	totals := c.Totals(DefaultVATRate)

	assert.Equal(t, 290.00, totals.Subtotal)
	assert.Equal(t, 43.50, totals.VAT)
	assert.Equal(t, 333.50, totals.Total)
}

func TestDecodeCorruptDataYieldsEmptyCart(t *testing.T) {
	c := Decode([]byte(`{"lines": [{`))

	assert.Empty(t, c.Lines)

	totals := c.Totals(DefaultVATRate)
	assert.Zero(t, totals.Total)
}

func TestDecodeRejectsInvalidLines(t *testing.T) {
	// well-formed JSON but nonsense content is treated the same as corrupt
	c := Decode([]byte(`{"lines":[{"productId":"p1","price":10,"quantity":0}]}`))

	assert.Empty(t, c.Lines)
}

func TestDecodeRoundTrip(t *testing.T) {
	c := New()
	c.AddItem("p1", "Sneaker", 120, "42", "Black", 2)

	data, err := c.Encode()
	assert.NoError(t, err)

	restored := Decode(data)
	assert.Equal(t, c.Lines, restored.Lines)
}

func TestClear(t *testing.T) {
	c := New()
	c.AddItem("p1", "Sneaker", 120, "42", "Black", 2)

	c.Clear()

	assert.Empty(t, c.Lines)
}
