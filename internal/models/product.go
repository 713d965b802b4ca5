package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ProductColor is a member of the fixed catalog color set
type ProductColor string

// AllColors is the closed set of colors a product may carry. Image maps may
// only be keyed by these.
var AllColors = []ProductColor{
	"Red", "Blue", "Black", "White", "Brown",
	"Beige", "Silver", "Rose Gold", "Dark Blue",
}

// IsValidColor reports whether c is in the fixed color set
func IsValidColor(c ProductColor) bool {
	for _, known := range AllColors {
		if c == known {
			return true
		}
	}
	return false
}

// StringList is a jsonb-backed list of strings (sizes)
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l, "StringList")
}

// ColorList is a jsonb-backed list of product colors
type ColorList []ProductColor

func (l ColorList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *ColorList) Scan(src interface{}) error {
	return scanJSON(src, l, "ColorList")
}

// Contains reports whether c is one of the product's selected colors
func (l ColorList) Contains(c ProductColor) bool {
	for _, have := range l {
		if have == c {
			return true
		}
	}
	return false
}

// ImageMap maps a color to its ordered image URLs; a color may have no
// images yet.
type ImageMap map[ProductColor][]string

func (m ImageMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(ImageMap{})
	}
	return json.Marshal(m)
}

func (m *ImageMap) Scan(src interface{}) error {
	return scanJSON(src, m, "ImageMap")
}

func scanJSON(src, dst interface{}, what string) error {
	if src == nil {
		return nil
	}

	b, ok := src.([]byte)

	if !ok {
		return fmt.Errorf("unsupported type %T for %s", src, what)
	}

	return json.Unmarshal(b, dst)
}

// Product is a catalog entity, mutated only through admin edits
type Product struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Price       float64    `db:"price" json:"price"`
	Currency    string     `db:"currency" json:"currency"`
	Description string     `db:"description" json:"description"`
	Category    string     `db:"category" json:"category"`
	Sizes       StringList `db:"sizes" json:"sizes"`
	Colors      ColorList  `db:"colors" json:"colors"`
	Images      ImageMap   `db:"images" json:"images"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// Validate checks the color invariants: selected colors must come from the
// fixed set, and image-map keys must be selected colors.
func (p *Product) Validate() error {
	for _, c := range p.Colors {
		if !IsValidColor(c) {
			return fmt.Errorf("unknown color %q", c)
		}
	}

	for c := range p.Images {
		if !IsValidColor(c) {
			return fmt.Errorf("unknown image color %q", c)
		}
		if !p.Colors.Contains(c) {
			return fmt.Errorf("images attached to unselected color %q", c)
		}
	}

	return nil
}

// NewProduct creates a catalog product with defaults matching the admin form
func NewProduct(name string, price float64, currency string) *Product {
	now := GetCurrentTime()

	if currency == "" {
		currency = "ZAR"
	}

	return &Product{
		ID:        GenerateID("prd"),
		Name:      name,
		Price:     price,
		Currency:  currency,
		Category:  "Uncategorized",
		Sizes:     StringList{},
		Colors:    ColorList{},
		Images:    ImageMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
