package domain

import (
	"strings"
	"time"
)

// Product is a catalog entry.
type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name" validate:"required,max=500"`
	Description string    `json:"description" bson:"description" validate:"max=5000"`
	Price       float64   `json:"price" bson:"price" validate:"gte=0"`
	Stock       int       `json:"stock" bson:"stock" validate:"gte=0"`
	Category    string    `json:"category" bson:"category" validate:"max=100"`
	Thumbnails  []string  `json:"thumbnails" bson:"thumbnails"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Available reports whether the product has stock left.
func (p *Product) Available() bool {
	return p.Stock > 0
}

// Availability restricts a listing by stock state.
type Availability string

const (
	AvailabilityAny        Availability = ""
	AvailabilityInStock    Availability = "in-stock"
	AvailabilityOutOfStock Availability = "out-of-stock"
)

// SortOrder is the listing order by price.
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
)

// ProductFilter narrows a product listing. Zero values match everything.
type ProductFilter struct {
	Category     string
	Availability Availability
}

// Matches reports whether p passes the filter. Category comparison is
// case-insensitive.
func (f ProductFilter) Matches(p *Product) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	switch f.Availability {
	case AvailabilityInStock:
		return p.Available()
	case AvailabilityOutOfStock:
		return !p.Available()
	}
	return true
}

// Now returns the current UTC time at millisecond precision, the resolution
// every storage backend preserves.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
