package domain

import "time"

// LineItem references a product and how many units of it a cart holds.
type LineItem struct {
	Product  string `json:"product" bson:"product" validate:"required"`
	Quantity int    `json:"quantity" bson:"quantity" validate:"gte=1"`
}

// Cart is an ordered list of line items with at most one entry per product.
type Cart struct {
	ID        string     `json:"id" bson:"_id"`
	Products  []LineItem `json:"products" bson:"products"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// FindItemIndex returns the index of the line item for productID, or -1.
func (c *Cart) FindItemIndex(productID string) int {
	for i := range c.Products {
		if c.Products[i].Product == productID {
			return i
		}
	}
	return -1
}

// AddItem increments the existing line item for productID by quantity, or
// appends a new one.
func (c *Cart) AddItem(productID string, quantity int) {
	if i := c.FindItemIndex(productID); i >= 0 {
		c.Products[i].Quantity += quantity
		return
	}
	c.Products = append(c.Products, LineItem{Product: productID, Quantity: quantity})
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var n int
	for _, item := range c.Products {
		n += item.Quantity
	}
	return n
}

// MergeLineItems collapses duplicate products by summing their quantities,
// keeping the position of each product's first occurrence. It never returns nil.
func MergeLineItems(items []LineItem) []LineItem {
	c := Cart{Products: make([]LineItem, 0, len(items))}
	for _, item := range items {
		c.AddItem(item.Product, item.Quantity)
	}
	return c.Products
}
