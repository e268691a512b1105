package product

import "time"

type Product struct {
	ID          uint
	Title       string
	Description string
	Price       float64
	SKU         string
	Category    string
	ImageURL    *string
	Inventory   int
	InStock     bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Purchasable reports whether qty units of the product can be bought right
// now. A product that is inactive or flagged out of stock is not purchasable
// regardless of its inventory count.
func (p *Product) Purchasable(qty int) bool {
	return p.IsActive && p.InStock && p.Inventory >= qty
}

type CreateParams struct {
	Title       string
	Description string
	Price       float64
	SKU         string
	Category    string
	ImageURL    *string
	Inventory   int
}

type UpdateParams struct {
	ID          uint
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	ImageURL    *string
	Inventory   *int
	InStock     *bool
	IsActive    *bool
}

type ListOptions struct {
	Category        string
	Search          string
	MinPrice        *float64
	MaxPrice        *float64
	Page            int
	Limit           int
	IncludeInactive bool
}
