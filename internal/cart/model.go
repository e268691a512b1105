package cart

import "time"

// Item is one cart line. Price is snapshotted when the item is added and
// only refreshed on a quantity update, never on reads.
type Item struct {
	ID        uint
	UserID    uint
	ProductID uint
	Quantity  int
	Price     float64
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined product display fields.
	Title    string
	ImageURL *string
	InStock  bool
}

// Cart is the per-user pre-purchase basket. TotalAmount is always derived
// from the items, never stored or mutated independently.
type Cart struct {
	UserID      uint
	Items       []Item
	TotalAmount float64
}

func (c *Cart) recompute() {
	total := 0.0
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	c.TotalAmount = total
}

type AddParams struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

type UpdateParams struct {
	UserID    uint
	ProductID uint
	Quantity  int
}
