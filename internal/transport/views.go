package transport

import (
	"time"

	"storefront-be/internal/cart"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/user"
)

// View structs shape API responses; passwords and other internals never
// reach the wire.

type userView struct {
	ID        uint         `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Role      string       `json:"role"`
	Phone     *string      `json:"phone,omitempty"`
	Address   user.Address `json:"address"`
	CreatedAt time.Time    `json:"createdAt"`
}

func toUserView(u user.User) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Phone:     u.Phone,
		Address:   u.Address,
		CreatedAt: u.CreatedAt,
	}
}

type productView struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	SKU         string    `json:"sku"`
	Category    string    `json:"category"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Inventory   int       `json:"inventory"`
	InStock     bool      `json:"inStock"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProductView(p product.Product) productView {
	return productView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		SKU:         p.SKU,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Inventory:   p.Inventory,
		InStock:     p.InStock,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductViews(ps []product.Product) []productView {
	views := make([]productView, 0, len(ps))
	for _, p := range ps {
		views = append(views, toProductView(p))
	}
	return views
}

type cartItemView struct {
	ProductID uint    `json:"productId"`
	Title     string  `json:"title"`
	ImageURL  *string `json:"imageUrl,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	InStock   bool    `json:"inStock"`
}

type cartView struct {
	Items       []cartItemView `json:"items"`
	TotalAmount float64        `json:"totalAmount"`
}

func toCartView(c *cart.Cart) cartView {
	items := make([]cartItemView, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemView{
			ProductID: it.ProductID,
			Title:     it.Title,
			ImageURL:  it.ImageURL,
			Quantity:  it.Quantity,
			Price:     it.Price,
			InStock:   it.InStock,
		})
	}
	return cartView{Items: items, TotalAmount: c.TotalAmount}
}

type orderLineView struct {
	ProductID uint    `json:"productId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderView struct {
	ID              uint                  `json:"id"`
	OrderNumber     string                `json:"orderNumber"`
	Items           []orderLineView       `json:"items"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	PaymentStatus   string                `json:"paymentStatus"`
	Status          string                `json:"status"`
	Subtotal        float64               `json:"subtotal"`
	Tax             float64               `json:"tax"`
	Shipping        float64               `json:"shipping"`
	Total           float64               `json:"total"`
	Notes           *string               `json:"notes,omitempty"`
	TrackingNumber  *string               `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

func toOrderView(o *order.Order) orderView {
	lines := make([]orderLineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineView{
			ProductID: l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			Price:     l.Price,
		})
	}
	return orderView{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Items:           lines,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentInfo.Method,
		PaymentStatus:   string(o.PaymentInfo.PaymentStatus),
		Status:          string(o.Status),
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Shipping:        o.Shipping,
		Total:           o.Total,
		Notes:           o.Notes,
		TrackingNumber:  o.TrackingNumber,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderViews(orders []order.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, toOrderView(&orders[i]))
	}
	return views
}
