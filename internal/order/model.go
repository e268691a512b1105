package order

import (
	"math"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// UserCancellable reports whether a buyer may still cancel. Admins are not
// bound by this; they may set any status.
func (s Status) UserCancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// ShippingAddress is snapshotted into the order; all fields are required at
// checkout.
type ShippingAddress struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type PaymentInfo struct {
	Method        string
	TransactionID *string
	PaymentStatus PaymentStatus
}

// Line captures product title and unit price at order time, decoupled from
// later catalog edits or soft-deletes.
type Line struct {
	ID        uint
	OrderID   uint
	ProductID uint
	Title     string
	Quantity  int
	Price     float64
}

type Order struct {
	ID              uint
	UserID          uint
	OrderNumber     string
	Lines           []Line
	ShippingAddress ShippingAddress
	PaymentInfo     PaymentInfo
	Status          Status
	Subtotal        float64
	Tax             float64
	Shipping        float64
	Total           float64
	Notes           *string
	TrackingNumber  *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Pricing is the storefront's totals policy.
type Pricing struct {
	TaxRate               float64
	FreeShippingThreshold float64
	ShippingFlatFee       float64
}

type Totals struct {
	Subtotal float64
	Tax      float64
	Shipping float64
	Total    float64
}

// ComputeTotals derives server-side totals from a cart subtotal. Client
// supplied amounts are never trusted.
func (p Pricing) ComputeTotals(subtotal float64) Totals {
	tax := roundCents(subtotal * p.TaxRate)
	shipping := p.ShippingFlatFee
	if subtotal > p.FreeShippingThreshold {
		shipping = 0
	}
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    roundCents(subtotal + tax + shipping),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

type ListOptions struct {
	UserID    *uint
	Status    *Status
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalOrders int64 `json:"totalOrders"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

type CheckoutInput struct {
	ShippingAddress ShippingAddress
	PaymentMethod   string
	Notes           *string
}

type PaidCheckoutInput struct {
	CheckoutInput
	IntentID string
}
