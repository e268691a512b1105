package cart

import (
	"context"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"go.uber.org/zap"
)

// Service defines the business logic for carts.
type Service interface {
	AddToCart(ctx context.Context, params AddParams) (*Cart, error)
	UpdateQuantity(ctx context.Context, params UpdateParams) (*Cart, error)
	RemoveFromCart(ctx context.Context, userID, productID uint) (*Cart, error)
	ClearCart(ctx context.Context, userID uint) error
	GetCart(ctx context.Context, userID uint) (*Cart, error)
	ItemCount(ctx context.Context, userID uint) (int, error)
}

type service struct {
	repo     Repository
	products product.Service
}

func NewService(repo Repository, products product.Service) Service {
	return &service{repo: repo, products: products}
}

// AddToCart inserts a new line with the current product price snapshotted,
// or accumulates quantity onto an existing line. The availability check runs
// against the cumulative quantity.
func (s *service) AddToCart(ctx context.Context, params AddParams) (*Cart, error) {
	if params.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	existing, err := s.repo.GetItem(ctx, params.UserID, params.ProductID)
	if err != nil {
		return nil, err
	}

	finalQty := params.Quantity
	if existing != nil {
		finalQty += existing.Quantity
	}

	p, err := s.products.CheckAvailability(ctx, params.ProductID, finalQty)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.CreateItem(ctx, params, p.Price); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("item added to cart",
		zap.Uint("user_id", params.UserID),
		zap.Uint("product_id", params.ProductID),
		zap.Int("quantity", finalQty),
	)

	return s.GetCart(ctx, params.UserID)
}

// UpdateQuantity sets a line's quantity. Quantity 0 removes the line;
// otherwise stock is re-validated and the price re-snapshotted.
func (s *service) UpdateQuantity(ctx context.Context, params UpdateParams) (*Cart, error) {
	if params.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	if params.Quantity == 0 {
		return s.RemoveFromCart(ctx, params.UserID, params.ProductID)
	}

	p, err := s.products.CheckAvailability(ctx, params.ProductID, params.Quantity)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.UpdateItem(ctx, params, p.Price); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, params.UserID)
}

func (s *service) RemoveFromCart(ctx context.Context, userID, productID uint) (*Cart, error) {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) ClearCart(ctx context.Context, userID uint) error {
	return s.repo.Clear(ctx, userID)
}

// GetCart never fails on an absent cart: a user with no cart rows reads as
// an empty cart, not an error.
func (s *service) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	items, err := s.repo.GetItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	c := &Cart{UserID: userID, Items: items}
	c.recompute()
	return c, nil
}

func (s *service) ItemCount(ctx context.Context, userID uint) (int, error) {
	return s.repo.CountItems(ctx, userID)
}
