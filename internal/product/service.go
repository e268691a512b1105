package product

import (
	"context"

	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	GetProduct(ctx context.Context, id uint) (*Product, error)
	ListProducts(ctx context.Context, opts ListOptions) ([]Product, int64, error)
	Categories(ctx context.Context) ([]string, error)

	CreateProduct(ctx context.Context, params CreateParams) (*Product, error)
	UpdateProduct(ctx context.Context, params UpdateParams) (*Product, error)
	DeleteProduct(ctx context.Context, id uint) error

	// CheckAvailability is the uniform catalog-consistency gate applied at
	// add-to-cart, quantity-update and checkout time.
	CheckAvailability(ctx context.Context, productID uint, qty int) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// GetProduct returns an active product by id. Inactive products read as
// missing for non-admin callers.
func (s *service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if !p.IsActive && !utils.IsAdmin(ctx) {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) ListProducts(ctx context.Context, opts ListOptions) ([]Product, int64, error) {
	if opts.IncludeInactive && !utils.IsAdmin(ctx) {
		opts.IncludeInactive = false
	}
	return s.repo.List(ctx, opts)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *service) CreateProduct(ctx context.Context, params CreateParams) (*Product, error) {
	if params.SKU == "" {
		params.SKU = utils.GenerateSKU()
	}

	p, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product created",
		zap.Uint("product_id", p.ID),
		zap.String("sku", p.SKU),
	)
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, params UpdateParams) (*Product, error) {
	return s.repo.Update(ctx, params)
}

func (s *service) DeleteProduct(ctx context.Context, id uint) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *service) CheckAvailability(ctx context.Context, productID uint, qty int) (*Product, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive || !p.InStock {
		return nil, ErrProductNotFound
	}
	if p.Inventory < qty {
		return nil, &InsufficientInventoryError{
			ProductID: p.ID,
			Title:     p.Title,
			Requested: qty,
			Available: p.Inventory,
		}
	}
	return p, nil
}
