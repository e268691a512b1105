package order

import (
	"context"
	"math"

	"storefront-be/internal/cart"
	"storefront-be/internal/logger"
	"storefront-be/internal/payment"
	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

// amountTolerance absorbs float rounding between our totals and the
// processor's integer cents.
const amountTolerance = 0.01

type Service interface {
	// Checkout converts the caller's cart into a pending order.
	Checkout(ctx context.Context, userID uint, input CheckoutInput) (*Order, error)

	// ConfirmPayment converts the cart into a confirmed order after
	// verifying the payment intent succeeded and charged the right amount.
	ConfirmPayment(ctx context.Context, userID uint, input PaidCheckoutInput) (*Order, error)

	// HandleProcessorEvent reconciles order state from a verified processor
	// notification.
	HandleProcessorEvent(ctx context.Context, ev payment.Event) error

	GetOrder(ctx context.Context, orderID uint) (*Order, error)
	ListUserOrders(ctx context.Context, userID uint, opts ListOptions) ([]Order, Pagination, error)
	ListAllOrders(ctx context.Context, opts ListOptions) ([]Order, Pagination, error)

	CancelOrder(ctx context.Context, userID, orderID uint) (*Order, error)
	AdminUpdateStatus(ctx context.Context, orderID uint, status Status, trackingNumber *string) (*Order, error)
	RefundPayment(ctx context.Context, intentID string, amount *float64, reason string) (*payment.RefundResult, error)
}

type service struct {
	repo     Repository
	carts    cart.Service
	products product.Service
	gateway  payment.Gateway
	pricing  Pricing
}

func NewService(repo Repository, carts cart.Service, products product.Service, gateway payment.Gateway, pricing Pricing) Service {
	return &service{
		repo:     repo,
		carts:    carts,
		products: products,
		gateway:  gateway,
		pricing:  pricing,
	}
}

// buildLines re-validates every cart line against the live catalog and turns
// it into order lines. Prices come from the cart snapshot, titles from the
// catalog.
func (s *service) buildLines(ctx context.Context, c *cart.Cart) ([]Line, error) {
	lines := make([]Line, 0, len(c.Items))
	for _, item := range c.Items {
		p, err := s.products.CheckAvailability(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		lines = append(lines, Line{
			ProductID: item.ProductID,
			Title:     p.Title,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return lines, nil
}

func (s *service) Checkout(ctx context.Context, userID uint, input CheckoutInput) (*Order, error) {
	c, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	lines, err := s.buildLines(ctx, c)
	if err != nil {
		return nil, err
	}

	totals := s.pricing.ComputeTotals(c.TotalAmount)
	o := &Order{
		UserID:          userID,
		OrderNumber:     utils.GenerateOrderNumber(),
		Lines:           lines,
		ShippingAddress: input.ShippingAddress,
		PaymentInfo: PaymentInfo{
			Method:        input.PaymentMethod,
			PaymentStatus: PaymentPending,
		},
		Status:   StatusPending,
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Shipping: totals.Shipping,
		Total:    totals.Total,
		Notes:    input.Notes,
	}

	return s.repo.CreateFromCart(ctx, o)
}

func (s *service) ConfirmPayment(ctx context.Context, userID uint, input PaidCheckoutInput) (*Order, error) {
	intent, err := s.gateway.RetrieveIntent(ctx, input.IntentID)
	if err != nil {
		return nil, err
	}
	if !intent.Succeeded() {
		return nil, ErrPaymentNotComplete
	}

	c, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	lines, err := s.buildLines(ctx, c)
	if err != nil {
		return nil, err
	}

	totals := s.pricing.ComputeTotals(c.TotalAmount)
	if math.Abs(intent.Amount-totals.Total) > amountTolerance {
		logger.FromCtx(ctx).Warn("payment amount mismatch",
			zap.Uint("user_id", userID),
			zap.Float64("charged", intent.Amount),
			zap.Float64("expected", totals.Total),
		)
		return nil, ErrAmountMismatch
	}

	o := &Order{
		UserID:          userID,
		OrderNumber:     utils.GenerateOrderNumber(),
		Lines:           lines,
		ShippingAddress: input.ShippingAddress,
		PaymentInfo: PaymentInfo{
			Method:        input.PaymentMethod,
			TransactionID: &intent.ID,
			PaymentStatus: PaymentCompleted,
		},
		Status:   StatusConfirmed,
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Shipping: totals.Shipping,
		Total:    totals.Total,
		Notes:    input.Notes,
	}

	return s.repo.CreateFromCart(ctx, o)
}

// HandleProcessorEvent applies a verified notification to the matching
// order. Events for unknown intents are logged and dropped: the processor
// may notify about charges that never became orders on our side.
//
// A failed payment cancels the order without restocking; the pending order
// never reserved inventory through this path, and reconciliation of stranded
// reservations is an operator concern.
func (s *service) HandleProcessorEvent(ctx context.Context, ev payment.Event) error {
	log := logger.FromCtx(ctx).With(
		zap.String("event_type", ev.Type),
		zap.String("intent_id", ev.IntentID),
	)

	var status Status
	var payStatus PaymentStatus
	switch ev.Type {
	case payment.EventPaymentSucceeded:
		status, payStatus = StatusConfirmed, PaymentCompleted
	case payment.EventPaymentFailed:
		status, payStatus = StatusCancelled, PaymentFailed
	default:
		log.Debug("ignoring unhandled processor event")
		return nil
	}

	if ev.IntentID == "" {
		log.Warn("processor event without intent id")
		return nil
	}

	found, err := s.repo.UpdateStatusByTransactionID(ctx, ev.IntentID, status, payStatus)
	if err != nil {
		return err
	}
	if !found {
		log.Warn("processor event matched no order")
		return nil
	}

	log.Info("order reconciled from processor event", zap.String("status", string(status)))
	return nil
}

// GetOrder enforces ownership: non-admin callers reading someone else's
// order see a not-found, not a forbidden.
func (s *service) GetOrder(ctx context.Context, orderID uint) (*Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	if !utils.IsAdmin(ctx) {
		userID, ok := utils.GetUserIDFromContext(ctx)
		if !ok || o.UserID != userID {
			return nil, ErrOrderNotFound
		}
	}
	return o, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uint, opts ListOptions) ([]Order, Pagination, error) {
	opts.UserID = &userID
	return s.list(ctx, opts)
}

func (s *service) ListAllOrders(ctx context.Context, opts ListOptions) ([]Order, Pagination, error) {
	return s.list(ctx, opts)
}

func (s *service) list(ctx context.Context, opts ListOptions) ([]Order, Pagination, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 10
	}

	orders, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, Pagination{}, err
	}

	totalPages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	return orders, Pagination{
		CurrentPage: opts.Page,
		TotalPages:  totalPages,
		TotalOrders: total,
		HasNextPage: opts.Page < totalPages,
		HasPrevPage: opts.Page > 1,
	}, nil
}

func (s *service) CancelOrder(ctx context.Context, userID, orderID uint) (*Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil || (o.UserID != userID && !utils.IsAdmin(ctx)) {
		return nil, ErrOrderNotFound
	}
	if !o.Status.UserCancellable() {
		return nil, ErrInvalidTransition
	}

	return s.repo.CancelAndRestock(ctx, o)
}

// AdminUpdateStatus sets any valid status without lifecycle restrictions and
// without touching inventory. Operators own the consequences.
func (s *service) AdminUpdateStatus(ctx context.Context, orderID uint, status Status, trackingNumber *string) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, orderID, status, trackingNumber)
}

// RefundPayment refunds through the processor and marks the matching order
// refunded and cancelled. Inventory is deliberately not restored here; see
// HandleProcessorEvent for the same stance on failed payments.
func (s *service) RefundPayment(ctx context.Context, intentID string, amount *float64, reason string) (*payment.RefundResult, error) {
	res, err := s.gateway.Refund(ctx, intentID, amount, reason)
	if err != nil {
		return nil, err
	}

	found, err := s.repo.UpdateStatusByTransactionID(ctx, intentID, StatusCancelled, PaymentRefunded)
	if err != nil {
		logger.FromCtx(ctx).Error("refund processed but order update failed",
			zap.String("intent_id", intentID),
			zap.Error(err),
		)
		return res, nil
	}
	if !found {
		logger.FromCtx(ctx).Warn("refund matched no order", zap.String("intent_id", intentID))
	}
	return res, nil
}
