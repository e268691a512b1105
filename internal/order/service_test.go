package order

import (
	"context"
	"strings"
	"testing"

	"storefront-be/internal/cart"
	"storefront-be/internal/payment"
	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateFromCart(ctx context.Context, o *Order) (*Order, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, opts ListOptions) ([]Order, int64, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uint, status Status, trackingNumber *string) (*Order, error) {
	args := m.Called(ctx, id, status, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) UpdateStatusByTransactionID(ctx context.Context, txID string, status Status, payStatus PaymentStatus) (bool, error) {
	args := m.Called(ctx, txID, status, payStatus)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CancelAndRestock(ctx context.Context, o *Order) (*Order, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) AddToCart(ctx context.Context, params cart.AddParams) (*cart.Cart, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, params cart.UpdateParams) (*cart.Cart, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) RemoveFromCart(ctx context.Context, userID, productID uint) (*cart.Cart, error) {
	args := m.Called(ctx, userID, productID)
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) ClearCart(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCartService) GetCart(ctx context.Context, userID uint) (*cart.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) ItemCount(ctx context.Context, userID uint) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetProduct(ctx context.Context, id uint) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, opts product.ListOptions) ([]product.Product, int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]product.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductService) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductService) CreateProduct(ctx context.Context, params product.CreateParams) (*product.Product, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, params product.UpdateParams) (*product.Product, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductService) CheckAvailability(ctx context.Context, productID uint, qty int) (*product.Product, error) {
	args := m.Called(ctx, productID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*payment.Intent, error) {
	args := m.Called(ctx, amount, currency, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) RetrieveIntent(ctx context.Context, id string) (*payment.Intent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) Refund(ctx context.Context, intentID string, amount *float64, reason string) (*payment.RefundResult, error) {
	args := m.Called(ctx, intentID, amount, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.RefundResult), args.Error(1)
}

var testPricing = Pricing{TaxRate: 0.08, FreeShippingThreshold: 100, ShippingFlatFee: 15}

type fixture struct {
	repo     *MockRepository
	carts    *MockCartService
	products *MockProductService
	gateway  *MockGateway
	svc      Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(MockRepository),
		carts:    new(MockCartService),
		products: new(MockProductService),
		gateway:  new(MockGateway),
	}
	f.svc = NewService(f.repo, f.carts, f.products, f.gateway, testPricing)
	return f
}

func testCart(userID uint, items ...cart.Item) *cart.Cart {
	c := &cart.Cart{UserID: userID, Items: items}
	for _, it := range items {
		c.TotalAmount += it.Price * float64(it.Quantity)
	}
	return c
}

func testInput() CheckoutInput {
	return CheckoutInput{
		ShippingAddress: ShippingAddress{
			Name: "Jo Bloggs", Email: "jo@example.com", Phone: "555-0100",
			Street: "1 Main St", City: "Springfield", State: "IL",
			ZipCode: "62701", Country: "US",
		},
		PaymentMethod: payment.MethodCard,
	}
}

func TestPricing_ComputeTotals(t *testing.T) {
	t.Run("Subtotal above free shipping threshold", func(t *testing.T) {
		totals := testPricing.ComputeTotals(200)
		assert.Equal(t, 16.0, totals.Tax)
		assert.Equal(t, 0.0, totals.Shipping)
		assert.Equal(t, 216.0, totals.Total)
	})

	t.Run("Subtotal below threshold pays flat shipping", func(t *testing.T) {
		totals := testPricing.ComputeTotals(50)
		assert.Equal(t, 4.0, totals.Tax)
		assert.Equal(t, 15.0, totals.Shipping)
		assert.Equal(t, 69.0, totals.Total)
	})

	t.Run("Exactly at threshold still pays shipping", func(t *testing.T) {
		totals := testPricing.ComputeTotals(100)
		assert.Equal(t, 15.0, totals.Shipping)
		assert.Equal(t, 123.0, totals.Total)
	})

	t.Run("Tax rounds to cents", func(t *testing.T) {
		totals := testPricing.ComputeTotals(19.99)
		assert.Equal(t, 1.6, totals.Tax)
	})
}

func TestService_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates pending order from cart", func(t *testing.T) {
		f := newFixture()

		f.carts.On("GetCart", ctx, uint(1)).Return(testCart(1,
			cart.Item{ProductID: 1, Quantity: 2, Price: 100},
		), nil)
		f.products.On("CheckAvailability", ctx, uint(1), 2).
			Return(&product.Product{ID: 1, Title: "Widget", Inventory: 5, InStock: true, IsActive: true}, nil)
		f.repo.On("CreateFromCart", ctx, mock.MatchedBy(func(o *Order) bool {
			return o.Status == StatusPending &&
				o.PaymentInfo.PaymentStatus == PaymentPending &&
				o.Subtotal == 200 && o.Tax == 16 && o.Shipping == 0 && o.Total == 216 &&
				len(o.Lines) == 1 && o.Lines[0].Title == "Widget" && o.Lines[0].Price == 100 &&
				strings.HasPrefix(o.OrderNumber, "ORD-")
		})).Return(&Order{ID: 10, Status: StatusPending, Total: 216}, nil)

		o, err := f.svc.Checkout(ctx, 1, testInput())
		require.NoError(t, err)
		assert.Equal(t, uint(10), o.ID)
		f.repo.AssertExpectations(t)
	})

	t.Run("Empty cart", func(t *testing.T) {
		f := newFixture()
		f.carts.On("GetCart", ctx, uint(1)).Return(testCart(1), nil)

		_, err := f.svc.Checkout(ctx, 1, testInput())
		assert.ErrorIs(t, err, ErrEmptyCart)
		f.repo.AssertNotCalled(t, "CreateFromCart", mock.Anything, mock.Anything)
	})

	t.Run("Stale cart line fails checkout", func(t *testing.T) {
		f := newFixture()

		f.carts.On("GetCart", ctx, uint(1)).Return(testCart(1,
			cart.Item{ProductID: 1, Quantity: 2, Price: 100},
			cart.Item{ProductID: 2, Quantity: 9, Price: 10},
		), nil)
		f.products.On("CheckAvailability", ctx, uint(1), 2).
			Return(&product.Product{ID: 1, Title: "Widget", Inventory: 5, InStock: true, IsActive: true}, nil)
		f.products.On("CheckAvailability", ctx, uint(2), 9).
			Return(nil, &product.InsufficientInventoryError{ProductID: 2, Title: "Gadget", Requested: 9, Available: 3})

		_, err := f.svc.Checkout(ctx, 1, testInput())
		_, ok := product.IsInsufficientInventory(err)
		assert.True(t, ok)
		f.repo.AssertNotCalled(t, "CreateFromCart", mock.Anything, mock.Anything)
	})
}

func TestService_ConfirmPayment(t *testing.T) {
	ctx := context.Background()

	succeededIntent := func(amount float64) *payment.Intent {
		return &payment.Intent{ID: "pi_1", Status: "succeeded", Amount: amount, Currency: "usd"}
	}

	t.Run("Creates confirmed order with transaction id", func(t *testing.T) {
		f := newFixture()

		f.gateway.On("RetrieveIntent", ctx, "pi_1").Return(succeededIntent(216.00), nil)
		f.carts.On("GetCart", ctx, uint(1)).Return(testCart(1,
			cart.Item{ProductID: 1, Quantity: 2, Price: 100},
		), nil)
		f.products.On("CheckAvailability", ctx, uint(1), 2).
			Return(&product.Product{ID: 1, Title: "Widget", Inventory: 5, InStock: true, IsActive: true}, nil)
		f.repo.On("CreateFromCart", ctx, mock.MatchedBy(func(o *Order) bool {
			return o.Status == StatusConfirmed &&
				o.PaymentInfo.PaymentStatus == PaymentCompleted &&
				o.PaymentInfo.TransactionID != nil && *o.PaymentInfo.TransactionID == "pi_1"
		})).Return(&Order{ID: 11, Status: StatusConfirmed}, nil)

		o, err := f.svc.ConfirmPayment(ctx, 1, PaidCheckoutInput{CheckoutInput: testInput(), IntentID: "pi_1"})
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, o.Status)
	})

	t.Run("Rejects unfinished payment", func(t *testing.T) {
		f := newFixture()

		f.gateway.On("RetrieveIntent", ctx, "pi_1").
			Return(&payment.Intent{ID: "pi_1", Status: "requires_payment_method"}, nil)

		_, err := f.svc.ConfirmPayment(ctx, 1, PaidCheckoutInput{CheckoutInput: testInput(), IntentID: "pi_1"})
		assert.ErrorIs(t, err, ErrPaymentNotComplete)
		f.carts.AssertNotCalled(t, "GetCart", mock.Anything, mock.Anything)
	})

	t.Run("Rejects amount mismatch beyond tolerance", func(t *testing.T) {
		f := newFixture()

		// cart totals to 216.00 but the intent only charged 200.00
		f.gateway.On("RetrieveIntent", ctx, "pi_1").Return(succeededIntent(200.00), nil)
		f.carts.On("GetCart", ctx, uint(1)).Return(testCart(1,
			cart.Item{ProductID: 1, Quantity: 2, Price: 100},
		), nil)
		f.products.On("CheckAvailability", ctx, uint(1), 2).
			Return(&product.Product{ID: 1, Title: "Widget", Inventory: 5, InStock: true, IsActive: true}, nil)

		_, err := f.svc.ConfirmPayment(ctx, 1, PaidCheckoutInput{CheckoutInput: testInput(), IntentID: "pi_1"})
		assert.ErrorIs(t, err, ErrAmountMismatch)
		f.repo.AssertNotCalled(t, "CreateFromCart", mock.Anything, mock.Anything)
	})

	t.Run("Accepts rounding drift within a cent", func(t *testing.T) {
		f := newFixture()

		f.gateway.On("RetrieveIntent", ctx, "pi_1").Return(succeededIntent(216.01), nil)
		f.carts.On("GetCart", ctx, uint(1)).Return(testCart(1,
			cart.Item{ProductID: 1, Quantity: 2, Price: 100},
		), nil)
		f.products.On("CheckAvailability", ctx, uint(1), 2).
			Return(&product.Product{ID: 1, Title: "Widget", Inventory: 5, InStock: true, IsActive: true}, nil)
		f.repo.On("CreateFromCart", ctx, mock.Anything).
			Return(&Order{ID: 12, Status: StatusConfirmed}, nil)

		_, err := f.svc.ConfirmPayment(ctx, 1, PaidCheckoutInput{CheckoutInput: testInput(), IntentID: "pi_1"})
		assert.NoError(t, err)
	})
}

func TestService_HandleProcessorEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("Succeeded event confirms order", func(t *testing.T) {
		f := newFixture()
		f.repo.On("UpdateStatusByTransactionID", ctx, "pi_1", StatusConfirmed, PaymentCompleted).
			Return(true, nil)

		err := f.svc.HandleProcessorEvent(ctx, payment.Event{Type: payment.EventPaymentSucceeded, IntentID: "pi_1"})
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("Failed event cancels without touching inventory", func(t *testing.T) {
		f := newFixture()
		f.repo.On("UpdateStatusByTransactionID", ctx, "pi_1", StatusCancelled, PaymentFailed).
			Return(true, nil)

		err := f.svc.HandleProcessorEvent(ctx, payment.Event{Type: payment.EventPaymentFailed, IntentID: "pi_1"})
		require.NoError(t, err)
		f.repo.AssertNotCalled(t, "CancelAndRestock", mock.Anything, mock.Anything)
	})

	t.Run("Unknown event type is ignored", func(t *testing.T) {
		f := newFixture()

		err := f.svc.HandleProcessorEvent(ctx, payment.Event{Type: "charge.updated", IntentID: "pi_1"})
		require.NoError(t, err)
		f.repo.AssertNotCalled(t, "UpdateStatusByTransactionID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown intent is not an error", func(t *testing.T) {
		f := newFixture()
		f.repo.On("UpdateStatusByTransactionID", ctx, "pi_x", StatusConfirmed, PaymentCompleted).
			Return(false, nil)

		err := f.svc.HandleProcessorEvent(ctx, payment.Event{Type: payment.EventPaymentSucceeded, IntentID: "pi_x"})
		assert.NoError(t, err)
	})
}

func TestService_GetOrder(t *testing.T) {
	owned := &Order{ID: 5, UserID: 1, Status: StatusPending}

	t.Run("Owner reads own order", func(t *testing.T) {
		f := newFixture()
		ctx := utils.SetUserContext(context.Background(), 1, "jo@example.com", utils.RoleUser)
		f.repo.On("FindByID", ctx, uint(5)).Return(owned, nil)

		o, err := f.svc.GetOrder(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, uint(5), o.ID)
	})

	t.Run("Other user's order reads as missing", func(t *testing.T) {
		f := newFixture()
		ctx := utils.SetUserContext(context.Background(), 2, "mx@example.com", utils.RoleUser)
		f.repo.On("FindByID", ctx, uint(5)).Return(owned, nil)

		_, err := f.svc.GetOrder(ctx, 5)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Admin reads any order", func(t *testing.T) {
		f := newFixture()
		ctx := utils.SetUserContext(context.Background(), 9, "admin@example.com", utils.RoleAdmin)
		f.repo.On("FindByID", ctx, uint(5)).Return(owned, nil)

		_, err := f.svc.GetOrder(ctx, 5)
		assert.NoError(t, err)
	})
}

func TestService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Pending order cancels and restocks", func(t *testing.T) {
		f := newFixture()
		o := &Order{ID: 5, UserID: 1, Status: StatusPending,
			Lines: []Line{{ProductID: 1, Quantity: 2}}}
		f.repo.On("FindByID", ctx, uint(5)).Return(o, nil)
		f.repo.On("CancelAndRestock", ctx, o).
			Return(&Order{ID: 5, UserID: 1, Status: StatusCancelled}, nil)

		cancelled, err := f.svc.CancelOrder(ctx, 1, 5)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
	})

	t.Run("Shipped order cannot be cancelled", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByID", ctx, uint(5)).
			Return(&Order{ID: 5, UserID: 1, Status: StatusShipped}, nil)

		_, err := f.svc.CancelOrder(ctx, 1, 5)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("Second cancel is rejected", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByID", ctx, uint(5)).
			Return(&Order{ID: 5, UserID: 1, Status: StatusCancelled}, nil)

		_, err := f.svc.CancelOrder(ctx, 1, 5)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		f.repo.AssertNotCalled(t, "CancelAndRestock", mock.Anything, mock.Anything)
	})

	t.Run("Other user's order reads as missing", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByID", ctx, uint(5)).
			Return(&Order{ID: 5, UserID: 2, Status: StatusPending}, nil)

		_, err := f.svc.CancelOrder(ctx, 1, 5)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestService_AdminUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid status with tracking number", func(t *testing.T) {
		f := newFixture()
		tracking := "1Z999AA10123456784"
		f.repo.On("UpdateStatus", ctx, uint(5), StatusShipped, &tracking).
			Return(&Order{ID: 5, Status: StatusShipped, TrackingNumber: &tracking}, nil)

		o, err := f.svc.AdminUpdateStatus(ctx, 5, StatusShipped, &tracking)
		require.NoError(t, err)
		assert.Equal(t, StatusShipped, o.Status)
	})

	t.Run("Unknown status", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.AdminUpdateStatus(ctx, 5, Status("returned"), nil)
		assert.ErrorIs(t, err, ErrInvalidStatus)
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_RefundPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Marks order refunded, inventory untouched", func(t *testing.T) {
		f := newFixture()
		f.gateway.On("Refund", ctx, "pi_1", (*float64)(nil), "requested_by_customer").
			Return(&payment.RefundResult{ID: "re_1", Amount: 216, Status: "succeeded"}, nil)
		f.repo.On("UpdateStatusByTransactionID", ctx, "pi_1", StatusCancelled, PaymentRefunded).
			Return(true, nil)

		res, err := f.svc.RefundPayment(ctx, "pi_1", nil, "requested_by_customer")
		require.NoError(t, err)
		assert.Equal(t, "re_1", res.ID)
		f.repo.AssertNotCalled(t, "CancelAndRestock", mock.Anything, mock.Anything)
	})

	t.Run("Processor failure propagates", func(t *testing.T) {
		f := newFixture()
		f.gateway.On("Refund", ctx, "pi_1", (*float64)(nil), "").
			Return(nil, &payment.UpstreamError{Op: "refund", Message: "charge already refunded"})

		_, err := f.svc.RefundPayment(ctx, "pi_1", nil, "")
		_, ok := payment.IsUpstream(err)
		assert.True(t, ok)
		f.repo.AssertNotCalled(t, "UpdateStatusByTransactionID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Refund with no matching order still succeeds", func(t *testing.T) {
		f := newFixture()
		f.gateway.On("Refund", ctx, "pi_z", (*float64)(nil), "").
			Return(&payment.RefundResult{ID: "re_9", Amount: 10, Status: "succeeded"}, nil)
		f.repo.On("UpdateStatusByTransactionID", ctx, "pi_z", StatusCancelled, PaymentRefunded).
			Return(false, nil)

		res, err := f.svc.RefundPayment(ctx, "pi_z", nil, "")
		require.NoError(t, err)
		assert.Equal(t, "re_9", res.ID)
	})
}

func TestService_ListUserOrders(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	f.repo.On("List", ctx, mock.MatchedBy(func(opts ListOptions) bool {
		return opts.UserID != nil && *opts.UserID == 1 && opts.Page == 2 && opts.Limit == 10
	})).Return([]Order{{ID: 11}, {ID: 12}}, int64(25), nil)

	orders, pg, err := f.svc.ListUserOrders(ctx, 1, ListOptions{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, 3, pg.TotalPages)
	assert.Equal(t, int64(25), pg.TotalOrders)
	assert.True(t, pg.HasNextPage)
	assert.True(t, pg.HasPrevPage)
}
