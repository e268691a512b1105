package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// CreateFromCart persists the order, its lines, the inventory
	// reservation and the cart cleanup in one transaction. Either all of it
	// happens or none of it does.
	CreateFromCart(ctx context.Context, o *Order) (*Order, error)

	FindByID(ctx context.Context, id uint) (*Order, error)
	List(ctx context.Context, opts ListOptions) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, id uint, status Status, trackingNumber *string) (*Order, error)

	// UpdateStatusByTransactionID reconciles processor notifications. A
	// missing transaction id is reported, not treated as an error, because
	// the processor may notify about intents we never turned into orders.
	UpdateStatusByTransactionID(ctx context.Context, txID string, status Status, payStatus PaymentStatus) (bool, error)

	// CancelAndRestock flips the order to cancelled and returns every line's
	// quantity to inventory in the same transaction.
	CancelAndRestock(ctx context.Context, o *Order) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, user_id, order_number,
	ship_name, ship_email, ship_phone, ship_street, ship_city, ship_state, ship_zip_code, ship_country,
	payment_method, transaction_id, payment_status, status,
	subtotal, tax, shipping, total, notes, tracking_number, created_at, updated_at`

func scanOrder(scanner interface {
	Scan(dest ...interface{}) error
}) (*Order, error) {
	var o Order
	err := scanner.Scan(
		&o.ID, &o.UserID, &o.OrderNumber,
		&o.ShippingAddress.Name, &o.ShippingAddress.Email, &o.ShippingAddress.Phone,
		&o.ShippingAddress.Street, &o.ShippingAddress.City, &o.ShippingAddress.State,
		&o.ShippingAddress.ZipCode, &o.ShippingAddress.Country,
		&o.PaymentInfo.Method, &o.PaymentInfo.TransactionID, &o.PaymentInfo.PaymentStatus,
		&o.Status,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.Total,
		&o.Notes, &o.TrackingNumber, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) CreateFromCart(ctx context.Context, o *Order) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, order_number,
			ship_name, ship_email, ship_phone, ship_street, ship_city, ship_state, ship_zip_code, ship_country,
			payment_method, transaction_id, payment_status, status,
			subtotal, tax, shipping, total, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at`,
		o.UserID, o.OrderNumber,
		o.ShippingAddress.Name, o.ShippingAddress.Email, o.ShippingAddress.Phone,
		o.ShippingAddress.Street, o.ShippingAddress.City, o.ShippingAddress.State,
		o.ShippingAddress.ZipCode, o.ShippingAddress.Country,
		o.PaymentInfo.Method, o.PaymentInfo.TransactionID, o.PaymentInfo.PaymentStatus, o.Status,
		o.Subtotal, o.Tax, o.Shipping, o.Total, o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		line.OrderID = o.ID

		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, title, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			line.OrderID, line.ProductID, line.Title, line.Quantity, line.Price,
		).Scan(&line.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}

		// The conditional decrement closes the window between the
		// availability check and the reservation. A lost reservation means
		// another order got there first.
		reserved, err := product.ReserveInventory(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve inventory: %w", err)
		}
		if !reserved {
			return nil, r.insufficientInventory(ctx, tx, line)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, o.UserID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.FromCtx(ctx).Info("order created",
		zap.Uint("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.Float64("total", o.Total),
	)
	return o, nil
}

// insufficientInventory builds the typed failure for a reservation that lost
// the race, using the product's state as seen inside the transaction.
func (r *repository) insufficientInventory(ctx context.Context, tx *sql.Tx, line *Line) error {
	var title string
	var available int
	err := tx.QueryRowContext(ctx,
		`SELECT title, inventory FROM products WHERE id = $1`, line.ProductID,
	).Scan(&title, &available)
	if errors.Is(err, sql.ErrNoRows) {
		return product.ErrProductNotFound
	}
	if err != nil {
		return err
	}
	return &product.InsufficientInventoryError{
		ProductID: line.ProductID,
		Title:     title,
		Requested: line.Quantity,
		Available: available,
	}
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) loadLines(ctx context.Context, o *Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, title, quantity, price
		FROM order_items WHERE order_id = $1 ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Title, &l.Quantity, &l.Price); err != nil {
			return err
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"total":     "total",
	"status":    "status",
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]Order, int64, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if opts.UserID != nil {
		args = append(args, *opts.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE `+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	sortCol, ok := sortColumns[opts.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(opts.SortOrder, "asc") {
		dir = "ASC"
	}

	limit := opts.Limit
	if limit < 1 {
		limit = 10
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, sortCol, dir, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadLinesBatch(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) loadLinesBatch(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[uint]*Order, len(orders))
	for i := range orders {
		ids[i] = int64(orders[i].ID)
		byID[orders[i].ID] = &orders[i]
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, title, quantity, price
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Title, &l.Quantity, &l.Price); err != nil {
			return err
		}
		if o, ok := byID[l.OrderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	return rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, status Status, trackingNumber *string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $1, tracking_number = COALESCE($2, tracking_number), updated_at = NOW()
		WHERE id = $3
		RETURNING `+orderColumns,
		status, trackingNumber, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) UpdateStatusByTransactionID(ctx context.Context, txID string, status Status, payStatus PaymentStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, payment_status = $2, updated_at = NOW()
		WHERE transaction_id = $3`,
		status, payStatus, txID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) CancelAndRestock(ctx context.Context, o *Order) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ($3, $4)
		RETURNING `+orderColumns,
		StatusCancelled, o.ID, StatusPending, StatusConfirmed)

	cancelled, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}

	for _, line := range o.Lines {
		if err := product.RestoreInventory(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to restore inventory: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	cancelled.Lines = o.Lines
	logger.FromCtx(ctx).Info("order cancelled",
		zap.Uint("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
	)
	return cancelled, nil
}
