package cart

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	GetItems(ctx context.Context, userID uint) ([]Item, error)
	GetItem(ctx context.Context, userID, productID uint) (*Item, error)
	CreateItem(ctx context.Context, params AddParams, price float64) (*Item, error)
	UpdateItem(ctx context.Context, params UpdateParams, price float64) (*Item, error)
	RemoveItem(ctx context.Context, userID, productID uint) error
	Clear(ctx context.Context, userID uint) error
	CountItems(ctx context.Context, userID uint) (int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetItems(ctx context.Context, userID uint) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.price,
		       c.created_at, c.updated_at,
		       p.title, p.image_url, p.in_stock
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		err := rows.Scan(
			&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.Price,
			&it.CreatedAt, &it.UpdatedAt,
			&it.Title, &it.ImageURL, &it.InStock,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

func (r *repository) GetItem(ctx context.Context, userID, productID uint) (*Item, error) {
	var it Item
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, product_id, quantity, price, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID).Scan(
		&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.Price,
		&it.CreatedAt, &it.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// CreateItem upserts on (user_id, product_id): adding an already-carted
// product accumulates its quantity.
func (r *repository) CreateItem(ctx context.Context, params AddParams, price float64) (*Item, error) {
	var it Item
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
		              updated_at = NOW()
		RETURNING id, user_id, product_id, quantity, price, created_at, updated_at
	`, params.UserID, params.ProductID, params.Quantity, price).Scan(
		&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.Price,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repository) UpdateItem(ctx context.Context, params UpdateParams, price float64) (*Item, error) {
	var it Item
	err := r.db.QueryRowContext(ctx, `
		UPDATE cart_items
		SET quantity = $3, price = $4, updated_at = NOW()
		WHERE user_id = $1 AND product_id = $2
		RETURNING id, user_id, product_id, quantity, price, created_at, updated_at
	`, params.UserID, params.ProductID, params.Quantity, price).Scan(
		&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.Price,
		&it.CreatedAt, &it.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repository) RemoveItem(ctx context.Context, userID, productID uint) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, userID uint) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

func (r *repository) CountItems(ctx context.Context, userID uint) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE user_id = $1`,
		userID).Scan(&count)
	return count, err
}
