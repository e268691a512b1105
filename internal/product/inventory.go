package product

import (
	"context"
	"database/sql"
)

// Execer is the statement surface shared by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ReserveInventory takes qty units off a product as a single conditional
// UPDATE, never read-modify-write across round trips. It reports false when
// the product is missing or has fewer than qty units left, so a caller inside
// a transaction can abort without the reservation ever being observable.
func ReserveInventory(ctx context.Context, ex Execer, id uint, qty int) (bool, error) {
	res, err := ex.ExecContext(ctx, `
		UPDATE products
		SET inventory = inventory - $1, in_stock = (inventory - $1) > 0, updated_at = NOW()
		WHERE id = $2 AND inventory >= $1`,
		qty, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RestoreInventory returns qty units to a product after a cancellation.
func RestoreInventory(ctx context.Context, ex Execer, id uint, qty int) error {
	_, err := ex.ExecContext(ctx, `
		UPDATE products
		SET inventory = inventory + $1, in_stock = TRUE, updated_at = NOW()
		WHERE id = $2`,
		qty, id)
	return err
}
