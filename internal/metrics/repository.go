package metrics

import (
	"context"
	"database/sql"
)

// Stats is the admin dashboard snapshot. Revenue counts only orders whose
// payment completed; pending and cancelled orders contribute nothing.
type Stats struct {
	TotalOrders    int64            `json:"totalOrders"`
	TotalRevenue   float64          `json:"totalRevenue"`
	TotalUsers     int64            `json:"totalUsers"`
	TotalProducts  int64            `json:"totalProducts"`
	OrdersByStatus map[string]int64 `json:"ordersByStatus"`
	LowStock       []LowStockItem   `json:"lowStockProducts"`
}

type LowStockItem struct {
	ProductID uint   `json:"productId"`
	Title     string `json:"title"`
	Inventory int    `json:"inventory"`
}

// lowStockThreshold flags products close to selling out.
const lowStockThreshold = 5

type Repository interface {
	DashboardStats(ctx context.Context) (*Stats, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) DashboardStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{OrdersByStatus: map[string]int64{}}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM orders),
			(SELECT COALESCE(SUM(total), 0) FROM orders WHERE payment_status = 'completed'),
			(SELECT COUNT(*) FROM users WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM products WHERE is_active = TRUE)`,
	).Scan(&stats.TotalOrders, &stats.TotalRevenue, &stats.TotalUsers, &stats.TotalProducts)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.OrdersByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	low, err := r.db.QueryContext(ctx, `
		SELECT id, title, inventory FROM products
		WHERE is_active = TRUE AND inventory <= $1
		ORDER BY inventory ASC, id
		LIMIT 20`, lowStockThreshold)
	if err != nil {
		return nil, err
	}
	defer low.Close()

	for low.Next() {
		var item LowStockItem
		if err := low.Scan(&item.ProductID, &item.Title, &item.Inventory); err != nil {
			return nil, err
		}
		stats.LowStock = append(stats.LowStock, item)
	}
	return stats, low.Err()
}
