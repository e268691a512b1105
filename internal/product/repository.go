package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	FindByID(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]Product, int64, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, params CreateParams) (*Product, error)
	Update(ctx context.Context, params UpdateParams) (*Product, error)
	Deactivate(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, title, description, price, sku, category, image_url,
	inventory, in_stock, is_active, created_at, updated_at`

func scanProduct(scanner interface {
	Scan(dest ...interface{}) error
}) (*Product, error) {
	var p Product
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.SKU, &p.Category,
		&p.ImageURL, &p.Inventory, &p.InStock, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]Product, int64, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if !opts.IncludeInactive {
		where = append(where, "is_active = TRUE")
	}
	if opts.Category != "" {
		args = append(args, opts.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if opts.MinPrice != nil {
		args = append(args, *opts.MinPrice)
		where = append(where, fmt.Sprintf("price >= $%d", len(args)))
	}
	if opts.MaxPrice != nil {
		args = append(args, *opts.MaxPrice)
		where = append(where, fmt.Sprintf("price <= $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE "+whereClause, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 12
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(
		"SELECT "+productColumns+" FROM products WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		whereClause, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}

	return products, total, rows.Err()
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM products WHERE is_active = TRUE ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repository) Create(ctx context.Context, params CreateParams) (*Product, error) {
	log := logger.FromCtx(ctx)

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (title, description, price, sku, category, image_url, inventory)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		params.Title, params.Description, params.Price, params.SKU,
		params.Category, params.ImageURL, params.Inventory,
	)

	p, err := scanProduct(row)
	if err != nil {
		log.Error("db: failed to insert product",
			zap.String("title", params.Title),
			zap.Error(err),
		)
	}
	return p, err
}

func (r *repository) Update(ctx context.Context, params UpdateParams) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE products SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			price       = COALESCE($4, price),
			category    = COALESCE($5, category),
			image_url   = COALESCE($6, image_url),
			inventory   = COALESCE($7, inventory),
			in_stock    = COALESCE($8, in_stock),
			is_active   = COALESCE($9, is_active),
			updated_at  = NOW()
		WHERE id = $1
		RETURNING `+productColumns,
		params.ID, params.Title, params.Description, params.Price,
		params.Category, params.ImageURL, params.Inventory,
		params.InStock, params.IsActive,
	)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// Deactivate soft-deletes a product. The row stays so historical order
// lines keep resolving.
func (r *repository) Deactivate(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
