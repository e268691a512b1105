package user

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, params RegisterParams, hashedPassword string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uint) (User, error)
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, name, email, password_hash, role, phone,
	COALESCE(street, ''), COALESCE(city, ''), COALESCE(state, ''),
	COALESCE(zip_code, ''), COALESCE(country, ''), is_active, created_at, updated_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.Phone,
		&u.Address.Street, &u.Address.City, &u.Address.State,
		&u.Address.ZipCode, &u.Address.Country,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (r *repository) Create(ctx context.Context, params RegisterParams, hashedPassword string) (User, error) {
	log := logger.FromCtx(ctx)

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, role, phone)
		VALUES ($1, $2, $3, 'user', $4)
		RETURNING `+userColumns,
		params.Name, params.Email, hashedPassword, params.Phone,
	)

	u, err := scanUser(row)
	if err != nil {
		log.Error("db: failed to insert user",
			zap.String("email", params.Email),
			zap.Error(err),
		)
	}
	return u, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (r *repository) UpdateProfile(ctx context.Context, params UpdateProfileParams) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE users SET
			name     = COALESCE($2, name),
			phone    = COALESCE($3, phone),
			street   = COALESCE($4, street),
			city     = COALESCE($5, city),
			state    = COALESCE($6, state),
			zip_code = COALESCE($7, zip_code),
			country  = COALESCE($8, country),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		params.UserID, params.Name, params.Phone,
		addrField(params.Address, func(a *Address) string { return a.Street }),
		addrField(params.Address, func(a *Address) string { return a.City }),
		addrField(params.Address, func(a *Address) string { return a.State }),
		addrField(params.Address, func(a *Address) string { return a.ZipCode }),
		addrField(params.Address, func(a *Address) string { return a.Country }),
	)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func addrField(a *Address, get func(*Address) string) *string {
	if a == nil {
		return nil
	}
	v := get(a)
	return &v
}
