package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-gateway/internal/domain"
)

// VendorRepository defines persistence access for vendors.
type VendorRepository interface {
	Create(ctx context.Context, vendor *domain.Vendor) error
	GetByID(ctx context.Context, id string) (*domain.Vendor, error)
	GetByEmail(ctx context.Context, email string) (*domain.Vendor, error)
	List(ctx context.Context, limit, offset int) ([]domain.Vendor, error)
}

type vendorRepository struct {
	pool *pgxpool.Pool
}

// NewVendorRepository returns a Postgres-backed implementation.
func NewVendorRepository(pool *pgxpool.Pool) VendorRepository {
	return &vendorRepository{pool: pool}
}

const vendorColumns = `id, business_name, email, password_hash, role, created_at, updated_at`

func (r *vendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	const query = `
        INSERT INTO vendors (business_name, email, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	if vendor.Role == "" {
		vendor.Role = domain.VendorRoleVendor
	}
	err := r.pool.QueryRow(ctx, query,
		vendor.BusinessName,
		normalizeEmail(vendor.Email),
		vendor.PasswordHash,
		vendor.Role,
	).Scan(&vendor.ID, &vendor.CreatedAt, &vendor.UpdatedAt)
	return mapPgError(err)
}

func (r *vendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id=$1`
	return scanVendor(r.pool.QueryRow(ctx, query, id))
}

func (r *vendorRepository) GetByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE email=$1`
	return scanVendor(r.pool.QueryRow(ctx, query, normalizeEmail(email)))
}

func (r *vendorRepository) List(ctx context.Context, limit, offset int) ([]domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, *vendor)
	}
	return vendors, rows.Err()
}

func scanVendor(row pgx.Row) (*domain.Vendor, error) {
	var vendor domain.Vendor
	if err := row.Scan(
		&vendor.ID,
		&vendor.BusinessName,
		&vendor.Email,
		&vendor.PasswordHash,
		&vendor.Role,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &vendor, nil
}
