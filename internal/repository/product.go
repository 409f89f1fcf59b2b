package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/flicky/custorder-api/internal/model"
)

type ProductRepository interface {
	Save(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	FindAll(ctx context.Context) ([]model.Product, error)
	Delete(ctx context.Context, id int64) error

	SearchByName(ctx context.Context, name string) ([]model.Product, error)
	FindByCategory(ctx context.Context, category string, activeOnly bool) ([]model.Product, error)
	FindByBrand(ctx context.Context, brand string, activeOnly bool) ([]model.Product, error)
	FindByActive(ctx context.Context, active bool) ([]model.Product, error)
	FindInStock(ctx context.Context) ([]model.Product, error)
	FindOutOfStock(ctx context.Context) ([]model.Product, error)
	FindByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]model.Product, error)
	FindByPriceAtMost(ctx context.Context, max decimal.Decimal) ([]model.Product, error)
	FindByPriceAtLeast(ctx context.Context, min decimal.Decimal) ([]model.Product, error)
	Search(ctx context.Context, keyword string) ([]model.Product, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	DistinctBrands(ctx context.Context) ([]string, error)
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `id, name, description, price, stock_quantity, category, brand, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity,
		&p.Category, &p.Brand, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *pgProductRepo) Save(ctx context.Context, p *model.Product) error {
	if p.ID == 0 {
		query := `INSERT INTO products (name, description, price, stock_quantity, category, brand, is_active, created_at, updated_at)
				  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING id, created_at, updated_at`
		err := r.pool.QueryRow(ctx, query,
			p.Name, p.Description, p.Price, p.StockQuantity, p.Category, p.Brand, p.IsActive,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return wrapWriteErr("create product", err)
		}
		return nil
	}

	query := `UPDATE products SET name=$2, description=$3, price=$4, stock_quantity=$5, category=$6, brand=$7,
			  is_active=$8, updated_at=NOW() WHERE id=$1 RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.Category, p.Brand, p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoRows
		}
		return wrapWriteErr("update product", err)
	}
	return nil
}

func (r *pgProductRepo) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *pgProductRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	return r.query(ctx, "list products", `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (r *pgProductRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *pgProductRepo) SearchByName(ctx context.Context, name string) ([]model.Product, error) {
	return r.query(ctx, "search products by name",
		`SELECT `+productColumns+` FROM products WHERE name ILIKE $1 ESCAPE '\' ORDER BY id`, containsPattern(name))
}

func (r *pgProductRepo) FindByCategory(ctx context.Context, category string, activeOnly bool) ([]model.Product, error) {
	return r.query(ctx, "list products by category",
		`SELECT `+productColumns+` FROM products
		 WHERE LOWER(category) = LOWER($1) AND (NOT $2 OR is_active) ORDER BY id`, category, activeOnly)
}

func (r *pgProductRepo) FindByBrand(ctx context.Context, brand string, activeOnly bool) ([]model.Product, error) {
	return r.query(ctx, "list products by brand",
		`SELECT `+productColumns+` FROM products
		 WHERE LOWER(brand) = LOWER($1) AND (NOT $2 OR is_active) ORDER BY id`, brand, activeOnly)
}

func (r *pgProductRepo) FindByActive(ctx context.Context, active bool) ([]model.Product, error) {
	return r.query(ctx, "list products by active flag",
		`SELECT `+productColumns+` FROM products WHERE is_active = $1 ORDER BY id`, active)
}

func (r *pgProductRepo) FindInStock(ctx context.Context) ([]model.Product, error) {
	return r.query(ctx, "list products in stock",
		`SELECT `+productColumns+` FROM products WHERE stock_quantity > 0 ORDER BY id`)
}

func (r *pgProductRepo) FindOutOfStock(ctx context.Context) ([]model.Product, error) {
	return r.query(ctx, "list products out of stock",
		`SELECT `+productColumns+` FROM products WHERE stock_quantity = 0 ORDER BY id`)
}

func (r *pgProductRepo) FindByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]model.Product, error) {
	return r.query(ctx, "list products by price range",
		`SELECT `+productColumns+` FROM products WHERE price BETWEEN $1 AND $2 ORDER BY price, id`, min, max)
}

func (r *pgProductRepo) FindByPriceAtMost(ctx context.Context, max decimal.Decimal) ([]model.Product, error) {
	return r.query(ctx, "list products by maximum price",
		`SELECT `+productColumns+` FROM products WHERE price <= $1 ORDER BY price, id`, max)
}

func (r *pgProductRepo) FindByPriceAtLeast(ctx context.Context, min decimal.Decimal) ([]model.Product, error) {
	return r.query(ctx, "list products by minimum price",
		`SELECT `+productColumns+` FROM products WHERE price >= $1 ORDER BY price, id`, min)
}

func (r *pgProductRepo) Search(ctx context.Context, keyword string) ([]model.Product, error) {
	return r.query(ctx, "search products",
		`SELECT `+productColumns+` FROM products
		 WHERE name ILIKE $1 ESCAPE '\'
		    OR description ILIKE $1 ESCAPE '\'
		    OR category ILIKE $1 ESCAPE '\'
		    OR brand ILIKE $1 ESCAPE '\'
		 ORDER BY id`, containsPattern(keyword))
}

func (r *pgProductRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "list categories",
		`SELECT DISTINCT category FROM products WHERE category IS NOT NULL ORDER BY category`)
}

func (r *pgProductRepo) DistinctBrands(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "list brands",
		`SELECT DISTINCT brand FROM products WHERE brand IS NOT NULL ORDER BY brand`)
}

func (r *pgProductRepo) distinct(ctx context.Context, op, query string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return values, nil
}

func (r *pgProductRepo) query(ctx context.Context, op, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return products, nil
}
