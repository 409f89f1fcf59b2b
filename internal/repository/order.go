package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/flicky/custorder-api/internal/model"
)

type OrderRepository interface {
	Save(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id int64) (*model.Order, error)
	FindAll(ctx context.Context) ([]model.Order, error)
	Delete(ctx context.Context, id int64) error

	FindByCustomerID(ctx context.Context, customerID int64) ([]model.Order, error)
	FindByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	FindByCustomerAndStatus(ctx context.Context, customerID int64, status model.OrderStatus) ([]model.Order, error)
	FindByDateRange(ctx context.Context, start, end time.Time) ([]model.Order, error)
	FindByCustomerAndDateRange(ctx context.Context, customerID int64, start, end time.Time) ([]model.Order, error)
	FindByTotalAmountRange(ctx context.Context, min, max decimal.Decimal) ([]model.Order, error)
	FindByTotalAmountAtLeast(ctx context.Context, min decimal.Decimal) ([]model.Order, error)
	FindByShippingAddress(ctx context.Context, address string) ([]model.Order, error)
	FindRecent(ctx context.Context, since time.Time) ([]model.Order, error)

	TotalSales(ctx context.Context) (decimal.Decimal, error)
	TotalSalesBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
	CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error)
	TopCustomersByOrderCount(ctx context.Context) ([]model.CustomerStat, error)
	TopCustomersByTotalSpent(ctx context.Context) ([]model.CustomerStat, error)
	MonthlySales(ctx context.Context) ([]model.MonthlySales, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

const orderColumns = `id, customer_id, order_date, status, total_amount, shipping_address, created_at, updated_at`

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		o      model.Order
		status string
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.OrderDate, &status, &o.TotalAmount, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	o.Status = model.OrderStatus(status)
	return o, err
}

func (r *pgOrderRepo) Save(ctx context.Context, o *model.Order) error {
	if o.ID == 0 {
		o.ApplyDefaults(time.Now())
		err := r.pool.QueryRow(ctx,
			`INSERT INTO orders (customer_id, order_date, status, total_amount, shipping_address, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id, created_at, updated_at`,
			o.CustomerID, o.OrderDate, string(o.Status), o.TotalAmount, o.ShippingAddress,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return wrapWriteErr("insert order", err)
		}
		return nil
	}

	err := r.pool.QueryRow(ctx,
		`UPDATE orders SET customer_id=$2, order_date=$3, status=$4, total_amount=$5, shipping_address=$6, updated_at=NOW()
		 WHERE id=$1 RETURNING created_at, updated_at`,
		o.ID, o.CustomerID, o.OrderDate, string(o.Status), o.TotalAmount, o.ShippingAddress,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoRows
		}
		return wrapWriteErr("update order", err)
	}
	return nil
}

func (r *pgOrderRepo) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (r *pgOrderRepo) FindAll(ctx context.Context) ([]model.Order, error) {
	return r.query(ctx, "list orders", `SELECT `+orderColumns+` FROM orders ORDER BY id`)
}

func (r *pgOrderRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *pgOrderRepo) FindByCustomerID(ctx context.Context, customerID int64) ([]model.Order, error) {
	return r.query(ctx, "list orders by customer",
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY order_date DESC`, customerID)
}

func (r *pgOrderRepo) FindByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	return r.query(ctx, "list orders by status",
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY order_date DESC`, string(status))
}

func (r *pgOrderRepo) FindByCustomerAndStatus(ctx context.Context, customerID int64, status model.OrderStatus) ([]model.Order, error) {
	return r.query(ctx, "list orders by customer and status",
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 AND status = $2 ORDER BY order_date DESC`,
		customerID, string(status))
}

func (r *pgOrderRepo) FindByDateRange(ctx context.Context, start, end time.Time) ([]model.Order, error) {
	return r.query(ctx, "list orders by date range",
		`SELECT `+orderColumns+` FROM orders WHERE order_date BETWEEN $1 AND $2 ORDER BY order_date`, start, end)
}

func (r *pgOrderRepo) FindByCustomerAndDateRange(ctx context.Context, customerID int64, start, end time.Time) ([]model.Order, error) {
	return r.query(ctx, "list orders by customer and date range",
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 AND order_date BETWEEN $2 AND $3 ORDER BY order_date`,
		customerID, start, end)
}

func (r *pgOrderRepo) FindByTotalAmountRange(ctx context.Context, min, max decimal.Decimal) ([]model.Order, error) {
	return r.query(ctx, "list orders by amount range",
		`SELECT `+orderColumns+` FROM orders WHERE total_amount BETWEEN $1 AND $2 ORDER BY total_amount`, min, max)
}

func (r *pgOrderRepo) FindByTotalAmountAtLeast(ctx context.Context, min decimal.Decimal) ([]model.Order, error) {
	return r.query(ctx, "list orders by minimum amount",
		`SELECT `+orderColumns+` FROM orders WHERE total_amount >= $1 ORDER BY total_amount`, min)
}

func (r *pgOrderRepo) FindByShippingAddress(ctx context.Context, address string) ([]model.Order, error) {
	return r.query(ctx, "search orders by shipping address",
		`SELECT `+orderColumns+` FROM orders WHERE shipping_address ILIKE $1 ESCAPE '\' ORDER BY id`, containsPattern(address))
}

func (r *pgOrderRepo) FindRecent(ctx context.Context, since time.Time) ([]model.Order, error) {
	return r.query(ctx, "list recent orders",
		`SELECT `+orderColumns+` FROM orders WHERE order_date >= $1 ORDER BY order_date DESC`, since)
}

func (r *pgOrderRepo) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> 'CANCELLED'`,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum sales: %w", err)
	}
	return total, nil
}

func (r *pgOrderRepo) TotalSalesBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders
		 WHERE order_date BETWEEN $1 AND $2 AND status <> 'CANCELLED'`, start, end,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum sales by date range: %w", err)
	}
	return total, nil
}

func (r *pgOrderRepo) CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE status = $1`, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders by status: %w", err)
	}
	return n, nil
}

func (r *pgOrderRepo) TopCustomersByOrderCount(ctx context.Context) ([]model.CustomerStat, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT customer_id, COUNT(*) AS order_count FROM orders
		 GROUP BY customer_id ORDER BY order_count DESC, customer_id`)
	if err != nil {
		return nil, fmt.Errorf("top customers by count: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CustomerStat, error) {
		var s model.CustomerStat
		err := row.Scan(&s.CustomerID, &s.OrderCount)
		return s, err
	})
}

func (r *pgOrderRepo) TopCustomersByTotalSpent(ctx context.Context) ([]model.CustomerStat, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT customer_id, SUM(total_amount) AS total_spent FROM orders
		 WHERE status <> 'CANCELLED'
		 GROUP BY customer_id ORDER BY total_spent DESC, customer_id`)
	if err != nil {
		return nil, fmt.Errorf("top customers by spend: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CustomerStat, error) {
		var s model.CustomerStat
		err := row.Scan(&s.CustomerID, &s.TotalSpent)
		return s, err
	})
}

func (r *pgOrderRepo) MonthlySales(ctx context.Context) ([]model.MonthlySales, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT EXTRACT(YEAR FROM order_date)::int AS y, EXTRACT(MONTH FROM order_date)::int AS m,
		        SUM(total_amount), COUNT(*)
		 FROM orders WHERE status <> 'CANCELLED'
		 GROUP BY y, m ORDER BY y DESC, m DESC`)
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.MonthlySales, error) {
		var s model.MonthlySales
		err := row.Scan(&s.Year, &s.Month, &s.Total, &s.Count)
		return s, err
	})
}

func (r *pgOrderRepo) query(ctx context.Context, op, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Order, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return orders, nil
}
