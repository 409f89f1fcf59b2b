// Package custorder is the minimal customer/order service: save, list, get
// and delete over database/sql with the lib/pq driver.
package custorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/flicky/custorder-api/internal/model"
)

var (
	ErrDuplicate       = errors.New("duplicate key")
	ErrUnknownCustomer = errors.New("customer does not exist")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Repository interface {
	SaveCustomer(ctx context.Context, c *model.Customer) error
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	FindCustomer(ctx context.Context, id int64) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error

	SaveOrder(ctx context.Context, o *model.Order) error
	ListOrders(ctx context.Context) ([]model.Order, error)
	FindOrder(ctx context.Context, id int64) (*model.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

type sqlRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db}
}

const (
	customerColumns = `id, first_name, last_name, email, phone, address, created_at, updated_at`
	orderColumns    = `id, customer_id, order_date, status, total_amount, shipping_address, created_at, updated_at`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row scanner) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanOrder(row scanner) (model.Order, error) {
	var (
		o      model.Order
		status string
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.OrderDate, &status, &o.TotalAmount, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	o.Status = model.OrderStatus(status)
	return o, err
}

// SaveCustomer updates the row with c.ID, or inserts a new row when c.ID is
// zero or unknown.
func (r *sqlRepository) SaveCustomer(ctx context.Context, c *model.Customer) error {
	if c.ID != 0 {
		err := r.db.QueryRowContext(ctx,
			`UPDATE customers SET first_name = $2, last_name = $3, email = $4, phone = $5, address = $6, updated_at = NOW()
			 WHERE id = $1 RETURNING created_at, updated_at`,
			c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address,
		).Scan(&c.CreatedAt, &c.UpdatedAt)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return wrapWriteErr("update customer", err)
		}
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO customers (first_name, last_name, email, phone, address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Address,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return wrapWriteErr("insert customer", err)
	}
	return nil
}

func (r *sqlRepository) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *sqlRepository) FindCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

func (r *sqlRepository) DeleteCustomer(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

// SaveOrder follows SaveCustomer. The caller fills order defaults.
func (r *sqlRepository) SaveOrder(ctx context.Context, o *model.Order) error {
	if o.ID != 0 {
		err := r.db.QueryRowContext(ctx,
			`UPDATE orders SET customer_id = $2, order_date = $3, status = $4, total_amount = $5, shipping_address = $6, updated_at = NOW()
			 WHERE id = $1 RETURNING created_at, updated_at`,
			o.ID, o.CustomerID, o.OrderDate, string(o.Status), o.TotalAmount, o.ShippingAddress,
		).Scan(&o.CreatedAt, &o.UpdatedAt)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return wrapWriteErr("update order", err)
		}
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO orders (customer_id, order_date, status, total_amount, shipping_address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		o.CustomerID, o.OrderDate, string(o.Status), o.TotalAmount, o.ShippingAddress,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return wrapWriteErr("insert order", err)
	}
	return nil
}

func (r *sqlRepository) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *sqlRepository) FindOrder(ctx context.Context, id int64) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// DeleteOrder does not report whether a row was removed.
func (r *sqlRepository) DeleteOrder(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func wrapWriteErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrDuplicate, pqErr.Constraint)
		case foreignKeyViolation:
			return fmt.Errorf("%s: %w", op, ErrUnknownCustomer)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
