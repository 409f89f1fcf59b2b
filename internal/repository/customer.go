package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/custorder-api/internal/model"
)

type CustomerRepository interface {
	Save(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, id int64) (*model.Customer, error)
	FindAll(ctx context.Context) ([]model.Customer, error)
	Delete(ctx context.Context, id int64) error

	FindByEmail(ctx context.Context, email string) (*model.Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByPhone(ctx context.Context, phone string) (*model.Customer, error)
	SearchByFirstName(ctx context.Context, firstName string) ([]model.Customer, error)
	SearchByLastName(ctx context.Context, lastName string) ([]model.Customer, error)
	SearchByFullName(ctx context.Context, fullName string) ([]model.Customer, error)
	SearchByAddress(ctx context.Context, address string) ([]model.Customer, error)
	FindWithOrders(ctx context.Context) ([]model.Customer, error)
	FindWithoutOrders(ctx context.Context) ([]model.Customer, error)
}

type pgCustomerRepo struct{ pool *pgxpool.Pool }

func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &pgCustomerRepo{pool: pool}
}

const customerColumns = `id, first_name, last_name, email, phone, address, created_at, updated_at`

func scanCustomer(row pgx.Row) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *pgCustomerRepo) Save(ctx context.Context, c *model.Customer) error {
	if c.ID == 0 {
		err := r.pool.QueryRow(ctx,
			`INSERT INTO customers (first_name, last_name, email, phone, address, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id, created_at, updated_at`,
			c.FirstName, c.LastName, c.Email, c.Phone, c.Address,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return wrapWriteErr("insert customer", err)
		}
		return nil
	}

	err := r.pool.QueryRow(ctx,
		`UPDATE customers SET first_name=$2, last_name=$3, email=$4, phone=$5, address=$6, updated_at=NOW()
		 WHERE id=$1 RETURNING created_at, updated_at`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoRows
		}
		return wrapWriteErr("update customer", err)
	}
	return nil
}

func (r *pgCustomerRepo) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	return r.findOne(ctx, "get customer by id",
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (r *pgCustomerRepo) FindAll(ctx context.Context) ([]model.Customer, error) {
	return r.query(ctx, "list customers", `SELECT `+customerColumns+` FROM customers ORDER BY id`)
}

func (r *pgCustomerRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *pgCustomerRepo) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return r.findOne(ctx, "get customer by email",
		`SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
}

func (r *pgCustomerRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check customer email: %w", err)
	}
	return exists, nil
}

func (r *pgCustomerRepo) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	return r.findOne(ctx, "get customer by phone",
		`SELECT `+customerColumns+` FROM customers WHERE phone = $1 ORDER BY id LIMIT 1`, phone)
}

func (r *pgCustomerRepo) SearchByFirstName(ctx context.Context, firstName string) ([]model.Customer, error) {
	return r.query(ctx, "search customers by first name",
		`SELECT `+customerColumns+` FROM customers WHERE first_name ILIKE $1 ESCAPE '\' ORDER BY id`, containsPattern(firstName))
}

func (r *pgCustomerRepo) SearchByLastName(ctx context.Context, lastName string) ([]model.Customer, error) {
	return r.query(ctx, "search customers by last name",
		`SELECT `+customerColumns+` FROM customers WHERE last_name ILIKE $1 ESCAPE '\' ORDER BY id`, containsPattern(lastName))
}

func (r *pgCustomerRepo) SearchByFullName(ctx context.Context, fullName string) ([]model.Customer, error) {
	return r.query(ctx, "search customers by full name",
		`SELECT `+customerColumns+` FROM customers
		 WHERE (first_name || ' ' || last_name) ILIKE $1 ESCAPE '\' ORDER BY id`, containsPattern(fullName))
}

func (r *pgCustomerRepo) SearchByAddress(ctx context.Context, address string) ([]model.Customer, error) {
	return r.query(ctx, "search customers by address",
		`SELECT `+customerColumns+` FROM customers WHERE address ILIKE $1 ESCAPE '\' ORDER BY id`, containsPattern(address))
}

func (r *pgCustomerRepo) FindWithOrders(ctx context.Context) ([]model.Customer, error) {
	return r.query(ctx, "list customers with orders",
		`SELECT `+customerColumns+` FROM customers c
		 WHERE EXISTS (SELECT 1 FROM orders o WHERE o.customer_id = c.id) ORDER BY id`)
}

func (r *pgCustomerRepo) FindWithoutOrders(ctx context.Context) ([]model.Customer, error) {
	return r.query(ctx, "list customers without orders",
		`SELECT `+customerColumns+` FROM customers c
		 WHERE NOT EXISTS (SELECT 1 FROM orders o WHERE o.customer_id = c.id) ORDER BY id`)
}

func (r *pgCustomerRepo) findOne(ctx context.Context, op, query string, args ...any) (*model.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

func (r *pgCustomerRepo) query(ctx context.Context, op, query string, args ...any) ([]model.Customer, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	customers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Customer, error) {
		return scanCustomer(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return customers, nil
}
