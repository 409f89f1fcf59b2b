package custorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/service"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) SaveCustomer(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	if err := s.repo.SaveCustomer(ctx, c); err != nil {
		return nil, storeErr("save customer", err)
	}
	return c, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	c, err := s.repo.FindCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if c == nil {
		return nil, &service.NotFoundError{Entity: "Customer", Key: "id", Value: id}
	}
	return c, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) (string, error) {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return "", err
	}
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return "", fmt.Errorf("delete customer: %w", err)
	}
	return fmt.Sprintf("Deleted Customer with ID: %d", id), nil
}

// SaveOrder fills the order date, status and total when they are unset.
func (s *Service) SaveOrder(ctx context.Context, o *model.Order) (*model.Order, error) {
	if o.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: customer id is required", service.ErrValidation)
	}
	if o.TotalAmount.IsNegative() {
		return nil, fmt.Errorf("%w: total amount must not be negative", service.ErrValidation)
	}
	if o.Status != "" && !o.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", service.ErrValidation, o.Status)
	}
	o.ApplyDefaults(s.now())

	if err := s.repo.SaveOrder(ctx, o); err != nil {
		if errors.Is(err, ErrUnknownCustomer) {
			return nil, &service.NotFoundError{Entity: "Customer", Key: "id", Value: o.CustomerID}
		}
		return nil, storeErr("save order", err)
	}
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	o, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o == nil {
		return nil, &service.NotFoundError{Entity: "Order", Key: "id", Value: id}
	}
	return o, nil
}

// DeleteOrder succeeds whether or not the order existed.
func (s *Service) DeleteOrder(ctx context.Context, id int64) (string, error) {
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return "", fmt.Errorf("delete order: %w", err)
	}
	return "Deleted", nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, ErrDuplicate) {
		return fmt.Errorf("%s: %w", op, service.ErrDuplicateKey)
	}
	return fmt.Errorf("%s: %w", op, err)
}
