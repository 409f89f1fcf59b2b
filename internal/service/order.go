package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flicky/custorder-api/internal/events"
	"github.com/flicky/custorder-api/internal/logger"
	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/repository"
)

const recentOrdersWindow = 30 * 24 * time.Hour

type OrderService struct {
	orderRepo   repository.OrderRepository
	customerSvc *CustomerService
	publisher   events.Publisher
	now         func() time.Time
}

type OrderOption func(*OrderService)

// WithOrderClock replaces the time source behind order dates, event
// timestamps and the recent-orders window.
func WithOrderClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(orderRepo repository.OrderRepository, customerSvc *CustomerService, publisher events.Publisher, opts ...OrderOption) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	s := &OrderService{orderRepo: orderRepo, customerSvc: customerSvc, publisher: publisher, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create places a PENDING order for an existing customer. A nil total is
// stored as zero.
func (s *OrderService) Create(ctx context.Context, customerID int64, shippingAddress *string, totalAmount *decimal.Decimal) (*model.Order, error) {
	customer, err := s.customerSvc.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, notFound("Customer", customerID)
	}

	total := decimal.Zero
	if totalAmount != nil {
		total = *totalAmount
	}
	if total.IsNegative() {
		return nil, validationf("total amount must not be negative")
	}

	order := &model.Order{
		CustomerID:      customer.ID,
		OrderDate:       s.now(),
		Status:          model.OrderStatusPending,
		TotalAmount:     total,
		ShippingAddress: shippingAddress,
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, notFound("Customer", customerID)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.publish(ctx, events.OrderCreated, order)
	return order, nil
}

// UpdateStatus overwrites the status without checking the transition.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	order, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Status = status
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderStatusChanged, order)
	return order, nil
}

func (s *OrderService) UpdateTotal(ctx context.Context, id int64, amount decimal.Decimal) (*model.Order, error) {
	order, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, validationf("total amount must not be negative")
	}
	order.TotalAmount = amount
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel moves any order except a delivered one to CANCELLED.
func (s *OrderService) Cancel(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: cannot cancel delivered order %d", ErrInvalidTransition, id)
	}
	order.Status = model.OrderStatusCancelled
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderCancelled, order)
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, id int64) error {
	if _, err := s.mustGet(ctx, id); err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return notFound("Order", id)
		}
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (s *OrderService) GetAll(ctx context.Context) ([]model.Order, error) {
	return s.orderRepo.FindAll(ctx)
}

// GetByID returns nil, nil when no order has the id.
func (s *OrderService) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

func (s *OrderService) GetByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	return s.orderRepo.FindByCustomerID(ctx, customerID)
}

func (s *OrderService) GetByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	return s.orderRepo.FindByStatus(ctx, status)
}

func (s *OrderService) GetByCustomerAndStatus(ctx context.Context, customerID int64, status model.OrderStatus) ([]model.Order, error) {
	return s.orderRepo.FindByCustomerAndStatus(ctx, customerID, status)
}

func (s *OrderService) GetByDateRange(ctx context.Context, start, end time.Time) ([]model.Order, error) {
	if start.After(end) {
		return nil, validationf("start date must not be after end date")
	}
	return s.orderRepo.FindByDateRange(ctx, start, end)
}

func (s *OrderService) GetByCustomerAndDateRange(ctx context.Context, customerID int64, start, end time.Time) ([]model.Order, error) {
	if start.After(end) {
		return nil, validationf("start date must not be after end date")
	}
	return s.orderRepo.FindByCustomerAndDateRange(ctx, customerID, start, end)
}

// GetRecent lists orders placed in the last 30 days.
func (s *OrderService) GetRecent(ctx context.Context) ([]model.Order, error) {
	return s.orderRepo.FindRecent(ctx, s.now().Add(-recentOrdersWindow))
}

func (s *OrderService) GetByAmountRange(ctx context.Context, min, max decimal.Decimal) ([]model.Order, error) {
	if min.GreaterThan(max) {
		return nil, validationf("minimum amount must not exceed maximum amount")
	}
	return s.orderRepo.FindByTotalAmountRange(ctx, min, max)
}

func (s *OrderService) GetByAmountAtLeast(ctx context.Context, min decimal.Decimal) ([]model.Order, error) {
	return s.orderRepo.FindByTotalAmountAtLeast(ctx, min)
}

func (s *OrderService) SearchByShippingAddress(ctx context.Context, address string) ([]model.Order, error) {
	return s.orderRepo.FindByShippingAddress(ctx, address)
}

// TotalSales sums every order that is not cancelled.
func (s *OrderService) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	return s.orderRepo.TotalSales(ctx)
}

func (s *OrderService) TotalSalesBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	if start.After(end) {
		return decimal.Zero, validationf("start date must not be after end date")
	}
	return s.orderRepo.TotalSalesBetween(ctx, start, end)
}

func (s *OrderService) CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	return s.orderRepo.CountByStatus(ctx, status)
}

func (s *OrderService) TopCustomersByOrderCount(ctx context.Context) ([]model.CustomerStat, error) {
	return s.orderRepo.TopCustomersByOrderCount(ctx)
}

func (s *OrderService) TopCustomersByTotalSpent(ctx context.Context) ([]model.CustomerStat, error) {
	return s.orderRepo.TopCustomersByTotalSpent(ctx)
}

func (s *OrderService) MonthlySales(ctx context.Context) ([]model.MonthlySales, error) {
	return s.orderRepo.MonthlySales(ctx)
}

func (s *OrderService) mustGet(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, notFound("Order", id)
	}
	return order, nil
}

func (s *OrderService) save(ctx context.Context, order *model.Order) error {
	if err := s.orderRepo.Save(ctx, order); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return notFound("Order", order.ID)
		}
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

// publish logs publisher failures and never returns them.
func (s *OrderService) publish(ctx context.Context, t events.EventType, order *model.Order) {
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(t, order, s.now())); err != nil {
		logger.FromCtx(ctx).Warn("publish order event",
			zap.String("event", string(t)),
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
	}
}
