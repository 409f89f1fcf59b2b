package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

func (s OrderStatus) Valid() bool {
	for _, known := range orderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseOrderStatus accepts any letter case and returns false for unknown values.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

type Order struct {
	ID              int64
	CustomerID      int64
	OrderDate       time.Time
	Status          OrderStatus
	TotalAmount     decimal.Decimal
	ShippingAddress *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ApplyDefaults fills the fields an order gets when the caller leaves them unset.
func (o *Order) ApplyDefaults(now time.Time) {
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
}

type Product struct {
	ID            int64
	Name          string
	Description   *string
	Price         decimal.Decimal
	StockQuantity int
	Category      *string
	Brand         *string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

func (p *Product) Available() bool {
	return p.IsActive && p.InStock()
}

// ReduceStock leaves the quantity untouched when it cannot cover the request.
func (p *Product) ReduceStock(quantity int) error {
	if quantity > p.StockQuantity {
		return ErrInsufficientStock
	}
	p.StockQuantity -= quantity
	return nil
}

func (p *Product) IncreaseStock(quantity int) {
	p.StockQuantity += quantity
}

// CustomerStat is one row of the top-customer reports. Only one of
// OrderCount and TotalSpent is filled, depending on the report.
type CustomerStat struct {
	CustomerID int64
	OrderCount int64
	TotalSpent decimal.Decimal
}

type MonthlySales struct {
	Year  int
	Month int
	Total decimal.Decimal
	Count int64
}
