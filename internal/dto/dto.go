package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flicky/custorder-api/internal/model"
)

// --- Customer ---

type CustomerRequest struct {
	FirstName string  `json:"firstName" binding:"required,max=50"`
	LastName  string  `json:"lastName" binding:"required,max=50"`
	Email     string  `json:"email" binding:"required,email,max=255"`
	Phone     *string `json:"phone" binding:"omitempty,max=15"`
	Address   *string `json:"address" binding:"omitempty,max=255"`
}

type CustomerResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewCustomerResponse(c *model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewCustomerList(customers []model.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, NewCustomerResponse(&customers[i]))
	}
	return out
}

// --- Order ---

type OrderResponse struct {
	ID              int64             `json:"id"`
	CustomerID      int64             `json:"customerId"`
	OrderDate       time.Time         `json:"orderDate"`
	Status          model.OrderStatus `json:"status"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
	ShippingAddress *string           `json:"shippingAddress"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func NewOrderResponse(o *model.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		OrderDate:       o.OrderDate,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func NewOrderList(orders []model.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}

type TotalSalesResponse struct {
	TotalSales decimal.Decimal `json:"totalSales"`
}

type CountResponse struct {
	Status model.OrderStatus `json:"status"`
	Count  int64             `json:"count"`
}

type CustomerStatResponse struct {
	CustomerID int64            `json:"customerId"`
	OrderCount *int64           `json:"orderCount,omitempty"`
	TotalSpent *decimal.Decimal `json:"totalSpent,omitempty"`
}

type MonthlySalesResponse struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	TotalSales decimal.Decimal `json:"totalSales"`
	OrderCount int64           `json:"orderCount"`
}

// --- Product ---

type ProductRequest struct {
	Name          string           `json:"name" binding:"required,max=100"`
	Description   *string          `json:"description" binding:"omitempty,max=500"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	StockQuantity *int             `json:"stockQuantity" binding:"required,min=0"`
	Category      *string          `json:"category" binding:"omitempty,max=50"`
	Brand         *string          `json:"brand" binding:"omitempty,max=50"`
	IsActive      *bool            `json:"isActive"`
}

type ProductResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Category      *string         `json:"category"`
	Brand         *string         `json:"brand"`
	IsActive      bool            `json:"isActive"`
	InStock       bool            `json:"inStock"`
	Available     bool            `json:"available"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func NewProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Category:      p.Category,
		Brand:         p.Brand,
		IsActive:      p.IsActive,
		InStock:       p.InStock(),
		Available:     p.Available(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func NewProductList(products []model.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}

// --- Common ---

type MessageResponse struct {
	Message string `json:"message"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}
