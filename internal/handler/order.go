package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/flicky/custorder-api/internal/dto"
	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder takes customerId, shippingAddress and totalAmount from the query string.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	customerID, ok := queryInt64(c, "customerId")
	if !ok {
		return
	}
	total, ok := optionalDecimal(c, "totalAmount")
	if !ok {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), customerID, optionalString(c, "shippingAddress"), total)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOrderResponse(order))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	respond(c, func() (any, error) {
		orders, err := h.orderService.GetAll(c.Request.Context())
		return dto.NewOrderList(orders), err
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	if order == nil {
		notFound(c, "Order", id)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

func (h *OrderHandler) ListByCustomer(c *gin.Context) {
	customerID, ok := pathID(c, "customerId")
	if !ok {
		return
	}
	respond(c, func() (any, error) {
		orders, err := h.orderService.GetByCustomer(c.Request.Context(), customerID)
		return dto.NewOrderList(orders), err
	})
}

func (h *OrderHandler) ListByCustomerAndStatus(c *gin.Context) {
	customerID, ok := pathID(c, "customerId")
	if !ok {
		return
	}
	status, ok := pathStatus(c)
	if !ok {
		return
	}
	respond(c, func() (any, error) {
		orders, err := h.orderService.GetByCustomerAndStatus(c.Request.Context(), customerID, status)
		return dto.NewOrderList(orders), err
	})
}

func (h *OrderHandler) ListByStatus(c *gin.Context) {
	status, ok := pathStatus(c)
	if !ok {
		return
	}
	respond(c, func() (any, error) {
		orders, err := h.orderService.GetByStatus(c.Request.Context(), status)
		return dto.NewOrderList(orders), err
	})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raw, ok := requiredQuery(c, "status")
	if !ok {
		return
	}
	status, ok := parseStatus(c, raw)
	if !ok {
		return
	}
	h.mutate(c, func() (*model.Order, error) {
		return h.orderService.UpdateStatus(c.Request.Context(), id, status)
	})
}

func (h *OrderHandler) UpdateTotal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	amount, ok := queryDecimal(c, "totalAmount")
	if !ok {
		return
	}
	h.mutate(c, func() (*model.Order, error) {
		return h.orderService.UpdateTotal(c.Request.Context(), id, amount)
	})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.mutate(c, func() (*model.Order, error) {
		return h.orderService.Cancel(c.Request.Context(), id)
	})
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		WriteError(c, err)
		return
	}
	deleted(c, "Order")
}

// ListByDateRange narrows to one customer when customerId is given.
func (h *OrderHandler) ListByDateRange(c *gin.Context) {
	start, ok := queryTime(c, "startDate")
	if !ok {
		return
	}
	end, ok := queryEndTime(c, "endDate")
	if !ok {
		return
	}
	var customerID int64
	if _, present := c.GetQuery("customerId"); present {
		if customerID, ok = queryInt64(c, "customerId"); !ok {
			return
		}
	}

	ctx := c.Request.Context()
	respond(c, func() (any, error) {
		var (
			orders []model.Order
			err    error
		)
		if customerID != 0 {
			orders, err = h.orderService.GetByCustomerAndDateRange(ctx, customerID, start, end)
		} else {
			orders, err = h.orderService.GetByDateRange(ctx, start, end)
		}
		return dto.NewOrderList(orders), err
	})
}

func (h *OrderHandler) ListRecent(c *gin.Context) {
	respond(c, func() (any, error) {
		orders, err := h.orderService.GetRecent(c.Request.Context())
		return dto.NewOrderList(orders), err
	})
}

// ListByAmountRange has no upper bound when maxAmount is omitted.
func (h *OrderHandler) ListByAmountRange(c *gin.Context) {
	min, ok := queryDecimal(c, "minAmount")
	if !ok {
		return
	}
	max, ok := optionalDecimal(c, "maxAmount")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	respond(c, func() (any, error) {
		var (
			orders []model.Order
			err    error
		)
		if max != nil {
			orders, err = h.orderService.GetByAmountRange(ctx, min, *max)
		} else {
			orders, err = h.orderService.GetByAmountAtLeast(ctx, min)
		}
		return dto.NewOrderList(orders), err
	})
}

func (h *OrderHandler) SearchByShippingAddress(c *gin.Context) {
	address, ok := requiredQuery(c, "address")
	if !ok {
		return
	}
	respond(c, func() (any, error) {
		orders, err := h.orderService.SearchByShippingAddress(c.Request.Context(), address)
		return dto.NewOrderList(orders), err
	})
}

// TotalSales sums all non-cancelled orders, or only those between
// startDate and endDate when either is given.
func (h *OrderHandler) TotalSales(c *gin.Context) {
	_, hasStart := c.GetQuery("startDate")
	_, hasEnd := c.GetQuery("endDate")

	var (
		total decimal.Decimal
		err   error
	)
	if hasStart || hasEnd {
		start, ok := queryTime(c, "startDate")
		if !ok {
			return
		}
		end, ok := queryEndTime(c, "endDate")
		if !ok {
			return
		}
		total, err = h.orderService.TotalSalesBetween(c.Request.Context(), start, end)
	} else {
		total, err = h.orderService.TotalSales(c.Request.Context())
	}
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TotalSalesResponse{TotalSales: total})
}

func (h *OrderHandler) CountByStatus(c *gin.Context) {
	status, ok := pathStatus(c)
	if !ok {
		return
	}
	n, err := h.orderService.CountByStatus(c.Request.Context(), status)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Status: status, Count: n})
}

func (h *OrderHandler) TopCustomers(c *gin.Context) {
	var (
		stats []model.CustomerStat
		err   error
	)
	by := c.DefaultQuery("by", "count")
	switch by {
	case "count":
		stats, err = h.orderService.TopCustomersByOrderCount(c.Request.Context())
	case "spent":
		stats, err = h.orderService.TopCustomersByTotalSpent(c.Request.Context())
	default:
		badRequest(c, "by must be count or spent")
		return
	}
	if err != nil {
		WriteError(c, err)
		return
	}

	out := make([]dto.CustomerStatResponse, 0, len(stats))
	for _, st := range stats {
		st := st // per-iteration copy: go.mod is go 1.21, which predates per-iteration loop variables
		resp := dto.CustomerStatResponse{CustomerID: st.CustomerID}
		if by == "count" {
			resp.OrderCount = &st.OrderCount
		} else {
			resp.TotalSpent = &st.TotalSpent
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) MonthlySales(c *gin.Context) {
	sales, err := h.orderService.MonthlySales(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	out := make([]dto.MonthlySalesResponse, 0, len(sales))
	for _, m := range sales {
		out = append(out, dto.MonthlySalesResponse{Year: m.Year, Month: m.Month, TotalSales: m.Total, OrderCount: m.Count})
	}
	c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) mutate(c *gin.Context, apply func() (*model.Order, error)) {
	order, err := apply()
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}
