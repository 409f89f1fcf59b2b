package custorder

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/flicky/custorder-api/internal/dto"
	"github.com/flicky/custorder-api/internal/handler"
	"github.com/flicky/custorder-api/internal/middleware"
	"github.com/flicky/custorder-api/internal/model"
)

// CustomerRequest carries an optional id: a known id updates that row.
type CustomerRequest struct {
	ID int64 `json:"id"`
	dto.CustomerRequest
}

type OrderRequest struct {
	ID              int64            `json:"id"`
	CustomerID      int64            `json:"customerId" binding:"required,gt=0"`
	OrderDate       *time.Time       `json:"orderDate"`
	Status          *string          `json:"status"`
	TotalAmount     *decimal.Decimal `json:"totalAmount"`
	ShippingAddress *string          `json:"shippingAddress"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// NewRouter serves the customer and order routes under /api plus the
// health probes.
func NewRouter(svc *Service, health *handler.HealthHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	router.GET("/healthz", health.Healthz)
	router.GET("/readyz", health.Readyz)

	NewHandler(svc).Register(router.Group("/api"))
	return router
}

func (h *Handler) Register(api *gin.RouterGroup) {
	api.POST("/customers/add", h.SaveCustomer)
	api.GET("/customers", h.ListCustomers)
	api.GET("/customers/:id", h.GetCustomer)
	api.DELETE("/customers/:id", h.DeleteCustomer)

	api.POST("/orders/add", h.SaveOrder)
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/:id", h.GetOrder)
	api.DELETE("/orders/:id", h.DeleteOrder)
}

func (h *Handler) SaveCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.svc.SaveCustomer(c.Request.Context(), &model.Customer{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCustomerResponse(customer))
}

func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.svc.ListCustomers(c.Request.Context())
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerList(customers))
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	customer, err := h.svc.GetCustomer(c.Request.Context(), id)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(customer))
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	msg, err := h.svc.DeleteCustomer(c.Request.Context(), id)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}

func (h *Handler) SaveOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := &model.Order{
		ID:              req.ID,
		CustomerID:      req.CustomerID,
		ShippingAddress: req.ShippingAddress,
	}
	if req.OrderDate != nil {
		order.OrderDate = *req.OrderDate
	}
	if req.TotalAmount != nil {
		order.TotalAmount = *req.TotalAmount
	}
	if req.Status != nil {
		status, ok := model.ParseOrderStatus(*req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order status: " + *req.Status})
			return
		}
		order.Status = status
	}

	saved, err := h.svc.SaveOrder(c.Request.Context(), order)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOrderResponse(saved))
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.svc.ListOrders(c.Request.Context())
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderList(orders))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	msg, err := h.svc.DeleteOrder(c.Request.Context(), id)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
