package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/flicky/custorder-api/internal/middleware"
	"github.com/flicky/custorder-api/internal/ratelimit"
	"github.com/flicky/custorder-api/internal/service"
)

type Services struct {
	Customers *service.CustomerService
	Orders    *service.OrderService
	Products  *service.ProductService
}

// NewRouter wires every /api route plus the health probes. A nil limiter
// disables rate limiting.
func NewRouter(svc Services, health *HealthHandler, limiter ratelimit.Limiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	router.GET("/healthz", health.Healthz)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api")
	if limiter != nil {
		api.Use(middleware.RateLimit(limiter))
	}

	customerH := NewCustomerHandler(svc.Customers)
	customers := api.Group("/customers")
	{
		customers.POST("", customerH.Create)
		customers.GET("", customerH.List)
		customers.GET("/search", customerH.SearchByName)
		customers.GET("/search/firstname", customerH.SearchByFirstName)
		customers.GET("/search/lastname", customerH.SearchByLastName)
		customers.GET("/search/address", customerH.SearchByAddress)
		customers.GET("/with-orders", customerH.WithOrders)
		customers.GET("/without-orders", customerH.WithoutOrders)
		customers.GET("/exists/email/:email", customerH.ExistsByEmail)
		customers.GET("/email/:email", customerH.GetByEmail)
		customers.GET("/phone/:phone", customerH.GetByPhone)
		customers.GET("/:id", customerH.GetByID)
		customers.PUT("/:id", customerH.Update)
		customers.DELETE("/:id", customerH.Delete)
	}

	orderH := NewOrderHandler(svc.Orders)
	orders := api.Group("/orders")
	{
		orders.POST("", orderH.CreateOrder)
		orders.GET("", orderH.ListOrders)
		orders.GET("/customer/:customerId", orderH.ListByCustomer)
		orders.GET("/customer/:customerId/status/:status", orderH.ListByCustomerAndStatus)
		orders.GET("/status/:status", orderH.ListByStatus)
		orders.GET("/date-range", orderH.ListByDateRange)
		orders.GET("/recent", orderH.ListRecent)
		orders.GET("/amount-range", orderH.ListByAmountRange)
		orders.GET("/search/address", orderH.SearchByShippingAddress)
		orders.GET("/total-sales", orderH.TotalSales)
		orders.GET("/count/status/:status", orderH.CountByStatus)
		orders.GET("/reports/top-customers", orderH.TopCustomers)
		orders.GET("/reports/monthly", orderH.MonthlySales)
		orders.GET("/:id", orderH.GetOrder)
		orders.PUT("/:id/status", orderH.UpdateStatus)
		orders.PUT("/:id/total", orderH.UpdateTotal)
		orders.PUT("/:id/cancel", orderH.Cancel)
		orders.DELETE("/:id", orderH.Delete)
	}

	productH := NewProductHandler(svc.Products)
	products := api.Group("/products")
	{
		products.POST("", productH.Create)
		products.GET("", productH.List)
		products.GET("/search", productH.Search)
		products.GET("/search/name", productH.SearchByName)
		products.GET("/category/:category", productH.ListByCategory)
		products.GET("/brand/:brand", productH.ListByBrand)
		products.GET("/active", productH.ListActive)
		products.GET("/inactive", productH.ListInactive)
		products.GET("/in-stock", productH.ListInStock)
		products.GET("/out-of-stock", productH.ListOutOfStock)
		products.GET("/price-range", productH.ListByPriceRange)
		products.GET("/categories", productH.Categories)
		products.GET("/brands", productH.Brands)
		products.GET("/:id", productH.GetByID)
		products.PUT("/:id", productH.Update)
		products.DELETE("/:id", productH.Delete)
		products.PUT("/:id/stock", productH.UpdateStock)
		products.PUT("/:id/stock/reduce", productH.ReduceStock)
		products.PUT("/:id/stock/increase", productH.IncreaseStock)
		products.PUT("/:id/activate", productH.Activate)
		products.PUT("/:id/deactivate", productH.Deactivate)
	}

	return router
}
