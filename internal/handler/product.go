package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flicky/custorder-api/internal/dto"
	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) Create(c *gin.Context) {
	in, ok := bindProduct(c)
	if !ok {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), in)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewProductResponse(product))
}

func (h *ProductHandler) List(c *gin.Context) {
	h.list(c, h.productService.GetAll)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	if product == nil {
		notFound(c, "Product", id)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(product))
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := bindProduct(c)
	if !ok {
		return
	}
	h.mutate(c, func() (*model.Product, error) {
		return h.productService.Update(c.Request.Context(), id, in)
	})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		WriteError(c, err)
		return
	}
	deleted(c, "Product")
}

func (h *ProductHandler) Search(c *gin.Context) {
	keyword, ok := requiredQuery(c, "keyword")
	if !ok {
		return
	}
	respond(c, func() (any, error) {
		products, err := h.productService.Search(c.Request.Context(), keyword)
		return dto.NewProductList(products), err
	})
}

func (h *ProductHandler) SearchByName(c *gin.Context) {
	name, ok := requiredQuery(c, "name")
	if !ok {
		return
	}
	respond(c, func() (any, error) {
		products, err := h.productService.SearchByName(c.Request.Context(), name)
		return dto.NewProductList(products), err
	})
}

func (h *ProductHandler) ListByCategory(c *gin.Context) {
	activeOnly, ok := activeOnlyQuery(c)
	if !ok {
		return
	}
	respond(c, func() (any, error) {
		products, err := h.productService.GetByCategory(c.Request.Context(), c.Param("category"), activeOnly)
		return dto.NewProductList(products), err
	})
}

func (h *ProductHandler) ListByBrand(c *gin.Context) {
	activeOnly, ok := activeOnlyQuery(c)
	if !ok {
		return
	}
	respond(c, func() (any, error) {
		products, err := h.productService.GetByBrand(c.Request.Context(), c.Param("brand"), activeOnly)
		return dto.NewProductList(products), err
	})
}

func (h *ProductHandler) ListActive(c *gin.Context) { h.list(c, h.productService.GetActive) }
func (h *ProductHandler) ListInactive(c *gin.Context) { h.list(c, h.productService.GetInactive) }
func (h *ProductHandler) ListInStock(c *gin.Context) { h.list(c, h.productService.GetInStock) }
func (h *ProductHandler) ListOutOfStock(c *gin.Context) { h.list(c, h.productService.GetOutOfStock) }

// ListByPriceRange accepts minPrice, maxPrice or both.
func (h *ProductHandler) ListByPriceRange(c *gin.Context) {
	min, ok := optionalDecimal(c, "minPrice")
	if !ok {
		return
	}
	max, ok := optionalDecimal(c, "maxPrice")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	respond(c, func() (any, error) {
		var (
			products []model.Product
			err      error
		)
		switch {
		case min != nil && max != nil:
			products, err = h.productService.GetByPriceRange(ctx, *min, *max)
		case max != nil:
			products, err = h.productService.GetByPriceAtMost(ctx, *max)
		case min != nil:
			products, err = h.productService.GetByPriceAtLeast(ctx, *min)
		default:
			products, err = h.productService.GetAll(ctx)
		}
		return dto.NewProductList(products), err
	})
}

func (h *ProductHandler) Categories(c *gin.Context) {
	respond(c, func() (any, error) { return h.productService.DistinctCategories(c.Request.Context()) })
}

func (h *ProductHandler) Brands(c *gin.Context) {
	respond(c, func() (any, error) { return h.productService.DistinctBrands(c.Request.Context()) })
}

func (h *ProductHandler) UpdateStock(c *gin.Context) {
	h.stockChange(c, "stockQuantity", h.productService.UpdateStock)
}

func (h *ProductHandler) ReduceStock(c *gin.Context) {
	h.stockChange(c, "quantity", h.productService.ReduceStock)
}

func (h *ProductHandler) IncreaseStock(c *gin.Context) {
	h.stockChange(c, "quantity", h.productService.IncreaseStock)
}

func (h *ProductHandler) Activate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.mutate(c, func() (*model.Product, error) { return h.productService.Activate(c.Request.Context(), id) })
}

func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.mutate(c, func() (*model.Product, error) { return h.productService.Deactivate(c.Request.Context(), id) })
}

type stockFunc func(ctx context.Context, id int64, quantity int) (*model.Product, error)

func (h *ProductHandler) stockChange(c *gin.Context, param string, change stockFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	qty, ok := queryInt(c, param)
	if !ok {
		return
	}
	h.mutate(c, func() (*model.Product, error) { return change(c.Request.Context(), id, qty) })
}

func (h *ProductHandler) list(c *gin.Context, fetch func(context.Context) ([]model.Product, error)) {
	respond(c, func() (any, error) {
		products, err := fetch(c.Request.Context())
		return dto.NewProductList(products), err
	})
}

func (h *ProductHandler) mutate(c *gin.Context, apply func() (*model.Product, error)) {
	product, err := apply()
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(product))
}

func activeOnlyQuery(c *gin.Context) (bool, bool) {
	raw := c.DefaultQuery("activeOnly", "false")
	v, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, "invalid activeOnly: "+raw)
		return false, false
	}
	return v, true
}

// bindProduct binds the request body and enforces price > 0, which the
// binding tags cannot express for decimals.
func bindProduct(c *gin.Context) (service.ProductInput, bool) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return service.ProductInput{}, false
	}
	if !req.Price.IsPositive() {
		badRequest(c, "price must be greater than 0")
		return service.ProductInput{}, false
	}
	return service.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         *req.Price,
		StockQuantity: *req.StockQuantity,
		Category:      req.Category,
		Brand:         req.Brand,
		IsActive:      req.IsActive,
	}, true
}
