package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/custorder-api/internal/dto"
	"github.com/flicky/custorder-api/internal/service"
)

type CustomerHandler struct {
	customerService *service.CustomerService
}

func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req dto.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), customerInput(req))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCustomerResponse(customer))
}

func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.customerService.GetAll(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerList(customers))
}

func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	if customer == nil {
		notFound(c, "Customer", id)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(customer))
}

func (h *CustomerHandler) GetByEmail(c *gin.Context) {
	email := c.Param("email")
	customer, err := h.customerService.GetByEmail(c.Request.Context(), email)
	if err != nil {
		WriteError(c, err)
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found with email: " + email})
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(customer))
}

func (h *CustomerHandler) GetByPhone(c *gin.Context) {
	phone := c.Param("phone")
	customer, err := h.customerService.GetByPhone(c.Request.Context(), phone)
	if err != nil {
		WriteError(c, err)
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found with phone: " + phone})
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(customer))
}

func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), id, customerInput(req))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(customer))
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		WriteError(c, err)
		return
	}
	deleted(c, "Customer")
}

func (h *CustomerHandler) SearchByName(c *gin.Context) {
	name, ok := requiredQuery(c, "name")
	if !ok {
		return
	}
	respond(c, func() (any, error) {
		customers, err := h.customerService.SearchByName(c.Request.Context(), name)
		return dto.NewCustomerList(customers), err
	})
}

func (h *CustomerHandler) SearchByFirstName(c *gin.Context) {
	firstName, ok := requiredQuery(c, "firstName")
	if !ok {
		return
	}
	respond(c, func() (any, error) {
		customers, err := h.customerService.SearchByFirstName(c.Request.Context(), firstName)
		return dto.NewCustomerList(customers), err
	})
}

func (h *CustomerHandler) SearchByLastName(c *gin.Context) {
	lastName, ok := requiredQuery(c, "lastName")
	if !ok {
		return
	}
	respond(c, func() (any, error) {
		customers, err := h.customerService.SearchByLastName(c.Request.Context(), lastName)
		return dto.NewCustomerList(customers), err
	})
}

func (h *CustomerHandler) SearchByAddress(c *gin.Context) {
	address, ok := requiredQuery(c, "address")
	if !ok {
		return
	}
	respond(c, func() (any, error) {
		customers, err := h.customerService.SearchByAddress(c.Request.Context(), address)
		return dto.NewCustomerList(customers), err
	})
}

func (h *CustomerHandler) WithOrders(c *gin.Context) {
	respond(c, func() (any, error) {
		customers, err := h.customerService.WithOrders(c.Request.Context())
		return dto.NewCustomerList(customers), err
	})
}

func (h *CustomerHandler) WithoutOrders(c *gin.Context) {
	respond(c, func() (any, error) {
		customers, err := h.customerService.WithoutOrders(c.Request.Context())
		return dto.NewCustomerList(customers), err
	})
}

func (h *CustomerHandler) ExistsByEmail(c *gin.Context) {
	exists, err := h.customerService.ExistsByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ExistsResponse{Exists: exists})
}

func customerInput(req dto.CustomerRequest) service.CustomerInput {
	return service.CustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}
}
