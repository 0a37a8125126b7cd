package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/auth"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/middleware"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/response"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/service"
)

// CustomerHandler handles the customer book routes.
type CustomerHandler struct {
	customers *service.CustomerService
	authz     *middleware.AuthMiddleware
}

// NewCustomerHandler creates the customer handler.
func NewCustomerHandler(customers *service.CustomerService, authz *middleware.AuthMiddleware) *CustomerHandler {
	return &CustomerHandler{customers: customers, authz: authz}
}

// RegisterRoutes registers customer routes.
func (h *CustomerHandler) RegisterRoutes(r *gin.Engine) {
	customers := r.Group("/api/customers")
	customers.Use(h.authz.RequireAuth())
	{
		customers.POST("", h.authz.Authorize(auth.PermCreateCustomer), h.Create)
		customers.GET("", h.authz.Authorize(auth.PermReadCustomer), h.List)
		customers.GET("/:id", h.authz.Authorize(auth.PermReadCustomer), h.Get)
		customers.PUT("/:id", h.authz.Authorize(auth.PermUpdateCustomer), h.Update)
		customers.DELETE("/:id", h.authz.Authorize(auth.PermDeleteCustomer), h.Delete)
		customers.POST("/:id/assign", h.authz.Authorize(auth.PermAssignCustomer), h.Assign)
		customers.GET("/:id/activities", h.authz.Authorize(auth.PermReadCustomer), h.Activities)
	}
}

// Create inserts a new customer.
func (h *CustomerHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var customer domain.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if customer.Name == "" {
		response.BadRequest(c, "name is required")
		return
	}

	if err := h.customers.Create(ctx, &customer, c.GetString(middleware.UserIDKey)); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("create customer failed")
		response.InternalError(c, "failed to create customer")
		return
	}

	response.Created(c, customer)
}

// List returns a filtered, paginated customer page.
func (h *CustomerHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := domain.CustomerFilter{
		Search:     c.Query("search"),
		Industry:   c.Query("industry"),
		Location:   c.Query("location"),
		Status:     c.Query("status"),
		AssignedTo: c.Query("assigned_to"),
		Page:       intQuery(c, "page", 1),
		PageSize:   intQuery(c, "page_size", 20),
	}

	// Agents only see their own book.
	if c.GetString(middleware.RoleKey) == auth.RoleAgent {
		filter.AssignedTo = c.GetString(middleware.UserIDKey)
	}

	page, err := h.customers.List(ctx, filter)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list customers failed")
		response.InternalError(c, "failed to list customers")
		return
	}

	response.Success(c, page)
}

// Get returns one customer.
func (h *CustomerHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	customer, err := h.customers.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			response.NotFound(c, "customer not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("get customer failed")
		response.InternalError(c, "failed to load customer")
		return
	}

	response.Success(c, customer)
}

// Update replaces a customer's fields.
func (h *CustomerHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var customer domain.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	customer.ID = c.Param("id")

	if err := h.customers.Update(ctx, &customer, c.GetString(middleware.UserIDKey)); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			response.NotFound(c, "customer not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("update customer failed")
		response.InternalError(c, "failed to update customer")
		return
	}

	response.Success(c, customer)
}

// Delete removes a customer.
func (h *CustomerHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.customers.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			response.NotFound(c, "customer not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("delete customer failed")
		response.InternalError(c, "failed to delete customer")
		return
	}

	response.NoContent(c)
}

// Assign hands a customer to an agent.
func (h *CustomerHandler) Assign(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		AgentID string `json:"agentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	customer, err := h.customers.Assign(ctx, c.Param("id"), req.AgentID, c.GetString(middleware.UserIDKey))
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			response.NotFound(c, "customer not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("assign customer failed")
		response.InternalError(c, "failed to assign customer")
		return
	}

	response.Success(c, customer)
}

// Activities returns a customer's activity trail.
func (h *CustomerHandler) Activities(c *gin.Context) {
	ctx := c.Request.Context()

	activities, err := h.customers.Activities(ctx, c.Param("id"), c.Query("type"))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list customer activities failed")
		response.InternalError(c, "failed to list activities")
		return
	}

	response.Success(c, activities)
}

// intQuery parses a positive integer query parameter with a fallback.
func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
