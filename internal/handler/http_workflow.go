package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/auth"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/middleware"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/response"
)

// WorkflowHandler handles workflow rule and task routes. Rules are
// admin/manager territory.
type WorkflowHandler struct {
	workflows repository.WorkflowRepository
	authz     *middleware.AuthMiddleware
}

// NewWorkflowHandler creates the workflow handler.
func NewWorkflowHandler(workflows repository.WorkflowRepository, authz *middleware.AuthMiddleware) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows, authz: authz}
}

// RegisterRoutes registers workflow routes.
func (h *WorkflowHandler) RegisterRoutes(r *gin.Engine) {
	workflows := r.Group("/api/workflows")
	workflows.Use(h.authz.RequireAuth(), h.authz.RequireRole(auth.RoleAdmin, auth.RoleManager))
	{
		workflows.POST("", h.CreateRule)
		workflows.GET("", h.ListRules)
		workflows.PUT("/:id", h.UpdateRule)
		workflows.DELETE("/:id", h.DeleteRule)
	}

	tasks := r.Group("/api/tasks")
	tasks.Use(h.authz.RequireAuth())
	{
		tasks.GET("", h.ListTasks)
	}
}

// CreateRule inserts a workflow rule.
func (h *WorkflowHandler) CreateRule(c *gin.Context) {
	ctx := c.Request.Context()

	var rule domain.WorkflowRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if rule.Name == "" || rule.TriggerType == "" {
		response.BadRequest(c, "name and trigger_type are required")
		return
	}

	rule.CreatedBy = c.GetString(middleware.UserIDKey)
	if err := h.workflows.CreateRule(ctx, &rule); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("create rule failed")
		response.InternalError(c, "failed to create rule")
		return
	}

	response.Created(c, rule)
}

// ListRules returns all workflow rules.
func (h *WorkflowHandler) ListRules(c *gin.Context) {
	ctx := c.Request.Context()

	rules, err := h.workflows.ListRules(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list rules failed")
		response.InternalError(c, "failed to list rules")
		return
	}

	response.Success(c, rules)
}

// UpdateRule replaces a rule's fields.
func (h *WorkflowHandler) UpdateRule(c *gin.Context) {
	ctx := c.Request.Context()

	var rule domain.WorkflowRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	rule.ID = c.Param("id")

	if err := h.workflows.UpdateRule(ctx, &rule); err != nil {
		if errors.Is(err, repository.ErrRuleNotFound) {
			response.NotFound(c, "rule not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("update rule failed")
		response.InternalError(c, "failed to update rule")
		return
	}

	response.Success(c, rule)
}

// DeleteRule removes a rule.
func (h *WorkflowHandler) DeleteRule(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.workflows.DeleteRule(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrRuleNotFound) {
			response.NotFound(c, "rule not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("delete rule failed")
		response.InternalError(c, "failed to delete rule")
		return
	}

	response.NoContent(c)
}

// ListTasks returns tasks. Agents only see tasks assigned to them.
func (h *WorkflowHandler) ListTasks(c *gin.Context) {
	ctx := c.Request.Context()

	assignedTo := c.Query("assigned_to")
	if c.GetString(middleware.RoleKey) == auth.RoleAgent {
		assignedTo = c.GetString(middleware.UserIDKey)
	}

	tasks, err := h.workflows.ListTasks(ctx, assignedTo)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list tasks failed")
		response.InternalError(c, "failed to list tasks")
		return
	}

	response.Success(c, tasks)
}
