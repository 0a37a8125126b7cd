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
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/service"
)

// PipelineHandler handles deal and pipeline analytics routes.
type PipelineHandler struct {
	pipeline *service.PipelineService
	authz    *middleware.AuthMiddleware
}

// NewPipelineHandler creates the pipeline handler.
func NewPipelineHandler(pipeline *service.PipelineService, authz *middleware.AuthMiddleware) *PipelineHandler {
	return &PipelineHandler{pipeline: pipeline, authz: authz}
}

// RegisterRoutes registers deal and analytics routes.
func (h *PipelineHandler) RegisterRoutes(r *gin.Engine) {
	deals := r.Group("/api/deals")
	deals.Use(h.authz.RequireAuth())
	{
		deals.POST("", h.Create)
		deals.GET("", h.List)
		deals.GET("/:id", h.Get)
		deals.PUT("/:id", h.Update)
		deals.PATCH("/:id/stage", h.ChangeStage)
		deals.DELETE("/:id", h.Delete)
	}

	pipeline := r.Group("/api/pipeline")
	pipeline.Use(h.authz.RequireAuth())
	{
		pipeline.GET("/statistics", h.Statistics)
		pipeline.GET("/forecast", h.Forecast)
	}
}

// Create inserts a deal.
func (h *PipelineHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var deal domain.Deal
	if err := c.ShouldBindJSON(&deal); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if deal.Title == "" || deal.CustomerID == "" {
		response.BadRequest(c, "title and customer_id are required")
		return
	}

	if err := h.pipeline.Create(ctx, &deal, c.GetString(middleware.UserIDKey)); err != nil {
		if errors.Is(err, service.ErrUnknownStage) {
			response.BadRequest(c, "unknown pipeline stage")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("create deal failed")
		response.InternalError(c, "failed to create deal")
		return
	}

	response.Created(c, deal)
}

// List returns deals. Agents only see their own book.
func (h *PipelineHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	deals, err := h.pipeline.List(ctx, h.scope(c))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list deals failed")
		response.InternalError(c, "failed to list deals")
		return
	}

	response.Success(c, deals)
}

// Get returns one deal.
func (h *PipelineHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	deal, err := h.pipeline.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrDealNotFound) {
			response.NotFound(c, "deal not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("get deal failed")
		response.InternalError(c, "failed to load deal")
		return
	}

	response.Success(c, deal)
}

// Update replaces a deal's fields.
func (h *PipelineHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var deal domain.Deal
	if err := c.ShouldBindJSON(&deal); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	deal.ID = c.Param("id")

	if err := h.pipeline.Update(ctx, &deal); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownStage):
			response.BadRequest(c, "unknown pipeline stage")
		case errors.Is(err, repository.ErrDealNotFound):
			response.NotFound(c, "deal not found")
		default:
			log.Ctx(ctx).Error().Err(err).Msg("update deal failed")
			response.InternalError(c, "failed to update deal")
		}
		return
	}

	response.Success(c, deal)
}

// ChangeStage moves a deal through the funnel.
func (h *PipelineHandler) ChangeStage(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Stage string `json:"stage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	deal, err := h.pipeline.ChangeStage(ctx, c.Param("id"), req.Stage, c.GetString(middleware.UserIDKey))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownStage):
			response.BadRequest(c, "unknown pipeline stage")
		case errors.Is(err, repository.ErrDealNotFound):
			response.NotFound(c, "deal not found")
		default:
			log.Ctx(ctx).Error().Err(err).Msg("change stage failed")
			response.InternalError(c, "failed to change stage")
		}
		return
	}

	response.Success(c, deal)
}

// Delete removes a deal.
func (h *PipelineHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.pipeline.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrDealNotFound) {
			response.NotFound(c, "deal not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("delete deal failed")
		response.InternalError(c, "failed to delete deal")
		return
	}

	response.NoContent(c)
}

// Statistics returns stage rollups and the win rate.
func (h *PipelineHandler) Statistics(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.pipeline.Statistics(ctx, h.scope(c))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("pipeline statistics failed")
		response.InternalError(c, "failed to compute statistics")
		return
	}

	response.Success(c, stats)
}

// Forecast returns the stage-probability weighted projection.
func (h *PipelineHandler) Forecast(c *gin.Context) {
	ctx := c.Request.Context()

	forecast, err := h.pipeline.Forecast(ctx, h.scope(c))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("pipeline forecast failed")
		response.InternalError(c, "failed to compute forecast")
		return
	}

	response.Success(c, forecast)
}

// scope narrows deal queries to the caller for agents.
func (h *PipelineHandler) scope(c *gin.Context) string {
	if c.GetString(middleware.RoleKey) == auth.RoleAgent {
		return c.GetString(middleware.UserIDKey)
	}
	return c.Query("assigned_to")
}
