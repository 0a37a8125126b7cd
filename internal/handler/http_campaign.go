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

// CampaignHandler handles campaign routes.
type CampaignHandler struct {
	campaigns *service.CampaignService
	authz     *middleware.AuthMiddleware
}

// NewCampaignHandler creates the campaign handler.
func NewCampaignHandler(campaigns *service.CampaignService, authz *middleware.AuthMiddleware) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, authz: authz}
}

// RegisterRoutes registers campaign routes.
func (h *CampaignHandler) RegisterRoutes(r *gin.Engine) {
	campaigns := r.Group("/api/campaigns")
	campaigns.Use(h.authz.RequireAuth())
	{
		campaigns.POST("", h.authz.Authorize(auth.PermCreateCampaign), h.Create)
		campaigns.GET("", h.authz.Authorize(auth.PermReadCampaign), h.List)
		campaigns.GET("/:id", h.authz.Authorize(auth.PermReadCampaign), h.Detail)
		campaigns.PUT("/:id", h.authz.Authorize(auth.PermUpdateCampaign), h.Update)
		campaigns.DELETE("/:id", h.authz.Authorize(auth.PermDeleteCampaign), h.Delete)
		campaigns.POST("/:id/target", h.authz.Authorize(auth.PermUpdateCampaign), h.Target)
		campaigns.POST("/:id/recipients/:customerId/track", h.authz.Authorize(auth.PermUpdateCampaign), h.Track)
	}
}

// createCampaignRequest carries the campaign body plus audience filters.
type createCampaignRequest struct {
	domain.Campaign
	TargetFilters domain.TargetFilters `json:"targetFilters"`
}

// Create inserts a campaign and targets its audience.
func (h *CampaignHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Name == "" {
		response.BadRequest(c, "name is required")
		return
	}

	if err := h.campaigns.Create(ctx, &req.Campaign, req.TargetFilters, c.GetString(middleware.UserIDKey)); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("create campaign failed")
		response.InternalError(c, "failed to create campaign")
		return
	}

	response.Created(c, req.Campaign)
}

// List returns all campaigns.
func (h *CampaignHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	campaigns, err := h.campaigns.List(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list campaigns failed")
		response.InternalError(c, "failed to list campaigns")
		return
	}

	response.Success(c, campaigns)
}

// Detail returns one campaign with recipient statistics.
func (h *CampaignHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()

	detail, err := h.campaigns.Detail(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			response.NotFound(c, "campaign not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("campaign detail failed")
		response.InternalError(c, "failed to load campaign")
		return
	}

	response.Success(c, detail)
}

// Update replaces a campaign's fields.
func (h *CampaignHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var campaign domain.Campaign
	if err := c.ShouldBindJSON(&campaign); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	campaign.ID = c.Param("id")

	if err := h.campaigns.Update(ctx, &campaign); err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			response.NotFound(c, "campaign not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("update campaign failed")
		response.InternalError(c, "failed to update campaign")
		return
	}

	response.Success(c, campaign)
}

// Delete removes a campaign.
func (h *CampaignHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.campaigns.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			response.NotFound(c, "campaign not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("delete campaign failed")
		response.InternalError(c, "failed to delete campaign")
		return
	}

	response.NoContent(c)
}

// Target re-runs audience targeting with new filters.
func (h *CampaignHandler) Target(c *gin.Context) {
	ctx := c.Request.Context()

	var filters domain.TargetFilters
	if err := c.ShouldBindJSON(&filters); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	count, err := h.campaigns.Target(ctx, c.Param("id"), filters)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("campaign targeting failed")
		response.InternalError(c, "failed to target campaign")
		return
	}

	response.Success(c, gin.H{"matched": count})
}

// Track records a delivery transition for one recipient.
func (h *CampaignHandler) Track(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	switch req.Status {
	case domain.RecipientStatusSent, domain.RecipientStatusOpened, domain.RecipientStatusClicked:
	default:
		response.BadRequest(c, "invalid recipient status")
		return
	}

	if err := h.campaigns.TrackRecipient(ctx, c.Param("id"), c.Param("customerId"), req.Status); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("recipient tracking failed")
		response.InternalError(c, "failed to track recipient")
		return
	}

	response.NoContent(c)
}
