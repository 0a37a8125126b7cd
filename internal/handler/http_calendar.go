package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/auth"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/middleware"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/response"
)

// CalendarHandler handles calendar event routes. Thin: no service layer,
// the repository is the whole story.
type CalendarHandler struct {
	events repository.CalendarRepository
	authz  *middleware.AuthMiddleware
}

// NewCalendarHandler creates the calendar handler.
func NewCalendarHandler(events repository.CalendarRepository, authz *middleware.AuthMiddleware) *CalendarHandler {
	return &CalendarHandler{events: events, authz: authz}
}

// RegisterRoutes registers calendar routes.
func (h *CalendarHandler) RegisterRoutes(r *gin.Engine) {
	events := r.Group("/api/events")
	events.Use(h.authz.RequireAuth())
	{
		events.POST("", h.Create)
		events.GET("", h.List)
		events.PUT("/:id", h.Update)
		events.DELETE("/:id", h.Delete)
	}
}

// Create inserts a calendar event owned by the caller.
func (h *CalendarHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var event domain.CalendarEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if event.Title == "" || event.StartDate.IsZero() {
		response.BadRequest(c, "title and start_date are required")
		return
	}

	event.CreatedBy = c.GetString(middleware.UserIDKey)
	if event.AssignedTo == "" {
		event.AssignedTo = event.CreatedBy
	}

	if err := h.events.Create(ctx, &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("create event failed")
		response.InternalError(c, "failed to create event")
		return
	}

	response.Created(c, event)
}

// List returns events in a date window. Agents only see their own.
func (h *CalendarHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := domain.EventFilter{
		AssignedTo: c.Query("assigned_to"),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.StartDate = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.EndDate = &to
	}
	if c.GetString(middleware.RoleKey) == auth.RoleAgent {
		filter.AssignedTo = c.GetString(middleware.UserIDKey)
	}

	events, err := h.events.List(ctx, filter)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list events failed")
		response.InternalError(c, "failed to list events")
		return
	}

	response.Success(c, events)
}

// Update replaces an event's fields.
func (h *CalendarHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var event domain.CalendarEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	event.ID = c.Param("id")

	if err := h.events.Update(ctx, &event); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("update event failed")
		response.InternalError(c, "failed to update event")
		return
	}

	response.Success(c, event)
}

// Delete removes an event.
func (h *CalendarHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.events.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("delete event failed")
		response.InternalError(c, "failed to delete event")
		return
	}

	response.NoContent(c)
}
