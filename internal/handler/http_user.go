package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/auth"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/importer"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/middleware"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/response"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/service"
)

// maxImportSize bounds a bulk import upload.
const maxImportSize = 8 << 20

// UserHandler handles auth, profile and account administration routes.
type UserHandler struct {
	users *service.UserService
	authz *middleware.AuthMiddleware
}

// NewUserHandler creates the user handler.
func NewUserHandler(users *service.UserService, authz *middleware.AuthMiddleware) *UserHandler {
	return &UserHandler{users: users, authz: authz}
}

// RegisterRoutes registers auth and user routes.
func (h *UserHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/logout", h.authz.RequireAuth(), h.Logout)
		}

		profile := api.Group("/profile")
		profile.Use(h.authz.RequireAuth())
		{
			profile.GET("", h.GetProfile)
			profile.PUT("", h.UpdateProfile)
		}

		users := api.Group("/users")
		users.Use(h.authz.RequireAuth())
		{
			users.GET("", h.authz.Authorize(auth.PermReadUser), h.List)
			users.POST("/import", h.authz.Authorize(auth.PermCreateUser), h.Import)
		}

		api.GET("/activities", h.authz.RequireAuth(), h.Activities)
		api.GET("/sessions", h.authz.RequireAuth(), h.authz.Authorize(auth.PermReadUser), h.Sessions)
	}
}

// Register creates an account and returns a token for it.
func (h *UserHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid register request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.users.Register(ctx, req)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			response.Conflict(c, "email already exists")
			return
		}
		if errors.Is(err, service.ErrInvalidRole) {
			response.BadRequest(c, "invalid role")
			return
		}
		l.Error().Err(err).Msg("register failed")
		response.InternalError(c, "failed to register user")
		return
	}

	response.Created(c, result)
}

// Login verifies credentials and returns a token.
func (h *UserHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid login request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.users.Login(ctx, req, c.ClientIP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		l.Error().Err(err).Msg("login failed")
		response.InternalError(c, "failed to login")
		return
	}

	response.Success(c, result)
}

// Logout records the session end for the caller. The token itself stays
// valid until it expires.
func (h *UserHandler) Logout(c *gin.Context) {
	h.users.Logout(c.Request.Context(), c.GetString(middleware.UserIDKey), c.ClientIP())
	response.Success(c, gin.H{"message": "logged out"})
}

// GetProfile returns the caller's account.
func (h *UserHandler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(middleware.UserIDKey)

	user, err := h.users.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("get profile failed")
		response.InternalError(c, "failed to load profile")
		return
	}

	response.Success(c, user)
}

// UpdateProfile applies partial profile changes to the caller's account.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(middleware.UserIDKey)

	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.UpdateProfile(ctx, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			response.Unauthorized(c, "current password is incorrect")
		case errors.Is(err, repository.ErrEmailExists):
			response.Conflict(c, "email already exists")
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			log.Ctx(ctx).Error().Err(err).Msg("update profile failed")
			response.InternalError(c, "failed to update profile")
		}
		return
	}

	response.Success(c, user)
}

// List returns all user accounts.
func (h *UserHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.users.List(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list users failed")
		response.InternalError(c, "failed to list users")
		return
	}

	response.Success(c, users)
}

// Import creates accounts in bulk from an uploaded CSV or JSON file.
func (h *UserHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImportSize {
		response.BadRequest(c, "import file too large")
		return
	}

	records, err := importer.ParseFilename(file, header.Filename)
	if err != nil {
		l.Warn().Err(err).Msg("import parse failed")
		response.BadRequest(c, err.Error())
		return
	}

	result := h.users.Import(ctx, records, c.GetString(middleware.UserIDKey))
	response.Success(c, result)
}

// Activities returns the caller's activity trail. Admins see every
// user's trail, or one user via the user_id query parameter.
func (h *UserHandler) Activities(c *gin.Context) {
	ctx := c.Request.Context()

	userID := c.GetString(middleware.UserIDKey)
	if c.GetString(middleware.RoleKey) == auth.RoleAdmin {
		userID = c.Query("user_id")
	}

	var types []string
	if t := c.Query("type"); t != "" {
		types = []string{t}
	}

	activities, err := h.users.Activities(ctx, userID, types)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list activities failed")
		response.InternalError(c, "failed to list activities")
		return
	}

	response.Success(c, activities)
}

// Sessions returns login and logout activity, newest first, hydrated
// with the acting user. Admins see every user's sessions; everyone else
// sees their own.
func (h *UserHandler) Sessions(c *gin.Context) {
	ctx := c.Request.Context()

	userID := c.GetString(middleware.UserIDKey)
	if c.GetString(middleware.RoleKey) == auth.RoleAdmin {
		userID = ""
	}

	sessions, err := h.users.Sessions(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list sessions failed")
		response.InternalError(c, "failed to list sessions")
		return
	}

	response.Success(c, sessions)
}
