package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kindred/backend/internal/auth"
	"kindred/backend/internal/relationship"
)

// Handler serves the HTTP API.
type Handler struct {
	db            *gorm.DB
	relationships *relationship.Service
	jwtSecret     []byte
	logger        *zap.SugaredLogger
}

// New creates a new Handler.
func New(db *gorm.DB, relationships *relationship.Service, jwtSecret []byte, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{
		db:            db,
		relationships: relationships,
		jwtSecret:     jwtSecret,
		logger:        logger,
	}
}

// RegisterRoutes mounts the API under the given group.
func (h *Handler) RegisterRoutes(apiV1 *gin.RouterGroup) {
	// Auth routes
	authRoutes := apiV1.Group("/auth")
	{
		authRoutes.POST("/register", h.RegisterUser)
		authRoutes.POST("/login", h.LoginUser)
	}

	// User routes (protected)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(auth.AuthMiddleware(h.jwtSecret))
	{
		userRoutes.GET("/me", h.GetMe)
		userRoutes.GET("/me/couple", h.GetMyCouple)
	}

	// Relationship routes (protected)
	relRoutes := apiV1.Group("/relationships")
	relRoutes.Use(auth.AuthMiddleware(h.jwtSecret))
	{
		relRoutes.POST("", h.CreateRelationship)
		relRoutes.GET("", h.ListRelationships)
		relRoutes.POST("/join", h.JoinRelationship) // Must be before /:id
		relRoutes.GET("/:id", h.GetRelationship)
		relRoutes.POST("/:id/leave", h.LeaveRelationship)
		relRoutes.PUT("/:id/status", h.UpdateRelationshipStatus)
		relRoutes.GET("/:id/members", h.GetRelationshipMembers)
		relRoutes.GET("/:id/sessions", h.GetRelationshipSessions)
		relRoutes.GET("/:id/insights", h.GetRelationshipInsights)
		relRoutes.GET("/:id/health", h.GetRelationshipHealth)
		relRoutes.GET("/:id/events", h.GetRelationshipEvents)
		relRoutes.GET("/:id/overview", h.GetRelationshipOverview)
	}
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// respondError translates domain errors into status codes. Anything else is
// logged and reported as a 500 without details.
func (h *Handler) respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, relationship.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, relationship.ErrInvalidState):
		status = http.StatusBadRequest
	case errors.Is(err, relationship.ErrConflict):
		status = http.StatusConflict
	default:
		_ = c.Error(err)
		h.logger.Errorw("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
