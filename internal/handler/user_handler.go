package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kindred/backend/internal/auth"
	"kindred/backend/internal/models"
	"kindred/backend/pkg/jwt"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Email       string `json:"email" binding:"required,email" example:"alex@example.com"`
	DisplayName string `json:"display_name" binding:"required,max=255" example:"Alex"`
	Password    string `json:"password" binding:"required,min=8" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" example:"alex@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID                string `json:"id" example:"6f1c2a8e-0c55-4b8e-9a55-2f1f0f7a9c10"`
	Email             string `json:"email" example:"alex@example.com"`
	DisplayName       string `json:"display_name" example:"Alex"`
	RelationshipCount int    `json:"relationship_count"`
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  TokenResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	err := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Email already registered"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.respondError(c, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		h.respondError(c, err)
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: string(hashedPassword),
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		h.respondError(c, err)
		return
	}

	token, err := jwt.GenerateToken(user.ID, h.jwtSecret)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Infow("user registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, TokenResponse{Token: token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  TokenResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var user models.User
	err := h.db.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(user.ID, h.jwtSecret)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// endregion

// region --- User Handlers ---

// GetMe godoc
// @Summary      Get current user's info
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID := auth.UserID(c)

	var user models.User
	err := h.db.WithContext(c.Request.Context()).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	rels, err := h.relationships.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PrivateUserResponse{
		ID:                user.ID,
		Email:             user.Email,
		DisplayName:       user.DisplayName,
		RelationshipCount: len(rels),
	})
}

// GetMyCouple godoc
// @Summary      Get the legacy couple view
// @Description  Returns the caller's first romantic couple as a partner1/partner2 pair, for older clients.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  relationship.Couple
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "No couple found"
// @Router       /users/me/couple [get]
func (h *Handler) GetMyCouple(c *gin.Context) {
	couple, err := h.relationships.GetCoupleForUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if couple == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No couple found"})
		return
	}
	c.JSON(http.StatusOK, couple)
}

// endregion
