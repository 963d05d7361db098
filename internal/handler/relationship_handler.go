package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"kindred/backend/internal/auth"
	"kindred/backend/internal/models"
	"kindred/backend/internal/relationship"
)

// region --- DTOs ---

type CreateRelationshipInput struct {
	Type models.RelationshipType `json:"type" binding:"required,oneof=ROMANTIC_COUPLE ROMANTIC_POLYAMOROUS FRIENDSHIP_PAIR FRIENDSHIP_GROUP FAMILY_PARENT_CHILD FAMILY_SIBLINGS FAMILY_EXTENDED BUSINESS_PARTNERSHIP PROFESSIONAL_MENTORSHIP PROFESSIONAL_TEAM COMMUNITY_GROUP" example:"ROMANTIC_COUPLE"`
	Name string                  `json:"name" binding:"max=255" example:"Alex & Sam"`
}

type JoinRelationshipInput struct {
	InviteCode string `json:"invite_code" binding:"required" example:"K7Q2M9XA4B"`
	Role       string `json:"role" binding:"max=100" example:"partner"`
}

type LeaveRelationshipInput struct {
	Reason string `json:"reason"`
}

type UpdateStatusInput struct {
	Status models.RelationshipStatus `json:"status" binding:"required,oneof=ACTIVE PAUSED ENDED_MUTUAL ENDED_UNILATERAL ARCHIVED" example:"PAUSED"`
	Reason string                    `json:"reason"`
}

// OverviewResponse merges the reads a dashboard needs in one round trip.
type OverviewResponse struct {
	Relationship   *relationship.View        `json:"relationship"`
	Members        []relationship.MemberView `json:"members"`
	RecentSessions *relationship.SessionList `json:"recent_sessions"`
	Health         *relationship.Health      `json:"health"`
}

const overviewSessionCount = 5

// endregion

// CreateRelationship godoc
// @Summary      Create a new relationship
// @Description  Creates a relationship with a fresh invite code, making the creator its first member.
// @Tags         relationships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateRelationshipInput true "Relationship Info"
// @Success      201  {object}  relationship.View
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /relationships [post]
func (h *Handler) CreateRelationship(c *gin.Context) {
	var input CreateRelationshipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	view, err := h.relationships.Create(c.Request.Context(), auth.UserID(c), relationship.CreateInput{
		Type: input.Type,
		Name: input.Name,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// ListRelationships godoc
// @Summary      List my relationships
// @Description  Lists every relationship the caller is an active member of, oldest first.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   relationship.View
// @Failure      401  {object}  ErrorResponse
// @Router       /relationships [get]
func (h *Handler) ListRelationships(c *gin.Context) {
	views, err := h.relationships.ListForUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// JoinRelationship godoc
// @Summary      Join a relationship
// @Description  Joins the active relationship behind an invite code.
// @Tags         relationships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body JoinRelationshipInput true "Invite"
// @Success      200  {object}  relationship.View
// @Failure      400  {object}  ErrorResponse "Relationship is not active"
// @Failure      404  {object}  ErrorResponse "Invalid invite code"
// @Failure      409  {object}  ErrorResponse "Already a member"
// @Router       /relationships/join [post]
func (h *Handler) JoinRelationship(c *gin.Context) {
	var input JoinRelationshipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	view, err := h.relationships.Join(c.Request.Context(), auth.UserID(c), relationship.JoinInput{
		InviteCode: input.InviteCode,
		Role:       input.Role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetRelationship godoc
// @Summary      Get a relationship by ID
// @Description  Gets a relationship with its active members, emotional bank and counts. Non-members get 404.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Relationship ID"
// @Success      200 {object} relationship.View
// @Failure      404 {object} ErrorResponse "Relationship not found"
// @Router       /relationships/{id} [get]
func (h *Handler) GetRelationship(c *gin.Context) {
	view, err := h.relationships.GetByID(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// LeaveRelationship godoc
// @Summary      Leave a relationship
// @Description  Ends the caller's membership. The relationship itself is unchanged.
// @Tags         relationships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path string                 true  "Relationship ID"
// @Param        input body LeaveRelationshipInput false "Reason"
// @Success      200 {object} relationship.LeaveResult
// @Failure      404 {object} ErrorResponse "Relationship or membership not found"
// @Router       /relationships/{id}/leave [post]
func (h *Handler) LeaveRelationship(c *gin.Context) {
	var input LeaveRelationshipInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.relationships.Leave(c.Request.Context(), c.Param("id"), auth.UserID(c), relationship.LeaveInput{
		Reason: input.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateRelationshipStatus godoc
// @Summary      Change relationship status
// @Description  Moves the relationship along ACTIVE/PAUSED/ENDED_*/ARCHIVED. Ending closes every membership.
// @Tags         relationships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path string            true "Relationship ID"
// @Param        input body UpdateStatusInput true "Target status"
// @Success      200 {object} relationship.View
// @Failure      400 {object} ErrorResponse "Transition not allowed"
// @Failure      404 {object} ErrorResponse "Relationship not found"
// @Router       /relationships/{id}/status [put]
func (h *Handler) UpdateRelationshipStatus(c *gin.Context) {
	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	view, err := h.relationships.UpdateStatus(c.Request.Context(), c.Param("id"), auth.UserID(c), relationship.UpdateStatusInput{
		Status: input.Status,
		Reason: input.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetRelationshipMembers godoc
// @Summary      List members
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Relationship ID"
// @Success      200 {array}  relationship.MemberView
// @Failure      404 {object} ErrorResponse
// @Router       /relationships/{id}/members [get]
func (h *Handler) GetRelationshipMembers(c *gin.Context) {
	members, err := h.relationships.GetMembers(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// GetRelationshipSessions godoc
// @Summary      List sessions
// @Description  Gets a paginated list of sessions, newest first, with analysis summaries.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "Relationship ID"
// @Param        page  query int    false "Page number" default(1)
// @Param        limit query int    false "Items per page" default(20)
// @Success      200 {object} PaginatedResponse[relationship.SessionView]
// @Failure      404 {object} ErrorResponse
// @Router       /relationships/{id}/sessions [get]
func (h *Handler) GetRelationshipSessions(c *gin.Context) {
	page, limit := pageParams(c)

	list, err := h.relationships.GetSessions(c.Request.Context(), c.Param("id"), auth.UserID(c), relationship.PageRequest{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(list.Sessions, list.Total, page, limit))
}

// GetRelationshipInsights godoc
// @Summary      Get insights
// @Description  Returns the precomputed pattern metrics, or available=false when there is not enough data.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Relationship ID"
// @Success      200 {object} relationship.Insights
// @Failure      404 {object} ErrorResponse
// @Router       /relationships/{id}/insights [get]
func (h *Handler) GetRelationshipInsights(c *gin.Context) {
	insights, err := h.relationships.GetInsights(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

// GetRelationshipHealth godoc
// @Summary      Get health
// @Description  30-day health score, trend, emotional bank balance and green card ratio.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Relationship ID"
// @Success      200 {object} relationship.Health
// @Failure      404 {object} ErrorResponse
// @Router       /relationships/{id}/health [get]
func (h *Handler) GetRelationshipHealth(c *gin.Context) {
	health, err := h.relationships.GetHealth(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, health)
}

// GetRelationshipEvents godoc
// @Summary      Get lifecycle history
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Relationship ID"
// @Success      200 {array}  relationship.EventView
// @Failure      404 {object} ErrorResponse
// @Router       /relationships/{id}/events [get]
func (h *Handler) GetRelationshipEvents(c *gin.Context) {
	events, err := h.relationships.GetEvents(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetRelationshipOverview godoc
// @Summary      Get dashboard overview
// @Description  Fetches the relationship, members, latest sessions and health concurrently.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Relationship ID"
// @Success      200 {object} OverviewResponse
// @Failure      404 {object} ErrorResponse
// @Router       /relationships/{id}/overview [get]
func (h *Handler) GetRelationshipOverview(c *gin.Context) {
	relID, userID := c.Param("id"), auth.UserID(c)
	var resp OverviewResponse

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		view, err := h.relationships.GetByID(ctx, relID, userID)
		resp.Relationship = view
		return err
	})
	g.Go(func() error {
		members, err := h.relationships.GetMembers(ctx, relID, userID)
		resp.Members = members
		return err
	})
	g.Go(func() error {
		sessions, err := h.relationships.GetSessions(ctx, relID, userID, relationship.PageRequest{Page: 1, Limit: overviewSessionCount})
		resp.RecentSessions = sessions
		return err
	})
	g.Go(func() error {
		health, err := h.relationships.GetHealth(ctx, relID, userID)
		resp.Health = health
		return err
	})
	if err := g.Wait(); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
