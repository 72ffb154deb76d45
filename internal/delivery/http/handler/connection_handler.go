package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/geomatch-backend/internal/usecase/connection"
)

type ConnectionHandler struct {
	connectionUseCase *connection.ConnectionUseCase
}

func NewConnectionHandler(connectionUseCase *connection.ConnectionUseCase) *ConnectionHandler {
	return &ConnectionHandler{
		connectionUseCase: connectionUseCase,
	}
}

// SendRequest handles POST /connections/:user_id
// @Summary Send a connection request
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param user_id path int true "Receiver ID"
// @Success 201 {object} domain.ConnectionRequest
// @Failure 409 {object} ErrorResponse
// @Router /connections/{user_id} [post]
func (h *ConnectionHandler) SendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := userIDParam(c)
	if !ok {
		return
	}

	req, err := h.connectionUseCase.Send(c.Request.Context(), userID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, req)
}

// AcceptRequest handles POST /connections/:user_id/accept
// @Summary Accept a pending request from user_id
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param user_id path int true "Sender ID"
// @Success 200 {object} SuccessResponse
// @Router /connections/{user_id}/accept [post]
func (h *ConnectionHandler) AcceptRequest(c *gin.Context) {
	h.resolve(c, h.connectionUseCase.Accept, "request accepted")
}

// RejectRequest handles POST /connections/:user_id/reject
// @Summary Reject a pending request from user_id
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param user_id path int true "Sender ID"
// @Success 200 {object} SuccessResponse
// @Router /connections/{user_id}/reject [post]
func (h *ConnectionHandler) RejectRequest(c *gin.Context) {
	h.resolve(c, h.connectionUseCase.Reject, "request rejected")
}

// RemoveFriend handles DELETE /connections/:user_id
// @Summary Remove a friend
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param user_id path int true "Friend ID"
// @Success 200 {object} SuccessResponse
// @Router /connections/{user_id} [delete]
func (h *ConnectionHandler) RemoveFriend(c *gin.Context) {
	h.resolve(c, h.connectionUseCase.Remove, "connection removed")
}

// ListFriends handles GET /connections
// @Summary List friends
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.PublicProfile
// @Router /connections [get]
func (h *ConnectionHandler) ListFriends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	friends, err := h.connectionUseCase.ListFriends(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": friends, "count": len(friends)})
}

// ListIncoming handles GET /connections/incoming
// @Summary List pending incoming requests
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.PublicProfile
// @Router /connections/incoming [get]
func (h *ConnectionHandler) ListIncoming(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	users, err := h.connectionUseCase.ListIncoming(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// Skip handles POST /skips/:user_id
// @Summary Skip a user in discovery
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param user_id path int true "Skipped user ID"
// @Success 201 {object} domain.Skip
// @Router /skips/{user_id} [post]
func (h *ConnectionHandler) Skip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := userIDParam(c)
	if !ok {
		return
	}

	skip, err := h.connectionUseCase.Skip(c.Request.Context(), userID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, skip)
}

func (h *ConnectionHandler) resolve(c *gin.Context, action func(ctx context.Context, userID, otherID int64) error, message string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := action(c.Request.Context(), userID, otherID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}
