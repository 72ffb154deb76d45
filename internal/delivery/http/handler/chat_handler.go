package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/chat"
)

type ChatHandler struct {
	chatUseCase *chat.ChatUseCase
}

func NewChatHandler(chatUseCase *chat.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

// SendMessage handles POST /chat/:user_id/messages
// @Summary Send a message to a friend
// @Tags chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param user_id path int true "Receiver ID"
// @Param request body chat.SendMessageRequest true "Message"
// @Success 201 {object} domain.Message
// @Failure 403 {object} ErrorResponse
// @Router /chat/{user_id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	receiverID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req chat.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := h.chatUseCase.Send(c.Request.Context(), userID, receiverID, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// History handles GET /chat/:user_id/messages
// @Summary Conversation history, newest first
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Param user_id path int true "Other user ID"
// @Param limit query int false "Page size"
// @Param before query string false "RFC3339 cursor"
// @Success 200 {array} domain.Message
// @Router /chat/{user_id}/messages [get]
func (h *ChatHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, ok := userIDParam(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, domain.NewValidationError("limit", raw, "must be an integer"))
			return
		}
		limit = n
	}

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			respondError(c, domain.NewValidationError("before", raw, "must be an RFC3339 timestamp"))
			return
		}
		before = &t
	}

	messages, err := h.chatUseCase.History(c.Request.Context(), userID, otherID, limit, before)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}

// Online handles GET /chat/online
// @Summary Friends with an open chat socket
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /chat/online [get]
func (h *ChatHandler) Online(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ids, err := h.chatUseCase.OnlineFriends(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_ids": ids})
}
