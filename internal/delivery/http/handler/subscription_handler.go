package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/geomatch-backend/internal/usecase/subscription"
)

type SubscriptionHandler struct {
	subscriptionUseCase *subscription.SubscriptionUseCase
}

func NewSubscriptionHandler(subscriptionUseCase *subscription.SubscriptionUseCase) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionUseCase: subscriptionUseCase,
	}
}

// Activate handles POST /subscription
// @Summary Buy or extend a subscription
// @Tags subscription
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body subscription.ActivateRequest true "Months to add"
// @Success 200 {object} subscription.StatusResponse
// @Router /subscription [post]
func (h *SubscriptionHandler) Activate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req subscription.ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.subscriptionUseCase.Activate(c.Request.Context(), userID, req.Months)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Status handles GET /subscription
// @Summary Current subscription state
// @Tags subscription
// @Security BearerAuth
// @Produce json
// @Success 200 {object} subscription.StatusResponse
// @Router /subscription [get]
func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.subscriptionUseCase.Status(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
