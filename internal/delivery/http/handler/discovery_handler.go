package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/discovery"
)

type DiscoveryHandler struct {
	discoveryUseCase *discovery.DiscoveryUseCase
}

func NewDiscoveryHandler(discoveryUseCase *discovery.DiscoveryUseCase) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryUseCase: discoveryUseCase,
	}
}

// DiscoverResponse wraps the candidate list
type DiscoverResponse struct {
	Candidates []*domain.Candidate `json:"candidates"`
	Count      int                 `json:"count"`
}

// Discover handles GET /discover
// @Summary Discover users
// @Description Filtered search with optional distance band
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Param gender query string false "Comma-separated gender tokens"
// @Param age query string false "Age range, min-max"
// @Param interests query string false "Comma-separated interest tokens"
// @Param latitude query number false "Origin latitude"
// @Param longitude query number false "Origin longitude"
// @Param radius query string false "Distance band in km, min-max"
// @Success 200 {object} DiscoverResponse
// @Failure 400 {object} ErrorResponse
// @Router /discover [get]
func (h *DiscoveryHandler) Discover(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var raw discovery.RawFilters
	if err := c.ShouldBindQuery(&raw); err != nil {
		respondBindError(c, err)
		return
	}

	candidates, err := h.discoveryUseCase.Discover(c.Request.Context(), userID, raw)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DiscoverResponse{Candidates: candidates, Count: len(candidates)})
}
