package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rakitcita/platform-service/internal/services"
	"github.com/rakitcita/platform-service/internal/utils"
)

type RecommendationHandler struct {
	BaseHandler
	recommendationService services.RecommendationService
}

func NewRecommendationHandler(recommendationService services.RecommendationService, logger utils.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		BaseHandler:           NewBaseHandler(logger),
		recommendationService: recommendationService,
	}
}

// Recommend forwards the requester's profile text to the AI advisor and
// returns hydrated course/community suggestions.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req services.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	resp, err := h.recommendationService.Recommend(c.Request.Context(), actor.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "recommendations generated", resp)
}
