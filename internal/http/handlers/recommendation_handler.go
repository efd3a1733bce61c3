// README: Recommendation handler ranks waste banks for a coordinate, address or user.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wastagram/internal/modules/location"
	"wastagram/internal/modules/recommendation"
	"wastagram/internal/types"
)

type RecommendationHandler struct {
	recommendation *recommendation.Service
}

func NewRecommendationHandler(svc *recommendation.Service) *RecommendationHandler {
	return &RecommendationHandler{recommendation: svc}
}

type recommendRequest struct {
	Location      *types.Point `json:"location"`
	Address       string       `json:"address"`
	UserID        string       `json:"user_id"`
	WasteCategory string       `json:"waste_category" binding:"required"`
	WeightKg      float64      `json:"weight_kg"`
}

// Recommend never returns an error for a missing location: the service falls
// back to the configured default coordinate.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	var body recommendRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.UserID != "" && !isValidID(body.UserID) {
		writeError(c, http.StatusBadRequest, "invalid user id")
		return
	}

	res, err := h.recommendation.Recommend(c.Request.Context(), recommendation.Query{
		Location: location.Query{
			Point:   body.Location,
			Address: body.Address,
			UserID:  types.ID(body.UserID),
		},
		Category: types.WasteCategory(body.WasteCategory),
		WeightKg: body.WeightKg,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
