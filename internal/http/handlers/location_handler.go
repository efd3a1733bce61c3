// README: Location handler records a user's last known position.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wastagram/internal/modules/location"
	"wastagram/internal/types"
)

type LocationHandler struct {
	location *location.Service
}

func NewLocationHandler(svc *location.Service) *LocationHandler {
	return &LocationHandler{location: svc}
}

type locationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (h *LocationHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid id")
		return
	}
	var body locationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	fix, err := h.location.Update(c.Request.Context(), types.ID(id), types.Point{Lat: *body.Lat, Lng: *body.Lng})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, fix)
}
