// README: Batching handlers: submit, pickup, snapshot, accept and decline per courier session.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wastagram/internal/modules/batching"
	"wastagram/internal/types"
)

type BatchHandler struct {
	batching *batching.Service
}

func NewBatchHandler(svc *batching.Service) *BatchHandler {
	return &BatchHandler{batching: svc}
}

type submitRequest struct {
	ID            string       `json:"id"`
	Location      *types.Point `json:"location" binding:"required"`
	Address       string       `json:"address"`
	WeightKg      float64      `json:"weight_kg"`
	WasteCategory string       `json:"waste_category" binding:"required"`
	Requester     string       `json:"requester"`
	CreatedAt     *time.Time   `json:"created_at"`
}

type batchResponse struct {
	Request    *batching.PickupRequest   `json:"request,omitempty"`
	Suggestion *batching.BatchSuggestion `json:"suggestion"`
}

type decisionResponse struct {
	Decision   string                   `json:"decision"`
	Suggestion batching.BatchSuggestion `json:"suggestion"`
}

func (h *BatchHandler) Submit(c *gin.Context) {
	session := c.Param("session")
	if !isValidID(session) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}
	var body submitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ID == "" {
		body.ID = uuid.NewString()
	}
	if !isValidID(body.ID) {
		writeError(c, http.StatusBadRequest, "invalid request id")
		return
	}
	category, err := types.ParseWasteCategory(body.WasteCategory)
	if err != nil {
		writeInputError(c, err)
		return
	}

	req := batching.PickupRequest{
		ID:        types.ID(body.ID),
		Location:  *body.Location,
		Address:   body.Address,
		WeightKg:  body.WeightKg,
		Category:  category,
		Requester: body.Requester,
	}
	if body.CreatedAt != nil {
		req.CreatedAt = body.CreatedAt.UTC()
	} else {
		req.CreatedAt = time.Now().UTC()
	}

	sug, err := h.batching.Submit(c.Request.Context(), session, req)
	if err != nil {
		writeBatchError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, batchResponse{Request: &req, Suggestion: sug})
}

func (h *BatchHandler) Pickup(c *gin.Context) {
	session, id := c.Param("session"), c.Param("id")
	if !isValidID(session) || !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid id")
		return
	}
	req, sug, err := h.batching.Pickup(c.Request.Context(), session, types.ID(id))
	if err != nil {
		writeBatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, batchResponse{Request: &req, Suggestion: sug})
}

func (h *BatchHandler) Get(c *gin.Context) {
	session := c.Param("session")
	if !isValidID(session) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}
	snap, err := h.batching.Snapshot(session)
	if err != nil {
		writeBatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, snap)
}

func (h *BatchHandler) Accept(c *gin.Context) {
	h.decide(c, "accepted", h.batching.Accept)
}

func (h *BatchHandler) Decline(c *gin.Context) {
	h.decide(c, "declined", h.batching.Decline)
}

type decideFunc func(ctx context.Context, session, suggestionID string) (batching.BatchSuggestion, error)

func (h *BatchHandler) decide(c *gin.Context, decision string, fn decideFunc) {
	session, sid := c.Param("session"), c.Param("sid")
	if !isValidID(session) || !isValidID(sid) {
		writeError(c, http.StatusBadRequest, "invalid id")
		return
	}
	sug, err := fn(c.Request.Context(), session, sid)
	if err != nil {
		writeBatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, decisionResponse{Decision: decision, Suggestion: sug})
}
