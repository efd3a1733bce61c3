// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wastagram/internal/modules/batching"
	"wastagram/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts the ids the app generates: UUIDs and short slugs.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeInputError(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, err.Error())
}

func writeBatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		writeInputError(c, err)
	case errors.Is(err, batching.ErrSessionNotFound), errors.Is(err, batching.ErrRequestNotFound), errors.Is(err, batching.ErrNoSuggestion):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, batching.ErrStaleSuggestion), errors.Is(err, batching.ErrDuplicateRequest), errors.Is(err, batching.ErrInvalidState):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// writeServiceError maps errors from services that only distinguish bad input.
func writeServiceError(c *gin.Context, err error) {
	if errors.Is(err, types.ErrInvalidInput) {
		writeInputError(c, err)
		return
	}
	writeError(c, http.StatusInternalServerError, "internal error")
}
