package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reparto/backend/internal/domain/shared"
	"github.com/reparto/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader is the header clients send to dedup retried mutations
const IdempotencyKeyHeader = "Idempotency-Key"

// Idempotency rejects a mutation whose Idempotency-Key was already
// accepted. Two people pressing "advance" on the same order card, or a
// client retrying a timed-out POST, resolve to a single applied change.
// Requests without the header pass through untouched.
func Idempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || !isMutation(c.Request.Method) {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		isNew, err := store.MarkProcessed(c.Request.Context(), key, cfg.TTL)
		if err != nil {
			// A broken store must not block writes
			c.Next()
			return
		}
		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				dto.ErrCodeDuplicateRequest,
				"This request was already processed",
			))
			return
		}

		c.Next()
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
