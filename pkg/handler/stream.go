package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deckquiz/progress-service/pkg/progress"
)

// StreamProgress serves the caller's live progress map over SSE. Each
// event carries the full current map; the first event is the snapshot at
// subscribe time. The subscription is disposed when the client disconnects.
func (h *Handler) StreamProgress(c *gin.Context) {
	uid := userID(c)

	sub, err := h.progress.WatchProgress(c.Request.Context(), uid)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer sub.Close()

	setStreamHeaders(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-sub.Updates():
			if !ok {
				return false
			}
			c.SSEvent("progress", snap)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// StreamEligibility serves live gate snapshots over SSE, one per change of
// the correct-card count.
func (h *Handler) StreamEligibility(c *gin.Context) {
	uid := userID(c)

	sub, err := h.progress.WatchCorrectCount(c.Request.Context(), uid)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer sub.Close()

	setStreamHeaders(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case count, ok := <-sub.Updates():
			if !ok {
				return false
			}
			c.SSEvent("eligibility", progress.DeriveEligibility(count))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func setStreamHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
}
