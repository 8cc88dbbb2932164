package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deckquiz/progress-service/pkg/progress"
)

type attemptRequest struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// RecordAttempt applies one finished quiz run to the caller's progress
// record for a deck.
func (h *Handler) RecordAttempt(c *gin.Context) {
	scope := requestScope(c, "Handler.RecordAttempt")
	defer scope.Finish()

	uid := userID(c)
	deckID := c.Param("deckId")

	var req attemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		scope.TraceError(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed attempt payload"})
		return
	}

	scope.AddBaggage("deckId", deckID)
	scope.SetAttribute("score", req.Score)
	scope.SetAttribute("total", req.Total)

	if err := h.progress.RecordAttempt(scope.Ctx, uid, deckID, req.Score, req.Total); err != nil {
		scope.TraceError(err)
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RecordCorrectCard marks a card as answered correctly by the caller.
func (h *Handler) RecordCorrectCard(c *gin.Context) {
	scope := requestScope(c, "Handler.RecordCorrectCard")
	defer scope.Finish()

	uid := userID(c)
	deckID := c.Param("deckId")
	cardID := c.Param("cardId")

	if err := h.progress.RecordCorrectCard(scope.Ctx, uid, deckID, cardID); err != nil {
		scope.TraceError(err)
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetProgress returns the caller's full deck->progress map.
func (h *Handler) GetProgress(c *gin.Context) {
	scope := requestScope(c, "Handler.GetProgress")
	defer scope.Finish()

	all, err := h.progress.ListProgress(scope.Ctx, userID(c))
	if err != nil {
		scope.TraceError(err)
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": all})
}

// GetEligibility returns the caller's current gate snapshot.
func (h *Handler) GetEligibility(c *gin.Context) {
	scope := requestScope(c, "Handler.GetEligibility")
	defer scope.Finish()

	uid := userID(c)
	count, _, err := h.progress.CorrectCount(scope.Ctx, uid)
	if err != nil {
		// an unreadable count reads as zero, keeping the gate closed
		scope.TraceError(err)
		count = 0
	}

	c.JSON(http.StatusOK, progress.DeriveEligibility(count))
}
