package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type cardRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// ListDecks returns the closed deck catalog with each deck's card count.
func (h *Handler) ListDecks(c *gin.Context) {
	scope := requestScope(c, "Handler.ListDecks")
	defer scope.Finish()

	type deckView struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Blurb     string `json:"blurb,omitempty"`
		CardCount int    `json:"cardCount"`
	}

	decks := h.catalog.Decks()
	out := make([]deckView, 0, len(decks))
	for _, d := range decks {
		n, err := h.decks.CardCount(scope.Ctx, d.ID)
		if err != nil {
			scope.TraceError(err)
			abortWithError(c, err)
			return
		}
		out = append(out, deckView{ID: d.ID, Title: d.Title, Blurb: d.Blurb, CardCount: n})
	}

	c.JSON(http.StatusOK, gin.H{"decks": out})
}

// ListCards returns a deck's approved cards in index order.
func (h *Handler) ListCards(c *gin.Context) {
	scope := requestScope(c, "Handler.ListCards")
	defer scope.Finish()

	cards, err := h.decks.ListCards(scope.Ctx, c.Param("deckId"))
	if err != nil {
		scope.TraceError(err)
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// CreateCard appends a card to a deck. The route is behind the eligibility
// gate: only users past the correct-card threshold can author cards.
func (h *Handler) CreateCard(c *gin.Context) {
	scope := requestScope(c, "Handler.CreateCard")
	defer scope.Finish()

	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		scope.TraceError(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed card payload"})
		return
	}

	card, err := h.decks.CreateCard(scope.Ctx, userID(c), c.Param("deckId"), req.Question, req.Options)
	if err != nil {
		scope.TraceError(err)
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, card)
}

// UpdateCard rewrites a card the caller created.
func (h *Handler) UpdateCard(c *gin.Context) {
	scope := requestScope(c, "Handler.UpdateCard")
	defer scope.Finish()

	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		scope.TraceError(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed card payload"})
		return
	}

	err := h.decks.UpdateCard(scope.Ctx, userID(c), c.Param("deckId"), c.Param("cardId"), req.Question, req.Options)
	if err != nil {
		scope.TraceError(err)
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteCard removes a card the caller created.
func (h *Handler) DeleteCard(c *gin.Context) {
	scope := requestScope(c, "Handler.DeleteCard")
	defer scope.Finish()

	err := h.decks.DeleteCard(scope.Ctx, userID(c), c.Param("deckId"), c.Param("cardId"))
	if err != nil {
		scope.TraceError(err)
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListOwnCards returns every card the caller created, grouped by deck.
func (h *Handler) ListOwnCards(c *gin.Context) {
	scope := requestScope(c, "Handler.ListOwnCards")
	defer scope.Finish()

	cards, err := h.decks.ListCardsByCreator(scope.Ctx, userID(c))
	if err != nil {
		scope.TraceError(err)
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": cards})
}
