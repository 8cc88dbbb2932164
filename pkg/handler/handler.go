package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deckquiz/progress-service/pkg/auth"
	"github.com/deckquiz/progress-service/pkg/deck"
	"github.com/deckquiz/progress-service/pkg/progress"
	"github.com/deckquiz/progress-service/pkg/user"
)

// Handler serves the versioned HTTP API. Every route below /v1 requires an
// authenticated session; the resolved user ID is threaded explicitly into
// every store call.
type Handler struct {
	progress *progress.RedisProgressStore
	decks    *deck.RedisDeckStore
	users    *user.RedisUserStore
	catalog  *deck.Catalog
	verifier *auth.Verifier
}

// New creates the API handler.
func New(
	progressStore *progress.RedisProgressStore,
	deckStore *deck.RedisDeckStore,
	userStore *user.RedisUserStore,
	catalog *deck.Catalog,
	verifier *auth.Verifier,
) *Handler {
	return &Handler{
		progress: progressStore,
		decks:    deckStore,
		users:    userStore,
		catalog:  catalog,
		verifier: verifier,
	}
}

// RegisterRoutes mounts the API onto a gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/v1", h.AuthRequired())

	v1.POST("/progress/:deckId/attempts", h.RecordAttempt)
	v1.POST("/progress/:deckId/cards/:cardId/correct", h.RecordCorrectCard)
	v1.GET("/progress", h.GetProgress)
	v1.GET("/progress/stream", h.StreamProgress)

	v1.GET("/eligibility", h.GetEligibility)
	v1.GET("/eligibility/stream", h.StreamEligibility)

	v1.GET("/decks", h.ListDecks)
	v1.GET("/decks/:deckId/cards", h.ListCards)
	v1.POST("/decks/:deckId/cards", h.EligibilityRequired(), h.CreateCard)
	v1.PUT("/decks/:deckId/cards/:cardId", h.UpdateCard)
	v1.DELETE("/decks/:deckId/cards/:cardId", h.DeleteCard)
	v1.GET("/cards/mine", h.ListOwnCards)

	v1.GET("/profile", h.GetProfile)
	v1.PUT("/profile", h.SaveProfile)
}

// statusFor maps domain errors onto HTTP statuses. Anything unrecognized is
// a transient store failure and propagates as 502 so the client can retry.
func statusFor(err error) int {
	switch {
	case errors.Is(err, progress.ErrInvalidAttempt),
		errors.Is(err, progress.ErrInvalidCard),
		errors.Is(err, deck.ErrInvalidCard):
		return http.StatusBadRequest
	case errors.Is(err, progress.ErrUnknownDeck),
		errors.Is(err, deck.ErrUnknownDeck),
		errors.Is(err, deck.ErrCardNotFound):
		return http.StatusNotFound
	case errors.Is(err, deck.ErrNotOwner):
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}
