package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deckquiz/progress-service/pkg/user"
)

// GetProfile returns the caller's stored profile. A user that has never
// saved one gets an empty profile, not an error.
func (h *Handler) GetProfile(c *gin.Context) {
	scope := requestScope(c, "Handler.GetProfile")
	defer scope.Finish()

	profile, err := h.users.GetProfile(scope.Ctx, userID(c))
	if err != nil {
		scope.TraceError(err)
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SaveProfile overwrites the caller's profile.
func (h *Handler) SaveProfile(c *gin.Context) {
	scope := requestScope(c, "Handler.SaveProfile")
	defer scope.Finish()

	var profile user.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		scope.TraceError(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed profile payload"})
		return
	}

	if err := h.users.SaveProfile(scope.Ctx, userID(c), &profile); err != nil {
		scope.TraceError(err)
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
