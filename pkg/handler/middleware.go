package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/deckquiz/progress-service/pkg/common"
	"github.com/deckquiz/progress-service/pkg/progress"
)

const ctxUserID = "userID"

// AuthRequired resolves the session user from a Bearer token. Identity is
// owned by the external session provider; this only verifies the token and
// extracts the stable user ID that every store call is keyed by.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := h.verifier.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxUserID, claims.Subject)
		c.Next()
	}
}

// userID returns the authenticated user set by AuthRequired.
func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// EligibilityRequired gates card authoring behind the correct-card
// threshold. While locked it answers 403 with the count/required pair the
// locked-state UI renders. A count that cannot be determined reads as zero,
// which keeps the gate closed rather than failing open.
func (h *Handler) EligibilityRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := userID(c)

		count, _, err := h.progress.CorrectCount(c.Request.Context(), uid)
		if err != nil {
			logrus.Warnf("eligibility check failed for user %s: %v", uid, err)
			count = 0
		}

		snap := progress.DeriveEligibility(count)
		if !snap.Eligible {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "card creation locked",
				"count":    snap.Count,
				"required": snap.Required,
			})
			return
		}
		c.Next()
	}
}

// RequestLogger logs one structured line per handled request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.Warn(c.Errors.String())
			return
		}
		entry.Info("request handled")
	}
}

// requestScope opens a trace scope named after the handler.
func requestScope(c *gin.Context, name string) *common.Scope {
	return common.GetScopeFromContext(c.Request.Context(), name)
}
