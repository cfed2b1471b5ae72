package middleware

import (
	"net/http"

	"product-advisor/utils"

	"github.com/gin-gonic/gin"
)

const SessionCookieName = "product_advisor_session"
const CookieMaxAge = 30 * 24 * 60 * 60 // 30 days

// SessionKey is the gin context key holding the session ID string.
const SessionKey = "sessionID"

// SessionMiddleware assigns every browser an agent session ID. A missing or
// malformed cookie is replaced with a fresh ID.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil && err != http.ErrNoCookie {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse session cookie"})
			return
		}

		if !utils.ValidSessionID(sessionID) {
			sessionID = utils.GenerateSessionID()
			SetSessionCookie(c, sessionID)
		}

		c.Set(SessionKey, sessionID)
		c.Next()
	}
}

// SetSessionCookie points the browser at sessionID.
func SetSessionCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, sessionID, CookieMaxAge, "/", "", false, true)
}

// SessionID returns the session assigned by SessionMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}
