package middlewares

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireFormOrJSON rejects POST bodies that are neither JSON nor an
// urlencoded form. Empty bodies without a Content-Type pass so handlers
// can answer with their own validation error.
func RequireFormOrJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ct := c.GetHeader("Content-Type")
		if ct == "" && c.Request.ContentLength <= 0 {
			c.Next()
			return
		}

		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || (mediaType != gin.MIMEJSON && mediaType != gin.MIMEPOSTForm) {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": "Content-Type must be application/json or application/x-www-form-urlencoded",
			})
			return
		}

		c.Next()
	}
}
