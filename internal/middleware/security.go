package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders marks every API response as non-embeddable, non-sniffable and
// non-cacheable, since bodies may carry bearer secrets.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
