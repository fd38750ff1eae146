package middleware

import "github.com/gin-gonic/gin"

// abort stops the chain with the same error body the handlers use
func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"statusCode": status,
		"message":    msg,
		"requestID":  c.GetString("requestID"),
	})
}
